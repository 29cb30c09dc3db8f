package main

import (
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"tierquote/internal/tickmath"
)

func runTick(cmd *cobra.Command, _ []string) error {
	tickArg, _ := cmd.Flags().GetString("tick")
	sqrtArg, _ := cmd.Flags().GetString("sqrt-price")
	spacing, _ := cmd.Flags().GetInt("tick-spacing")
	out := cmd.OutOrStdout()

	switch {
	case tickArg != "" && sqrtArg != "":
		return fmt.Errorf("use either --tick or --sqrt-price")
	case tickArg != "":
		tick, err := strconv.Atoi(tickArg)
		if err != nil {
			return fmt.Errorf("parse tick: %w", err)
		}
		sqrtP, err := tickmath.TickToSqrtPrice(tick)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "tick=%d sqrt_price=%s\n", tick, sqrtP)
		if err := printUsableTick(out, tick, spacing); err != nil {
			return err
		}
	case sqrtArg != "":
		sqrtP, ok := new(big.Int).SetString(sqrtArg, 10)
		if !ok {
			return fmt.Errorf("parse sqrt price %q", sqrtArg)
		}
		tick, err := tickmath.SqrtPriceToTick(sqrtP)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "sqrt_price=%s tick=%d\n", sqrtP, tick)
		if err := printUsableTick(out, tick, spacing); err != nil {
			return err
		}
	default:
		return fmt.Errorf("--tick or --sqrt-price is required")
	}
	return nil
}

func printUsableTick(out io.Writer, tick, spacing int) error {
	if spacing <= 0 {
		return nil
	}
	usable, err := tickmath.NearestUsableTick(tick, spacing)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "nearest_usable_tick=%d\n", usable)
	return nil
}
