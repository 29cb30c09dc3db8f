package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tierquote",
		Short:        "Off-chain quotes for multi-tier concentrated liquidity pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch pool and tier state from the hub",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("hub", "", "hub contract address")
	snapshotCmd.Flags().StringSlice("pair", nil, "token pairs as tokenA:tokenB (comma-separated)")
	snapshotCmd.Flags().Uint64("block", 0, "block to read at, 0 means latest")
	snapshotCmd.Flags().String("out", "./data/snapshots.jsonl", "output JSONL path, empty to skip")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	snapshotCmd.Flags().Int("concurrency", 4, "pairs fetched in parallel")
	snapshotCmd.Flags().Float64("rps", 10, "eth_call requests per second, 0 means unlimited")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert between ticks and sqrt prices",
		RunE:  runTick,
	}

	tickCmd.Flags().String("tick", "", "tick to convert")
	tickCmd.Flags().String("sqrt-price", "", "Q72.72 sqrt price to convert")
	tickCmd.Flags().Int("tick-spacing", 0, "also print the nearest usable tick for this spacing")

	root.AddCommand(tickCmd)

	for _, qc := range []struct {
		use, short string
		run        func(*cobra.Command, []string) error
	}{
		{"position", "Quote positions from PositionRequest JSONL", runPosition},
		{"trade", "Quote trades from TradeRequest JSONL", runTrade},
	} {
		cmd := &cobra.Command{
			Use:   qc.use,
			Short: qc.short,
			RunE:  qc.run,
		}
		cmd.Flags().String("snapshots", "", "pool snapshots JSONL")
		cmd.Flags().String("pg-dsn", "", "Postgres DSN to load snapshots from")
		cmd.Flags().Uint64("chain-id", 1, "chain of the snapshots")
		cmd.Flags().String("in", "", "input requests JSONL")
		cmd.Flags().String("out", "", "output quotes JSONL, empty for stdout")
		cmd.Flags().String("errors", "./data/quote_errors.jsonl", "quote errors JSONL")
		cmd.Flags().String("slippage", "0.5", "default slippage tolerance in percent")
		cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
		root.AddCommand(cmd)
	}

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
