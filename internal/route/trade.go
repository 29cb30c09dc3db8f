package route

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
)

// TradeType tells which side of a trade is fixed.
type TradeType uint8

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	if t == ExactOutput {
		return "exact_output"
	}
	return "exact_input"
}

// ParseTradeType accepts "exact_input" and "exact_output". The trade type has
// no default.
func ParseTradeType(s string) (TradeType, error) {
	switch s {
	case "exact_input", "exactInput", "EXACT_INPUT":
		return ExactInput, nil
	case "exact_output", "exactOutput", "EXACT_OUTPUT":
		return ExactOutput, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidTradeType, s)
	}
}

// Swap is one leg of a trade: a route with its simulated amounts.
type Swap struct {
	Route        *Route
	InputAmount  currency.Amount
	OutputAmount currency.Amount
}

// Trade is a set of swaps that share an input and an output currency.
type Trade struct {
	swaps        []Swap
	tradeType    TradeType
	inputAmount  currency.Amount
	outputAmount currency.Amount
}

type poolKey struct {
	chainID uint64
	id      common.Hash
}

// NewTrade validates swaps and builds a Trade.
func NewTrade(swaps []Swap, tradeType TradeType) (*Trade, error) {
	if len(swaps) == 0 {
		return nil, fmt.Errorf("%w: trade has no swaps", errs.ErrInvalidPath)
	}
	for i, swap := range swaps {
		if swap.Route == nil {
			return nil, fmt.Errorf("%w: swap %d has no route", errs.ErrInvalidPath, i)
		}
	}

	first := swaps[0].Route
	input := first.Input().Wrapped()
	output := first.Output().Wrapped()
	seen := make(map[poolKey]struct{})

	inputTotal := currency.MustAmount(input, nil)
	outputTotal := currency.MustAmount(output, nil)
	for i, swap := range swaps {
		if !swap.Route.Input().Wrapped().Equals(input) || !swap.Route.Output().Wrapped().Equals(output) {
			return nil, fmt.Errorf("%w: swap %d trades %v for %v", errs.ErrMismatchedCurrencies, i, swap.Route.Input(), swap.Route.Output())
		}
		if swap.InputAmount.Currency() == nil || !swap.InputAmount.Currency().Equals(swap.Route.Input()) {
			return nil, fmt.Errorf("%w: swap %d input amount currency", errs.ErrMismatchedCurrencies, i)
		}
		if swap.OutputAmount.Currency() == nil || !swap.OutputAmount.Currency().Equals(swap.Route.Output()) {
			return nil, fmt.Errorf("%w: swap %d output amount currency", errs.ErrMismatchedCurrencies, i)
		}
		for _, p := range swap.Route.pools {
			key := poolKey{chainID: p.ChainID(), id: p.ID()}
			if _, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: pool %s", errs.ErrDuplicatedPools, p.ID().Hex())
			}
			seen[key] = struct{}{}
		}

		var err error
		if inputTotal, err = inputTotal.Add(swap.InputAmount.Wrapped()); err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		if outputTotal, err = outputTotal.Add(swap.OutputAmount.Wrapped()); err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
	}

	// totals carry the first route's currencies, native or not
	return &Trade{
		swaps:        append([]Swap(nil), swaps...),
		tradeType:    tradeType,
		inputAmount:  currency.MustAmount(first.Input(), inputTotal.Raw()),
		outputAmount: currency.MustAmount(first.Output(), outputTotal.Raw()),
	}, nil
}

// SingleRoute builds a one-swap trade.
func SingleRoute(r *Route, inputAmount, outputAmount currency.Amount, tradeType TradeType) (*Trade, error) {
	return NewTrade([]Swap{{Route: r, InputAmount: inputAmount, OutputAmount: outputAmount}}, tradeType)
}

func (t *Trade) TradeType() TradeType { return t.tradeType }

func (t *Trade) Swaps() []Swap {
	return append([]Swap(nil), t.swaps...)
}

// InputAmount is the sum of all swap inputs.
func (t *Trade) InputAmount() currency.Amount { return t.inputAmount }

// OutputAmount is the sum of all swap outputs.
func (t *Trade) OutputAmount() currency.Amount { return t.outputAmount }

// ExecutionPrice is output over input.
func (t *Trade) ExecutionPrice() (currency.Price, error) {
	return currency.PriceFromAmounts(t.inputAmount, t.outputAmount)
}

// MinimumAmountOut returns the least output accepted under tolerance. For an
// exact-output trade it is the output amount itself.
func (t *Trade) MinimumAmountOut(tolerance currency.Percent) (currency.Amount, error) {
	if tolerance.IsNegative() {
		return currency.Amount{}, fmt.Errorf("%w: %s", errs.ErrInvalidSlippage, tolerance)
	}
	if t.tradeType == ExactOutput {
		return t.outputAmount, nil
	}
	factor := new(big.Rat).Add(big.NewRat(1, 1), tolerance.Rat())
	return t.outputAmount.MulRatFloor(factor.Inv(factor)), nil
}

// MaximumAmountIn returns the most input spent under tolerance. For an
// exact-input trade it is the input amount itself.
func (t *Trade) MaximumAmountIn(tolerance currency.Percent) (currency.Amount, error) {
	if tolerance.IsNegative() {
		return currency.Amount{}, fmt.Errorf("%w: %s", errs.ErrInvalidSlippage, tolerance)
	}
	if t.tradeType == ExactInput {
		return t.inputAmount, nil
	}
	factor := new(big.Rat).Add(big.NewRat(1, 1), tolerance.Rat())
	return t.inputAmount.MulRatFloor(factor), nil
}

// WorstExecutionPrice is the price implied by the slippage-adjusted bounds.
func (t *Trade) WorstExecutionPrice(tolerance currency.Percent) (currency.Price, error) {
	maxIn, err := t.MaximumAmountIn(tolerance)
	if err != nil {
		return currency.Price{}, err
	}
	minOut, err := t.MinimumAmountOut(tolerance)
	if err != nil {
		return currency.Price{}, err
	}
	return currency.PriceFromAmounts(maxIn, minOut)
}
