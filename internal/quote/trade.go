package quote

import (
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"tierquote/internal/analytics"
	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/model"
	"tierquote/internal/pool"
	"tierquote/internal/route"
)

const priceDigits = 12

var nativeSymbols = map[uint64]string{
	1:     "ETH",
	10:    "ETH",
	56:    "BNB",
	137:   "MATIC",
	8453:  "ETH",
	42161: "ETH",
}

// QuoteTrade builds the trade described by req and returns its slippage
// bounds. When every swap carries hop simulations the analytics report is
// filled in as well.
func (b *Book) QuoteTrade(req model.TradeRequest) (model.TradeQuote, error) {
	if req.ChainID != 0 && req.ChainID != b.chainID {
		return model.TradeQuote{}, fmt.Errorf("%w: trade on chain %d, book on %d", ErrWrongChain, req.ChainID, b.chainID)
	}
	tradeType, err := route.ParseTradeType(req.TradeType)
	if err != nil {
		return model.TradeQuote{}, err
	}
	tol, err := b.slippageOf(req.Slippage)
	if err != nil {
		return model.TradeQuote{}, err
	}
	input, err := b.currencyOf(req.Input, req.NativeInput)
	if err != nil {
		return model.TradeQuote{}, err
	}
	output, err := b.currencyOf(req.Output, req.NativeOutput)
	if err != nil {
		return model.TradeQuote{}, err
	}

	swaps := make([]route.Swap, len(req.Swaps))
	sims := make([]analytics.SwapSimulation, len(req.Swaps))
	simulated := len(req.Swaps) > 0
	for i, sr := range req.Swaps {
		swap, sim, err := b.buildSwap(sr, input, output, req.DecimalAmounts)
		if err != nil {
			return model.TradeQuote{}, fmt.Errorf("swap %d: %w", i, err)
		}
		swaps[i] = swap
		sims[i] = sim
		simulated = simulated && len(sim.Hops) > 0
	}

	trade, err := route.NewTrade(swaps, tradeType)
	if err != nil {
		return model.TradeQuote{}, err
	}
	minOut, err := trade.MinimumAmountOut(tol)
	if err != nil {
		return model.TradeQuote{}, err
	}
	maxIn, err := trade.MaximumAmountIn(tol)
	if err != nil {
		return model.TradeQuote{}, err
	}
	q := model.TradeQuote{
		ID:               req.ID,
		TradeType:        tradeType.String(),
		AmountIn:         trade.InputAmount().Raw().String(),
		AmountOut:        trade.OutputAmount().Raw().String(),
		MinimumAmountOut: minOut.Raw().String(),
		MaximumAmountIn:  maxIn.Raw().String(),
		Slippage:         tol.ToFixed(4),
	}
	if price, err := trade.ExecutionPrice(); err == nil {
		q.ExecutionPrice = price.ToFixed(priceDigits)
	}
	if worst, err := trade.WorstExecutionPrice(tol); err == nil {
		q.WorstPrice = worst.ToFixed(priceDigits)
	}

	if !simulated {
		b.logger.Debug("trade quoted without simulation", zap.String("request_id", req.ID))
		return q, nil
	}
	report, err := analytics.Analyze(trade, sims)
	if err != nil {
		return model.TradeQuote{}, err
	}
	q.MarginalPrice = report.MarginalPrice.ToFixed(priceDigits)
	q.PriceImpact = report.PriceImpact.ToFixed(4)
	q.FeePercent = report.Fee.Percent.ToFixed(4)
	q.FeeAmount = report.Fee.Amount.Raw().String()
	q.TierDistributions = distributionStrings(report.Distributions)
	return q, nil
}

func (b *Book) currencyOf(address string, native bool) (currency.Currency, error) {
	token, err := b.Token(address)
	if err != nil {
		return nil, err
	}
	if !native {
		return token, nil
	}
	symbol, ok := nativeSymbols[b.chainID]
	if !ok {
		symbol = "NATIVE"
	}
	return currency.NewNative(token, symbol, symbol), nil
}

func (b *Book) buildSwap(sr model.SwapRequest, input, output currency.Currency, decimalAmounts bool) (route.Swap, analytics.SwapSimulation, error) {
	pools := make([]*pool.Pool, len(sr.PoolIDs))
	for i, id := range sr.PoolIDs {
		p, err := b.Pool(id)
		if err != nil {
			return route.Swap{}, analytics.SwapSimulation{}, err
		}
		pools[i] = p
	}
	masks, err := tierMasks(sr.TierMasks)
	if err != nil {
		return route.Swap{}, analytics.SwapSimulation{}, err
	}
	r, err := route.New(pools, masks, input, output)
	if err != nil {
		return route.Swap{}, analytics.SwapSimulation{}, err
	}
	parse := currency.ParseAmount
	if decimalAmounts {
		parse = currency.FromDecimal
	}
	amountIn, err := parse(input, sr.AmountIn)
	if err != nil {
		return route.Swap{}, analytics.SwapSimulation{}, fmt.Errorf("%w: amount_in: %v", ErrBadNumber, err)
	}
	amountOut, err := parse(output, sr.AmountOut)
	if err != nil {
		return route.Swap{}, analytics.SwapSimulation{}, fmt.Errorf("%w: amount_out: %v", ErrBadNumber, err)
	}

	sim := analytics.SwapSimulation{Hops: make([]analytics.HopSimulation, len(sr.Hops))}
	for h, hr := range sr.Hops {
		amounts := make([]*big.Int, len(hr.TierAmountsIn))
		for t, raw := range hr.TierAmountsIn {
			v, err := parseBig(raw, "tier_amounts_in")
			if err != nil {
				return route.Swap{}, analytics.SwapSimulation{}, fmt.Errorf("hop %d: %w", h, err)
			}
			amounts[t] = v
		}
		sim.Hops[h] = analytics.HopSimulation{TierAmountsIn: amounts}
	}
	return route.Swap{Route: r, InputAmount: amountIn, OutputAmount: amountOut}, sim, nil
}

func tierMasks(raw []uint) ([]uint8, error) {
	masks := make([]uint8, len(raw))
	for i, m := range raw {
		if m > 0xff {
			return nil, fmt.Errorf("%w: %d at hop %d", errs.ErrInvalidTierMask, m, i)
		}
		masks[i] = uint8(m)
	}
	return masks, nil
}

func distributionStrings(dists [][][]currency.Percent) [][][]string {
	out := make([][][]string, len(dists))
	for i, hops := range dists {
		out[i] = make([][]string, len(hops))
		for h, shares := range hops {
			out[i][h] = make([]string, len(shares))
			for t, share := range shares {
				out[i][h][t] = share.ToFixed(4)
			}
		}
	}
	return out
}

// ErrorKind names the error class of err for QuoteError records.
func ErrorKind(err error) string {
	kinds := []struct {
		target error
		name   string
	}{
		{errs.ErrInvalidTick, "invalid_tick"},
		{errs.ErrInvalidSqrtPrice, "invalid_sqrt_price"},
		{errs.ErrInvalidTickRange, "invalid_tick_range"},
		{errs.ErrInvalidTier, "invalid_tier"},
		{errs.ErrInvalidLiquidity, "invalid_liquidity"},
		{errs.ErrInvalidToken, "invalid_token"},
		{errs.ErrInvalidLimitOrderState, "invalid_limit_order_state"},
		{errs.ErrInvalidPath, "invalid_path"},
		{errs.ErrInvalidTierMask, "invalid_tier_mask"},
		{errs.ErrDuplicatedPools, "duplicated_pools"},
		{errs.ErrMismatchedCurrencies, "mismatched_currencies"},
		{errs.ErrInvalidSlippage, "invalid_slippage"},
		{errs.ErrMismatchedSimulation, "mismatched_simulation"},
		{errs.ErrInvalidTradeType, "invalid_trade_type"},
		{ErrUnknownPool, "unknown_pool"},
		{ErrUnknownToken, "unknown_token"},
		{ErrWrongChain, "wrong_chain"},
		{ErrBadNumber, "bad_number"},
		{currency.ErrNegativeAmount, "bad_number"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "internal"
}

// NewQuoteError wraps err as a QuoteError record.
func NewQuoteError(requestID string, err error) model.QuoteError {
	return model.QuoteError{RequestID: requestID, Kind: ErrorKind(err), Error: err.Error()}
}
