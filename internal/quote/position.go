package quote

import (
	"fmt"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/model"
	"tierquote/internal/pool"
	"tierquote/internal/position"
)

// QuotePosition derives holding, mint, settle and slippage-bounded amounts
// for req.
func (b *Book) QuotePosition(req model.PositionRequest) (model.PositionQuote, error) {
	p, err := b.Pool(req.PoolID)
	if err != nil {
		return model.PositionQuote{}, err
	}
	order, err := position.LimitOrderFromFlags(req.LimitOrderType, req.Settled)
	if err != nil {
		return model.PositionQuote{}, err
	}
	tol, err := b.slippageOf(req.Slippage)
	if err != nil {
		return model.PositionQuote{}, err
	}
	pos, err := b.buildPosition(p, req, order)
	if err != nil {
		return model.PositionQuote{}, err
	}

	tier := pos.Tier()
	q := model.PositionQuote{
		ID:          req.ID,
		PoolID:      p.ID().Hex(),
		TierID:      pos.TierID(),
		TickLower:   int32(pos.TickLower()),
		TickUpper:   int32(pos.TickUpper()),
		TierTick:    int32(tier.Tick()),
		LiquidityD8: pos.LiquidityD8().String(),
		LimitOrder:  order.String(),
		Holding:     pair(pos.HoldingAmounts()),
		Mint:        pair(pos.MintAmounts()),
		Slippage:    tol.ToFixed(4),
	}

	if order.IsLimitOrder() {
		amount0, amount1, err := pos.SettleAmounts()
		if err != nil {
			return model.PositionQuote{}, err
		}
		settle := pair(amount0, amount1)
		q.Settle = &settle
	}

	mint0, mint1, err := pos.MintAmountsWithSlippage(tol)
	if err != nil {
		return model.PositionQuote{}, err
	}
	q.MintWithSlip = pair(mint0, mint1)

	burn0, burn1, err := pos.BurnAmountsWithSlippage(tol)
	if err != nil {
		return model.PositionQuote{}, err
	}
	q.BurnWithSlip = pair(burn0, burn1)

	if p.TierCount() < pool.MaxTiers {
		amount0, amount1, err := p.NewTierAmounts()
		if err != nil {
			return model.PositionQuote{}, err
		}
		charges := pair(amount0, amount1)
		q.NewTierCharges = &charges
	}
	return q, nil
}

func (b *Book) buildPosition(p *pool.Pool, req model.PositionRequest, order position.LimitOrder) (*position.Position, error) {
	if req.LiquidityD8 != "" {
		liquidity, err := parseBig(req.LiquidityD8, "liquidity_d8")
		if err != nil {
			return nil, err
		}
		return position.New(position.Params{
			Pool:        p,
			TierID:      req.TierID,
			TickLower:   int(req.TickLower),
			TickUpper:   int(req.TickUpper),
			LiquidityD8: liquidity,
			LimitOrder:  order,
		})
	}

	params := position.AmountsParams{
		Pool:       p,
		TierID:     req.TierID,
		TickLower:  int(req.TickLower),
		TickUpper:  int(req.TickUpper),
		LimitOrder: order,
	}
	var err error
	switch {
	case req.Amount0 != "" && req.Amount1 != "":
		if params.Amount0, err = parseBig(req.Amount0, "amount0"); err != nil {
			return nil, err
		}
		if params.Amount1, err = parseBig(req.Amount1, "amount1"); err != nil {
			return nil, err
		}
		return position.FromAmounts(params)
	case req.Amount0 != "":
		if params.Amount0, err = parseBig(req.Amount0, "amount0"); err != nil {
			return nil, err
		}
		return position.FromAmount0(params)
	case req.Amount1 != "":
		if params.Amount1, err = parseBig(req.Amount1, "amount1"); err != nil {
			return nil, err
		}
		return position.FromAmount1(params)
	default:
		return nil, fmt.Errorf("%w: request has neither liquidity nor amounts", errs.ErrInvalidLiquidity)
	}
}

func pair(amount0, amount1 currency.Amount) model.AmountPair {
	return model.AmountPair{Amount0: amount0.Raw().String(), Amount1: amount1.Raw().String()}
}
