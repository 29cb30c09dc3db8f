// Package position sizes liquidity positions on a single tier and tick range.
package position

import (
	"fmt"
	"math/big"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
	"tierquote/internal/pool"
	"tierquote/internal/poolmath"
	"tierquote/internal/tickmath"
)

// Params describes a position to construct.
type Params struct {
	Pool        *pool.Pool
	TierID      int
	TickLower   int
	TickUpper   int
	LiquidityD8 *big.Int
	LimitOrder  LimitOrder
	// SettlementSnapshotID identifies the settlement a settled order belongs
	// to. Optional.
	SettlementSnapshotID *big.Int
}

// Position is a validated liquidity position. Amounts are derived on demand
// from the immutable snapshot it was built on.
type Position struct {
	pool                 *pool.Pool
	tier                 *pool.Tier
	tierID               int
	tickLower            int
	tickUpper            int
	sqrtPriceLower       *big.Int
	sqrtPriceUpper       *big.Int
	liquidityD8          *big.Int
	limitOrder           LimitOrder
	settlementSnapshotID *big.Int
}

// New validates params and builds a Position.
func New(params Params) (*Position, error) {
	if params.Pool == nil {
		return nil, fmt.Errorf("%w: nil pool", errs.ErrInvalidTier)
	}
	tier, err := params.Pool.Tier(params.TierID)
	if err != nil {
		return nil, err
	}
	for _, tick := range []int{params.TickLower, params.TickUpper} {
		if tick < tickmath.MinTick || tick > tickmath.MaxTick {
			return nil, fmt.Errorf("%w: %d", errs.ErrInvalidTick, tick)
		}
	}
	if params.TickLower >= params.TickUpper {
		return nil, fmt.Errorf("%w: lower %d >= upper %d", errs.ErrInvalidTickRange, params.TickLower, params.TickUpper)
	}
	spacing := params.Pool.TickSpacing()
	if !tickmath.IsAligned(params.TickLower, spacing) || !tickmath.IsAligned(params.TickUpper, spacing) {
		return nil, fmt.Errorf("%w: [%d, %d] not aligned to spacing %d", errs.ErrInvalidTickRange, params.TickLower, params.TickUpper, spacing)
	}
	if params.LiquidityD8 == nil || params.LiquidityD8.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidLiquidity, params.LiquidityD8)
	}
	if !params.LimitOrder.valid() {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidLimitOrderState, uint8(params.LimitOrder))
	}

	snapshotID := new(big.Int)
	if params.SettlementSnapshotID != nil {
		snapshotID.Set(params.SettlementSnapshotID)
	}

	return &Position{
		pool:                 params.Pool,
		tier:                 tier,
		tierID:               params.TierID,
		tickLower:            params.TickLower,
		tickUpper:            params.TickUpper,
		sqrtPriceLower:       tickmath.MustTickToSqrtPrice(params.TickLower),
		sqrtPriceUpper:       tickmath.MustTickToSqrtPrice(params.TickUpper),
		liquidityD8:          new(big.Int).Set(params.LiquidityD8),
		limitOrder:           params.LimitOrder,
		settlementSnapshotID: snapshotID,
	}, nil
}

func (p *Position) Pool() *pool.Pool               { return p.pool }
func (p *Position) Tier() *pool.Tier               { return p.tier }
func (p *Position) TierID() int                    { return p.tierID }
func (p *Position) TickLower() int                 { return p.tickLower }
func (p *Position) TickUpper() int                 { return p.tickUpper }
func (p *Position) LimitOrder() LimitOrder         { return p.limitOrder }
func (p *Position) LiquidityD8() *big.Int          { return new(big.Int).Set(p.liquidityD8) }
func (p *Position) SettlementSnapshotID() *big.Int { return new(big.Int).Set(p.settlementSnapshotID) }
func (p *Position) SqrtPriceLower() *big.Int       { return new(big.Int).Set(p.sqrtPriceLower) }
func (p *Position) SqrtPriceUpper() *big.Int       { return new(big.Int).Set(p.sqrtPriceUpper) }
func (p *Position) Liquidity() *big.Int            { return new(big.Int).Lsh(p.liquidityD8, 8) }

// HoldingAmounts returns what the position would pay out if fully burned now.
// A settled limit order is valued at its settlement boundary.
func (p *Position) HoldingAmounts() (currency.Amount, currency.Amount) {
	if p.limitOrder.IsSettled() {
		return p.amountsAt(p.settlementSqrtPrice(), p.negLiquidity())
	}
	return p.amountsAt(p.tier.SqrtPrice(), p.negLiquidity())
}

// MintAmounts returns the minimum amounts required to mint the position at
// the tier's current price.
func (p *Position) MintAmounts() (currency.Amount, currency.Amount) {
	return p.amountsAt(p.tier.SqrtPrice(), p.liquidityD8)
}

// SettleAmounts returns the single-sided payout of a limit order once the
// price has crossed its range.
func (p *Position) SettleAmounts() (currency.Amount, currency.Amount, error) {
	if !p.limitOrder.IsLimitOrder() {
		return currency.Amount{}, currency.Amount{}, fmt.Errorf("%w: not a limit order", errs.ErrInvalidLimitOrderState)
	}
	amount0, amount1 := p.amountsAt(p.settlementSqrtPrice(), p.negLiquidity())
	return amount0, amount1, nil
}

// MintAmountsWithSlippage returns the amounts to approve so the mint succeeds
// anywhere within tolerance of the current price. Each amount is at least the
// nominal mint amount.
func (p *Position) MintAmountsWithSlippage(tolerance currency.Percent) (currency.Amount, currency.Amount, error) {
	lower, upper, err := p.tier.SqrtPriceBoundsWithSlippage(tolerance)
	if err != nil {
		return currency.Amount{}, currency.Amount{}, err
	}
	amount0, _ := p.amountsAt(lower, p.liquidityD8)
	_, amount1 := p.amountsAt(upper, p.liquidityD8)
	return amount0, amount1, nil
}

// BurnAmountsWithSlippage returns the minimum amounts to accept when burning
// anywhere within tolerance of the current price. Each amount is at most the
// nominal holding amount.
func (p *Position) BurnAmountsWithSlippage(tolerance currency.Percent) (currency.Amount, currency.Amount, error) {
	if tolerance.IsNegative() {
		return currency.Amount{}, currency.Amount{}, fmt.Errorf("%w: %s", errs.ErrInvalidSlippage, tolerance)
	}
	if p.limitOrder.IsSettled() {
		amount0, amount1 := p.HoldingAmounts()
		return amount0, amount1, nil
	}
	lower, upper, err := p.tier.SqrtPriceBoundsWithSlippage(tolerance)
	if err != nil {
		return currency.Amount{}, currency.Amount{}, err
	}
	amount0, _ := p.amountsAt(upper, p.negLiquidity())
	_, amount1 := p.amountsAt(lower, p.negLiquidity())
	return amount0, amount1, nil
}

// settlementSqrtPrice is the range boundary a limit order settles at.
func (p *Position) settlementSqrtPrice() *big.Int {
	if p.limitOrder.ZeroForOne() {
		return p.sqrtPriceUpper
	}
	return p.sqrtPriceLower
}

func (p *Position) negLiquidity() *big.Int {
	return new(big.Int).Neg(p.liquidityD8)
}

func (p *Position) amountsAt(sqrtP, liquidityDeltaD8 *big.Int) (currency.Amount, currency.Amount) {
	amt0, amt1 := poolmath.CalcAmtsForLiquidity(sqrtP, p.sqrtPriceLower, p.sqrtPriceUpper, liquidityDeltaD8)
	return currency.MustAmount(p.pool.Token0(), amt0), currency.MustAmount(p.pool.Token1(), amt1)
}

// AmountsParams describes a position sized from deposit budgets.
type AmountsParams struct {
	Pool       *pool.Pool
	TierID     int
	TickLower  int
	TickUpper  int
	Amount0    *big.Int
	Amount1    *big.Int
	LimitOrder LimitOrder
}

// FromAmounts builds the largest position the two budgets can fund at the
// tier's current price.
func FromAmounts(params AmountsParams) (*Position, error) {
	if params.Pool == nil {
		return nil, fmt.Errorf("%w: nil pool", errs.ErrInvalidTier)
	}
	tier, err := params.Pool.Tier(params.TierID)
	if err != nil {
		return nil, err
	}
	for _, amt := range []*big.Int{params.Amount0, params.Amount1} {
		if amt == nil || amt.Sign() < 0 {
			return nil, fmt.Errorf("%w: budget %v", errs.ErrInvalidLiquidity, amt)
		}
	}
	sqrtLower, err := tickmath.TickToSqrtPrice(params.TickLower)
	if err != nil {
		return nil, err
	}
	sqrtUpper, err := tickmath.TickToSqrtPrice(params.TickUpper)
	if err != nil {
		return nil, err
	}

	liquidityD8 := poolmath.MaxOutputLiquidityForAmounts(tier.SqrtPrice(), sqrtLower, sqrtUpper, params.Amount0, params.Amount1)
	return New(Params{
		Pool:        params.Pool,
		TierID:      params.TierID,
		TickLower:   params.TickLower,
		TickUpper:   params.TickUpper,
		LiquidityD8: liquidityD8,
		LimitOrder:  params.LimitOrder,
	})
}

// FromAmount0 sizes a position from a token0 budget alone.
func FromAmount0(params AmountsParams) (*Position, error) {
	params.Amount1 = new(big.Int).Set(mathutil.MaxUint256)
	return FromAmounts(params)
}

// FromAmount1 sizes a position from a token1 budget alone.
func FromAmount1(params AmountsParams) (*Position, error) {
	params.Amount0 = new(big.Int).Set(mathutil.MaxUint256)
	return FromAmounts(params)
}
