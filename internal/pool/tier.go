package pool

import (
	"fmt"
	"math/big"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
	"tierquote/internal/tickmath"
)

// MaxSqrtGamma is the sqrt gamma of a zero-fee tier.
const MaxSqrtGamma = 100000

var gammaScale = big.NewInt(MaxSqrtGamma * MaxSqrtGamma)

// TierState is the raw on-chain state of one tier.
type TierState struct {
	Liquidity     *big.Int
	SqrtPrice     *big.Int
	SqrtGamma     uint32
	NextTickBelow int
	NextTickAbove int
}

// Tier is an immutable snapshot of one fee tier of a pool. Derived values are
// computed at construction.
type Tier struct {
	token0        *currency.Token
	token1        *currency.Token
	liquidity     *big.Int
	sqrtPrice     *big.Int
	sqrtGamma     uint32
	nextTickBelow int
	nextTickAbove int

	tick        int
	token0Price currency.Price
	token1Price currency.Price
}

// NewTier validates state and builds a tier for the sorted pair token0/token1.
func NewTier(token0, token1 *currency.Token, state TierState) (*Tier, error) {
	if before, err := token0.SortsBefore(token1); err != nil {
		return nil, err
	} else if !before {
		return nil, fmt.Errorf("%w: tokens not sorted", errs.ErrInvalidToken)
	}
	if state.SqrtGamma == 0 || state.SqrtGamma > MaxSqrtGamma {
		return nil, fmt.Errorf("%w: sqrt gamma %d", errs.ErrInvalidTier, state.SqrtGamma)
	}
	if state.Liquidity == nil || state.Liquidity.Sign() < 0 {
		return nil, fmt.Errorf("%w: tier liquidity %v", errs.ErrInvalidLiquidity, state.Liquidity)
	}
	tick, err := tickmath.SqrtPriceToTick(state.SqrtPrice)
	if err != nil {
		return nil, err
	}
	for _, bound := range []int{state.NextTickBelow, state.NextTickAbove} {
		if bound < tickmath.MinTick || bound > tickmath.MaxTick {
			return nil, fmt.Errorf("%w: tier window bound %d", errs.ErrInvalidTick, bound)
		}
	}

	// the active window is [nextTickBelow, nextTickAbove); a price sitting
	// exactly on nextTickAbove belongs to the tick below it.
	if tick == state.NextTickAbove {
		tick--
	}

	priceRatio := new(big.Rat).SetFrac(new(big.Int).Mul(state.SqrtPrice, state.SqrtPrice), mathutil.Q144)
	token0Price := currency.NewPrice(token0, token1, priceRatio)
	token1Price, err := token0Price.Invert()
	if err != nil {
		return nil, err
	}

	return &Tier{
		token0:        token0,
		token1:        token1,
		liquidity:     new(big.Int).Set(state.Liquidity),
		sqrtPrice:     new(big.Int).Set(state.SqrtPrice),
		sqrtGamma:     state.SqrtGamma,
		nextTickBelow: state.NextTickBelow,
		nextTickAbove: state.NextTickAbove,
		tick:          tick,
		token0Price:   token0Price,
		token1Price:   token1Price,
	}, nil
}

func (t *Tier) Token0() *currency.Token { return t.token0 }
func (t *Tier) Token1() *currency.Token { return t.token1 }
func (t *Tier) Liquidity() *big.Int     { return new(big.Int).Set(t.liquidity) }
func (t *Tier) SqrtPrice() *big.Int     { return new(big.Int).Set(t.sqrtPrice) }
func (t *Tier) SqrtGamma() uint32       { return t.sqrtGamma }
func (t *Tier) NextTickBelow() int      { return t.nextTickBelow }
func (t *Tier) NextTickAbove() int      { return t.nextTickAbove }

// Tick returns the tier's active tick.
func (t *Tier) Tick() int { return t.tick }

// Gamma returns the fraction of input kept after fees, sqrtGamma^2 / 1e10.
func (t *Tier) Gamma() *big.Rat {
	g := new(big.Int).SetUint64(uint64(t.sqrtGamma))
	g.Mul(g, g)
	return new(big.Rat).SetFrac(g, gammaScale)
}

// FeePercent returns 1 - gamma.
func (t *Tier) FeePercent() currency.Percent {
	return currency.PercentFromRat(t.Gamma()).Complement()
}

// Token0Price is the spot price of token0 in token1, sqrtPrice^2 / 2^144.
func (t *Tier) Token0Price() currency.Price { return t.token0Price }

// Token1Price is the spot price of token1 in token0.
func (t *Tier) Token1Price() currency.Price { return t.token1Price }

// PriceOf returns the spot price of token in the other token of the pair.
func (t *Tier) PriceOf(token *currency.Token) (currency.Price, error) {
	switch {
	case token.Equals(t.token0):
		return t.token0Price, nil
	case token.Equals(t.token1):
		return t.token1Price, nil
	default:
		return currency.Price{}, fmt.Errorf("%w: %v not in tier", errs.ErrInvalidToken, token)
	}
}

// SqrtPriceBoundsWithSlippage returns the sqrt prices at which the token0
// price has moved down and up by tolerance, clamped to the valid range.
func (t *Tier) SqrtPriceBoundsWithSlippage(tolerance currency.Percent) (*big.Int, *big.Int, error) {
	if tolerance.IsNegative() {
		return nil, nil, fmt.Errorf("%w: %s", errs.ErrInvalidSlippage, tolerance)
	}
	tol := tolerance.Rat()
	priceX144 := new(big.Int).Mul(t.sqrtPrice, t.sqrtPrice)

	one := big.NewRat(1, 1)
	lower := scaledSqrt(priceX144, new(big.Rat).Sub(one, tol))
	upper := scaledSqrt(priceX144, new(big.Rat).Add(one, tol))

	if lower.Cmp(tickmath.MinSqrtPrice) < 0 {
		lower.Set(tickmath.MinSqrtPrice)
	}
	if upper.Cmp(tickmath.MaxSqrtPrice) > 0 {
		upper.Set(tickmath.MaxSqrtPrice)
	}
	return lower, upper, nil
}

// scaledSqrt returns floor(sqrt(x * factor)), or zero for a non-positive
// factor.
func scaledSqrt(x *big.Int, factor *big.Rat) *big.Int {
	if factor.Sign() <= 0 {
		return new(big.Int)
	}
	return mathutil.Sqrt(mathutil.MulDiv(x, factor.Num(), factor.Denom()))
}
