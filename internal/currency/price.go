package currency

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
)

var ErrZeroPrice = errors.New("currency: zero price")

// Price is an exchange rate in raw units: ratio quote units per base unit.
type Price struct {
	base  Currency
	quote Currency
	ratio *big.Rat
}

func NewPrice(base, quote Currency, ratio *big.Rat) Price {
	return Price{base: base, quote: quote, ratio: new(big.Rat).Set(ratio)}
}

// PriceFromAmounts returns quote/base.
func PriceFromAmounts(base, quote Amount) (Price, error) {
	if base.IsZero() {
		return Price{}, fmt.Errorf("%w: zero base amount", ErrZeroPrice)
	}
	return Price{
		base:  base.currency,
		quote: quote.currency,
		ratio: new(big.Rat).SetFrac(quote.Raw(), base.Raw()),
	}, nil
}

func (p Price) Base() Currency  { return p.base }
func (p Price) Quote() Currency { return p.quote }

// Ratio returns a copy of the raw ratio.
func (p Price) Ratio() *big.Rat {
	if p.ratio == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.ratio)
}

// Invert swaps base and quote.
func (p Price) Invert() (Price, error) {
	if p.ratio == nil || p.ratio.Sign() == 0 {
		return Price{}, ErrZeroPrice
	}
	return Price{base: p.quote, quote: p.base, ratio: mathutil.Inverse(p.ratio)}, nil
}

// Multiply chains p (A->B) with other (B->C) into A->C.
func (p Price) Multiply(other Price) (Price, error) {
	if !p.quote.Wrapped().Equals(other.base.Wrapped()) {
		return Price{}, fmt.Errorf("%w: %v quote vs %v base", errs.ErrMismatchedCurrencies, p.quote, other.base)
	}
	return Price{base: p.base, quote: other.quote, ratio: new(big.Rat).Mul(p.Ratio(), other.Ratio())}, nil
}

// Adjusted returns the ratio in whole units of each currency.
func (p Price) Adjusted() *big.Rat {
	scale := new(big.Rat).SetFrac(pow10(p.base.Decimals()), pow10(p.quote.Decimals()))
	return scale.Mul(scale, p.Ratio())
}

// ToFixed formats the decimal-adjusted price with places fractional digits.
func (p Price) ToFixed(places int32) string {
	return ratToFixed(p.Adjusted(), places)
}

func (p Price) String() string {
	return fmt.Sprintf("%s %v/%v", p.ToFixed(8), p.quote, p.base)
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func ratToFixed(r *big.Rat, places int32) string {
	num := decimal.NewFromBigInt(r.Num(), 0)
	den := decimal.NewFromBigInt(r.Denom(), 0)
	return num.DivRound(den, places).StringFixed(places)
}
