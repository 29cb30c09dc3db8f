package currency

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var hundred = big.NewRat(100, 1)

// Percent is an exact fraction; 1% is 1/100.
type Percent struct {
	r *big.Rat
}

func NewPercent(num, den int64) Percent {
	return Percent{r: big.NewRat(num, den)}
}

func PercentFromRat(r *big.Rat) Percent {
	return Percent{r: new(big.Rat).Set(r)}
}

// ParsePercent reads a value expressed in percent, so "0.5" is 0.5%.
func ParsePercent(value string) (Percent, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Percent{}, fmt.Errorf("parse percent %q: %w", value, err)
	}
	r := d.Rat()
	return Percent{r: r.Quo(r, hundred)}, nil
}

// Rat returns the fraction, e.g. 0.005 for 0.5%.
func (p Percent) Rat() *big.Rat {
	if p.r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.r)
}

func (p Percent) IsNegative() bool {
	return p.r != nil && p.r.Sign() < 0
}

// Complement returns 1 - p.
func (p Percent) Complement() Percent {
	return Percent{r: new(big.Rat).Sub(big.NewRat(1, 1), p.Rat())}
}

// ToFixed formats the value in percent units, e.g. "0.1499".
func (p Percent) ToFixed(places int32) string {
	return ratToFixed(new(big.Rat).Mul(p.Rat(), hundred), places)
}

func (p Percent) String() string {
	return p.ToFixed(2) + "%"
}
