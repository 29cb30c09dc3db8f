package currency

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"tierquote/internal/errs"
)

var (
	ErrNilCurrency     = errors.New("currency: nil currency")
	ErrNegativeAmount  = errors.New("currency: negative amount")
	ErrTooManyDecimals = errors.New("currency: too many decimal places")
)

// Amount is a non-negative quantity of a currency in its smallest unit.
type Amount struct {
	currency Currency
	raw      *big.Int
}

// NewAmount copies raw into a new Amount.
func NewAmount(c Currency, raw *big.Int) (Amount, error) {
	if c == nil {
		return Amount{}, ErrNilCurrency
	}
	if raw == nil {
		raw = new(big.Int)
	}
	if raw.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: %s", ErrNegativeAmount, raw)
	}
	return Amount{currency: c, raw: new(big.Int).Set(raw)}, nil
}

// MustAmount is NewAmount for values known to be valid.
func MustAmount(c Currency, raw *big.Int) Amount {
	a, err := NewAmount(c, raw)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount parses a raw base-10 integer string.
func ParseAmount(c Currency, raw string) (Amount, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Amount{}, fmt.Errorf("parse amount %q", raw)
	}
	return NewAmount(c, v)
}

// FromDecimal parses a human-readable amount such as "1.25" into raw units.
func FromDecimal(c Currency, value string) (Amount, error) {
	if c == nil {
		return Amount{}, ErrNilCurrency
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("parse decimal %q: %w", value, err)
	}
	shifted := d.Shift(int32(c.Decimals()))
	if !shifted.Equal(shifted.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %q for %d decimals", ErrTooManyDecimals, value, c.Decimals())
	}
	return NewAmount(c, shifted.BigInt())
}

func (a Amount) Currency() Currency { return a.currency }

// Raw returns a copy of the raw value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Wrapped returns the same quantity denominated in the wrapped token.
func (a Amount) Wrapped() Amount {
	if a.currency == nil || !a.currency.IsNative() {
		return a
	}
	return Amount{currency: a.currency.Wrapped(), raw: a.Raw()}
}

// Add sums two amounts of the same currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if !a.currency.Equals(b.currency) {
		return Amount{}, fmt.Errorf("%w: %v and %v", errs.ErrMismatchedCurrencies, a.currency, b.currency)
	}
	return Amount{currency: a.currency, raw: new(big.Int).Add(a.Raw(), b.Raw())}, nil
}

// MulRatFloor returns floor(a * r) for a non-negative ratio.
func (a Amount) MulRatFloor(r *big.Rat) Amount {
	v := new(big.Int).Mul(a.Raw(), r.Num())
	v.Quo(v, r.Denom())
	return Amount{currency: a.currency, raw: v}
}

// Rat returns the raw value as a rational.
func (a Amount) Rat() *big.Rat {
	return new(big.Rat).SetInt(a.Raw())
}

// ToExact formats the amount in whole units, e.g. "1.5".
func (a Amount) ToExact() string {
	if a.currency == nil {
		return a.Raw().String()
	}
	return decimal.NewFromBigInt(a.Raw(), -int32(a.currency.Decimals())).String()
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %v", a.ToExact(), a.currency)
}
