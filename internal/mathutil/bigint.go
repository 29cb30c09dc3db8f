// Package mathutil provides arbitrary-precision integer helpers used by the
// fixed-point price and liquidity math. All functions return fresh values and
// never modify their arguments.
package mathutil

import "math/big"

var (
	// Q72 is 2^72, the fixed-point scale of a sqrt price.
	Q72 = new(big.Int).Lsh(big.NewInt(1), 72)
	// Q144 is 2^144, the scale of a squared sqrt price.
	Q144 = new(big.Int).Lsh(big.NewInt(1), 144)
	// MaxUint256 is 2^256 - 1.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// CeilDiv returns ceil(x / y) for non-negative x and positive y.
func CeilDiv(x, y *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Abs returns |x|.
func Abs(x *big.Int) *big.Int {
	return new(big.Int).Abs(x)
}

// MulShift returns (x * y) >> n.
func MulShift(x, y *big.Int, n uint) *big.Int {
	z := new(big.Int).Mul(x, y)
	return z.Rsh(z, n)
}

// MulDiv returns floor(x * y / d) for non-negative operands.
func MulDiv(x, y, d *big.Int) *big.Int {
	z := new(big.Int).Mul(x, y)
	return z.Quo(z, d)
}

// MulDivRoundingUp returns ceil(x * y / d) for non-negative operands.
func MulDivRoundingUp(x, y, d *big.Int) *big.Int {
	return CeilDiv(new(big.Int).Mul(x, y), d)
}

// Sqrt returns floor(sqrt(x)) for non-negative x.
func Sqrt(x *big.Int) *big.Int {
	return new(big.Int).Sqrt(x)
}

// Min returns a copy of the smaller of x and y.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return new(big.Int).Set(x)
	}
	return new(big.Int).Set(y)
}

// Clamp returns x limited to [lo, hi].
func Clamp(x, lo, hi *big.Int) *big.Int {
	switch {
	case x.Cmp(lo) < 0:
		return new(big.Int).Set(lo)
	case x.Cmp(hi) > 0:
		return new(big.Int).Set(hi)
	default:
		return new(big.Int).Set(x)
	}
}

// Inverse returns 1/r. It panics on zero, as big.Rat.Inv does.
func Inverse(r *big.Rat) *big.Rat {
	return new(big.Rat).Inv(r)
}

// MustParse parses a base-10 integer literal and panics on malformed input.
// It is meant for package-level constants.
func MustParse(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("mathutil: bad integer literal " + s)
	}
	return v
}
