// Package tickmath converts between tick indexes and Q72.72 sqrt prices.
//
// Prices follow sqrt(1.0001)^tick. Both directions reproduce the on-chain
// integer algorithm exactly, so results can be compared bit for bit with
// values read from a pool.
package tickmath

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
)

const (
	MinTick = -776363
	MaxTick = 776363
)

var (
	MinSqrtPrice = big.NewInt(65539)
	MaxSqrtPrice = mathutil.MustParse("340271175397327323250730767849398346765")
)

var (
	ratioOdd   = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	ratioEven  = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	maxUint256 = new(uint256.Int).Not(uint256.NewInt(0))
	q56        = new(big.Int).Lsh(big.NewInt(1), 56)

	// ratio multipliers for bits 0x2 through 0x80000 of |tick|.
	ladder = []*uint256.Int{
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}

	logSqrt10001 = mathutil.MustParse("255738958999603826347141")
	tickLowBias  = mathutil.MustParse("3402992956809132418596140100660247210")
	tickHighBias = mathutil.MustParse("291339464771989622907027621153398088495")
)

// TickToSqrtPrice returns the Q72.72 sqrt price at tick, rounded up.
func TickToSqrtPrice(tick int) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidTick, tick)
	}
	return tickToSqrtPrice(tick), nil
}

// MustTickToSqrtPrice is TickToSqrtPrice for ticks already known to be valid.
func MustTickToSqrtPrice(tick int) *big.Int {
	sqrtP, err := TickToSqrtPrice(tick)
	if err != nil {
		panic(err)
	}
	return sqrtP
}

func tickToSqrtPrice(tick int) *big.Int {
	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioOdd)
	} else {
		ratio.Set(ratioEven)
	}
	for i, multiplier := range ladder {
		if absTick&(0x2<<i) != 0 {
			ratio.Mul(ratio, multiplier)
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 to Q72.72, rounding up
	return mathutil.CeilDiv(ratio.ToBig(), q56)
}

// SqrtPriceToTick returns the greatest tick whose sqrt price does not exceed
// sqrtP.
func SqrtPriceToTick(sqrtP *big.Int) (int, error) {
	if sqrtP == nil || sqrtP.Cmp(MinSqrtPrice) < 0 || sqrtP.Cmp(MaxSqrtPrice) > 0 {
		return 0, fmt.Errorf("%w: %v", errs.ErrInvalidSqrtPrice, sqrtP)
	}

	x := new(big.Int).Lsh(sqrtP, 56)
	msb := x.BitLen() - 1

	r := new(big.Int)
	if msb >= 128 {
		r.Rsh(x, uint(msb-127))
	} else {
		r.Lsh(x, uint(127-msb))
	}

	log2 := big.NewInt(int64(msb - 128))
	log2.Lsh(log2, 64)
	for i := 0; i < 14; i++ {
		r.Mul(r, r)
		r.Rsh(r, 127)
		f := uint(r.Bit(128))
		if f == 1 {
			log2.Add(log2, new(big.Int).Lsh(big.NewInt(1), uint(63-i)))
		}
		r.Rsh(r, f)
	}

	logSqrt := new(big.Int).Mul(log2, logSqrt10001)
	tickLow := new(big.Int).Sub(logSqrt, tickLowBias)
	tickLow.Rsh(tickLow, 128)
	tickHigh := new(big.Int).Add(logSqrt, tickHighBias)
	tickHigh.Rsh(tickHigh, 128)

	low, high := int(tickLow.Int64()), int(tickHigh.Int64())
	if low == high {
		return low, nil
	}
	if tickToSqrtPrice(high).Cmp(sqrtP) <= 0 {
		return high, nil
	}
	return low, nil
}

// IsAligned reports whether tick is a multiple of tickSpacing.
func IsAligned(tick, tickSpacing int) bool {
	return tickSpacing > 0 && tick%tickSpacing == 0
}

// NearestUsableTick rounds tick to the closest multiple of tickSpacing that
// lies inside the global tick range.
func NearestUsableTick(tick, tickSpacing int) (int, error) {
	if tickSpacing <= 0 {
		return 0, fmt.Errorf("%w: tick spacing %d", errs.ErrInvalidTickRange, tickSpacing)
	}
	if tick < MinTick || tick > MaxTick {
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidTick, tick)
	}

	rounded := floorDiv(tick+tickSpacing/2, tickSpacing) * tickSpacing
	switch {
	case rounded < MinTick:
		return rounded + tickSpacing, nil
	case rounded > MaxTick:
		return rounded - tickSpacing, nil
	default:
		return rounded, nil
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
