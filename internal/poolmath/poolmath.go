// Package poolmath converts between liquidity and token amounts over a sqrt
// price interval. Rounding always favors the pool: amounts paid in round up,
// amounts paid out round down.
package poolmath

import (
	"fmt"
	"math/big"

	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
)

// CalcAmt0FromSqrtP returns the token0 delta of moving the price from sqrtP0
// to sqrtP1 with liquidity. A rising price pays token0 out (negative, rounded
// toward zero); a falling price takes token0 in (positive, rounded up).
func CalcAmt0FromSqrtP(sqrtP0, sqrtP1, liquidity *big.Int) *big.Int {
	priceUp := sqrtP1.Cmp(sqrtP0) > 0
	if priceUp {
		sqrtP0, sqrtP1 = sqrtP1, sqrtP0
	}

	num := new(big.Int).Sub(sqrtP0, sqrtP1)
	num.Mul(num, liquidity)
	denom := new(big.Int).Mul(sqrtP0, sqrtP1)

	if priceUp {
		amt := mathutil.MulDiv(num, mathutil.Q72, denom)
		return amt.Neg(amt)
	}
	return mathutil.MulDivRoundingUp(num, mathutil.Q72, denom)
}

// CalcAmt1FromSqrtP returns the token1 delta of moving the price from sqrtP0
// to sqrtP1 with liquidity. A falling price pays token1 out (negative, rounded
// toward zero); a rising price takes token1 in (positive, rounded up).
func CalcAmt1FromSqrtP(sqrtP0, sqrtP1, liquidity *big.Int) *big.Int {
	priceDown := sqrtP1.Cmp(sqrtP0) < 0
	if priceDown {
		sqrtP0, sqrtP1 = sqrtP1, sqrtP0
	}

	delta := new(big.Int).Sub(sqrtP1, sqrtP0)

	if priceDown {
		amt := mathutil.MulShift(delta, liquidity, 72)
		return amt.Neg(amt)
	}
	return mathutil.MulDivRoundingUp(delta, liquidity, mathutil.Q72)
}

// CalcAmtsForLiquidity returns the token amounts matching a change of
// liquidityDeltaD8 (in units of 2^8 liquidity) on the range
// [sqrtPLower, sqrtPUpper] at price sqrtP. A positive delta yields the amounts
// to deposit, rounded up; a negative delta yields the amounts withdrawn,
// rounded down. Both results are non-negative.
func CalcAmtsForLiquidity(sqrtP, sqrtPLower, sqrtPUpper, liquidityDeltaD8 *big.Int) (*big.Int, *big.Int) {
	price := mathutil.Clamp(sqrtP, sqrtPLower, sqrtPUpper)
	liquidity := mathutil.Abs(liquidityDeltaD8)
	liquidity.Lsh(liquidity, 8)

	if liquidityDeltaD8.Sign() >= 0 {
		amt0 := CalcAmt0FromSqrtP(sqrtPUpper, price, liquidity)
		amt1 := CalcAmt1FromSqrtP(sqrtPLower, price, liquidity)
		return amt0, amt1
	}
	amt0 := CalcAmt0FromSqrtP(price, sqrtPUpper, liquidity)
	amt1 := CalcAmt1FromSqrtP(price, sqrtPLower, liquidity)
	return amt0.Neg(amt0), amt1.Neg(amt1)
}

// MinInputAmountsForLiquidity returns the minimum amounts needed to add
// liquidityD8 to the range.
func MinInputAmountsForLiquidity(sqrtP, sqrtPLower, sqrtPUpper, liquidityD8 *big.Int) (*big.Int, *big.Int, error) {
	if liquidityD8.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: negative liquidity %s", errs.ErrInvalidLiquidity, liquidityD8)
	}
	amt0, amt1 := CalcAmtsForLiquidity(sqrtP, sqrtPLower, sqrtPUpper, liquidityD8)
	return amt0, amt1, nil
}

// MinOutputAmountsForLiquidity returns the amounts guaranteed when removing
// liquidityD8 from the range.
func MinOutputAmountsForLiquidity(sqrtP, sqrtPLower, sqrtPUpper, liquidityD8 *big.Int) (*big.Int, *big.Int, error) {
	if liquidityD8.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: negative liquidity %s", errs.ErrInvalidLiquidity, liquidityD8)
	}
	amt0, amt1 := CalcAmtsForLiquidity(sqrtP, sqrtPLower, sqrtPUpper, new(big.Int).Neg(liquidityD8))
	return amt0, amt1, nil
}

// MaxOutputLiquidityForAmounts returns the largest liquidityD8 that amount0
// and amount1 can fund on the range at price sqrtP.
func MaxOutputLiquidityForAmounts(sqrtP, sqrtPLower, sqrtPUpper, amount0, amount1 *big.Int) *big.Int {
	if sqrtPLower.Cmp(sqrtPUpper) > 0 {
		sqrtPLower, sqrtPUpper = sqrtPUpper, sqrtPLower
	}
	if sqrtPLower.Cmp(sqrtPUpper) == 0 {
		return new(big.Int)
	}

	var liquidity *big.Int
	switch {
	case sqrtP.Cmp(sqrtPLower) <= 0:
		liquidity = liquidityForAmount0(sqrtPLower, sqrtPUpper, amount0)
	case sqrtP.Cmp(sqrtPUpper) < 0:
		liquidity = mathutil.Min(
			liquidityForAmount0(sqrtP, sqrtPUpper, amount0),
			liquidityForAmount1(sqrtPLower, sqrtP, amount1),
		)
	default:
		liquidity = liquidityForAmount1(sqrtPLower, sqrtPUpper, amount1)
	}
	return liquidity.Rsh(liquidity, 8)
}

func liquidityForAmount0(sqrtPA, sqrtPB, amount0 *big.Int) *big.Int {
	denom := new(big.Int).Sub(sqrtPB, sqrtPA)
	denom.Mul(denom, mathutil.Q72)
	return mathutil.MulDiv(new(big.Int).Mul(amount0, sqrtPA), sqrtPB, denom)
}

func liquidityForAmount1(sqrtPA, sqrtPB, amount1 *big.Int) *big.Int {
	return mathutil.MulDiv(amount1, mathutil.Q72, new(big.Int).Sub(sqrtPB, sqrtPA))
}
