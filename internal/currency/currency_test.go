package currency

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"tierquote/internal/errs"
)

var (
	weth = NewToken(1, common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), 18, "WETH", "Wrapped Ether")
	usdc = NewToken(1, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), 6, "USDC", "USD Coin")
	eth  = NewNative(weth, "ETH", "Ether")
)

func TestSortsBefore(t *testing.T) {
	before, err := usdc.SortsBefore(weth)
	require.NoError(t, err)
	require.True(t, before)

	_, err = usdc.SortsBefore(usdc)
	require.True(t, errors.Is(err, errs.ErrInvalidToken))

	other := NewToken(56, usdc.Address(), 18, "USDC", "")
	_, err = usdc.SortsBefore(other)
	require.True(t, errors.Is(err, errs.ErrInvalidToken))

	a, b, err := SortTokens(weth, usdc)
	require.NoError(t, err)
	require.Same(t, usdc, a)
	require.Same(t, weth, b)
}

func TestEquality(t *testing.T) {
	copyOfWeth := NewToken(1, weth.Address(), 18, "WETH", "")
	require.True(t, weth.Equals(copyOfWeth))
	require.False(t, weth.Equals(usdc))
	require.False(t, weth.Equals(eth))
	require.True(t, eth.Equals(NewNative(copyOfWeth, "ETH", "Ether")))
	require.Same(t, weth, eth.Wrapped())
}

func TestNativeEqualityFollowsWrappedToken(t *testing.T) {
	otherWrapped := NewToken(1, common.HexToAddress("0x4200000000000000000000000000000000000006"), 18, "WETH", "")
	require.False(t, eth.Equals(NewNative(otherWrapped, "ETH", "Ether")))
	require.False(t, eth.Equals(NewNative(NewToken(10, weth.Address(), 18, "WETH", ""), "ETH", "Ether")))
	require.False(t, eth.Equals(weth))
	require.False(t, eth.Equals((*Native)(nil)))
}

func TestAmountFromDecimal(t *testing.T) {
	a, err := FromDecimal(usdc, "12.5")
	require.NoError(t, err)
	require.Equal(t, "12500000", a.Raw().String())
	require.Equal(t, "12.5", a.ToExact())

	_, err = FromDecimal(usdc, "0.0000001")
	require.True(t, errors.Is(err, ErrTooManyDecimals))

	_, err = NewAmount(usdc, big.NewInt(-1))
	require.True(t, errors.Is(err, ErrNegativeAmount))
}

func TestAmountAdd(t *testing.T) {
	a := MustAmount(usdc, big.NewInt(5))
	b := MustAmount(usdc, big.NewInt(7))
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, int64(12), sum.Raw().Int64())

	_, err = a.Add(MustAmount(weth, big.NewInt(1)))
	require.True(t, errors.Is(err, errs.ErrMismatchedCurrencies))
}

func TestAmountWrapped(t *testing.T) {
	a := MustAmount(eth, big.NewInt(9))
	require.True(t, a.Wrapped().Currency().Equals(weth))
	require.Equal(t, int64(9), a.Wrapped().Raw().Int64())
}

func TestPriceMultiplyAndInvert(t *testing.T) {
	p1 := NewPrice(weth, usdc, big.NewRat(3, 1))
	p2 := NewPrice(usdc, eth, big.NewRat(1, 2))

	chained, err := p1.Multiply(p2)
	require.NoError(t, err)
	require.Equal(t, "3/2", chained.Ratio().RatString())

	_, err = p2.Multiply(p2)
	require.True(t, errors.Is(err, errs.ErrMismatchedCurrencies))

	inv, err := p1.Invert()
	require.NoError(t, err)
	require.Equal(t, "1/3", inv.Ratio().RatString())
}

func TestPriceToFixed(t *testing.T) {
	// 2000 USDC per WETH in raw units is 2000e6 / 1e18.
	p := NewPrice(weth, usdc, new(big.Rat).SetFrac(big.NewInt(2000_000000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)))
	require.Equal(t, "2000.00", p.ToFixed(2))
}

func TestPercent(t *testing.T) {
	p, err := ParsePercent("0.5")
	require.NoError(t, err)
	require.Equal(t, "1/200", p.Rat().RatString())
	require.Equal(t, "0.50", p.ToFixed(2))
	require.Equal(t, "199/200", p.Complement().Rat().RatString())

	require.Equal(t, "0.1499", PercentFromRat(big.NewRat(1498875, 1000000000)).ToFixed(4))
	require.True(t, NewPercent(-1, 100).IsNegative())
}
