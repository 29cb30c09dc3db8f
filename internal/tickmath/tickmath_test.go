package tickmath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
)

func TestTickToSqrtPriceReferenceValues(t *testing.T) {
	cases := []struct {
		tick int
		want string
	}{
		{0, "4722366482869645213696"},
		{1, "4722602595291125721830"},
		{-1, "4722130382252900431787"},
		{2, "4722838719517932178218"},
		{100, "4746036256940647887965"},
		{-100, "4698814756401787792198"},
		{MinTick, "65539"},
		{MaxTick, "340271175397327323250730767849398346765"},
	}
	for _, tc := range cases {
		got, err := TickToSqrtPrice(tc.tick)
		require.NoError(t, err)
		require.Equal(t, tc.want, got.String(), "tick %d", tc.tick)
	}
}

func TestTickZeroIsOne(t *testing.T) {
	got := MustTickToSqrtPrice(0)
	require.Zero(t, got.Cmp(mathutil.Q72))
}

func TestBoundsMatchConstants(t *testing.T) {
	require.Zero(t, MustTickToSqrtPrice(MinTick).Cmp(MinSqrtPrice))
	require.Zero(t, MustTickToSqrtPrice(MaxTick).Cmp(MaxSqrtPrice))
}

func TestTickToSqrtPriceOutOfRange(t *testing.T) {
	for _, tick := range []int{MinTick - 1, MaxTick + 1} {
		_, err := TickToSqrtPrice(tick)
		require.True(t, errors.Is(err, errs.ErrInvalidTick), "tick %d", tick)
	}
}

func TestRoundTrip(t *testing.T) {
	ticks := []int{MinTick, MinTick + 1, -1, 0, 1, 2, MaxTick - 1, MaxTick}
	for tick := MinTick; tick <= MaxTick; tick += 7919 {
		ticks = append(ticks, tick)
	}
	for _, tick := range ticks {
		got, err := SqrtPriceToTick(MustTickToSqrtPrice(tick))
		require.NoError(t, err)
		require.Equal(t, tick, got)
	}
}

func TestMonotonic(t *testing.T) {
	prev := MustTickToSqrtPrice(-2000)
	for tick := -1999; tick <= 2000; tick++ {
		cur := MustTickToSqrtPrice(tick)
		require.Equal(t, 1, cur.Cmp(prev), "tick %d", tick)
		prev = cur
	}
}

func TestSqrtPriceToTickBetweenTicks(t *testing.T) {
	at5 := MustTickToSqrtPrice(5)

	below := new(big.Int).Sub(at5, big.NewInt(1))
	got, err := SqrtPriceToTick(below)
	require.NoError(t, err)
	require.Equal(t, 4, got)

	above := new(big.Int).Add(at5, big.NewInt(1))
	got, err = SqrtPriceToTick(above)
	require.NoError(t, err)
	require.Equal(t, 5, got)
}

func TestSqrtPriceToTickOutOfRange(t *testing.T) {
	low := new(big.Int).Sub(MinSqrtPrice, big.NewInt(1))
	high := new(big.Int).Add(MaxSqrtPrice, big.NewInt(1))
	for _, sqrtP := range []*big.Int{low, high, nil} {
		_, err := SqrtPriceToTick(sqrtP)
		require.True(t, errors.Is(err, errs.ErrInvalidSqrtPrice))
	}
}

func TestNearestUsableTick(t *testing.T) {
	cases := []struct {
		tick, spacing, want int
	}{
		{0, 10, 0},
		{14, 10, 10},
		{15, 10, 20},
		{-14, 10, -10},
		{-16, 10, -20},
		{MinTick, 10, -776360},
		{MaxTick, 10, 776360},
	}
	for _, tc := range cases {
		got, err := NearestUsableTick(tc.tick, tc.spacing)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "tick %d spacing %d", tc.tick, tc.spacing)
	}

	_, err := NearestUsableTick(0, 0)
	require.True(t, errors.Is(err, errs.ErrInvalidTickRange))
}

func TestIsAligned(t *testing.T) {
	require.True(t, IsAligned(-20, 10))
	require.False(t, IsAligned(-25, 10))
	require.False(t, IsAligned(0, 0))
}
