package dex

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tierquote/internal/currency"
	"tierquote/internal/pool"
)

var (
	tokenA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB = common.HexToAddress("0x2222222222222222222222222222222222222222")
	hub    = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

// fakeCaller answers calls by target address and method selector.
type fakeCaller struct {
	mu        sync.Mutex
	responses map[common.Address]map[string][]byte
	failures  int
	calls     int
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	resp, ok := f.responses[*msg.To][string(msg.Data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func (f *fakeCaller) set(t *testing.T, to common.Address, parsed abi.ABI, method string, values ...interface{}) {
	t.Helper()
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	if f.responses == nil {
		f.responses = make(map[common.Address]map[string][]byte)
	}
	if f.responses[to] == nil {
		f.responses[to] = make(map[string][]byte)
	}
	f.responses[to][string(parsed.Methods[method].ID)] = out
}

func newFake(t *testing.T, tiers []hubTier) *fakeCaller {
	t.Helper()
	stringABI, err := erc20StringABI.get()
	require.NoError(t, err)
	bytes32ABI, err := erc20Bytes32ABI.get()
	require.NoError(t, err)
	hubParsed, err := HubABI()
	require.NoError(t, err)

	f := &fakeCaller{}
	f.set(t, tokenA, stringABI, "decimals", uint8(18))
	f.set(t, tokenA, stringABI, "symbol", "AAA")
	f.set(t, tokenA, stringABI, "name", "Token A")

	var sym [32]byte
	copy(sym[:], "BBB")
	f.set(t, tokenB, stringABI, "decimals", uint8(6))
	f.set(t, tokenB, bytes32ABI, "symbol", sym)

	f.set(t, hub, hubParsed, "getAllTiers", tiers)
	f.set(t, hub, hubParsed, "getPoolParameters", uint8(25), uint8(3))
	return f
}

func sampleTiers() []hubTier {
	sqrtOne := new(big.Int).Lsh(big.NewInt(1), 72)
	return []hubTier{
		{
			Liquidity:        big.NewInt(1_000_000),
			SqrtPrice:        sqrtOne,
			SqrtGamma:        big.NewInt(99850),
			Tick:             big.NewInt(0),
			NextTickBelow:    big.NewInt(-776363),
			NextTickAbove:    big.NewInt(776363),
			FeeGrowthGlobal0: big.NewInt(0),
			FeeGrowthGlobal1: big.NewInt(0),
		},
		{
			Liquidity:        big.NewInt(0),
			SqrtPrice:        sqrtOne,
			SqrtGamma:        big.NewInt(99975),
			Tick:             big.NewInt(0),
			NextTickBelow:    big.NewInt(-100),
			NextTickAbove:    big.NewInt(50),
			FeeGrowthGlobal0: big.NewInt(7),
			FeeGrowthGlobal1: big.NewInt(9),
		},
	}
}

func TestFetchAll(t *testing.T) {
	f := newFake(t, sampleTiers())
	reader := NewSnapshotReader(f, ReaderConfig{ChainID: 1, Hub: hub, Concurrency: 2}, nil, zaptest.NewLogger(t))

	snaps, err := reader.FetchAll(context.Background(), []Pair{{TokenA: tokenB, TokenB: tokenA}}, big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	snap := snaps[0]

	assert.Equal(t, "AAA", snap.Token0.Symbol)
	assert.Equal(t, "Token A", snap.Token0.Name)
	assert.Equal(t, uint8(18), snap.Token0.Decimals)
	assert.Equal(t, "BBB", snap.Token1.Symbol)
	assert.Equal(t, uint8(6), snap.Token1.Decimals)
	assert.Equal(t, int32(25), snap.TickSpacing)
	assert.Equal(t, uint8(3), snap.ProtocolFee)
	assert.Equal(t, uint64(100), snap.BlockNumber)
	assert.NotEmpty(t, snap.FetchedAt)

	require.Len(t, snap.Tiers, 2)
	assert.Equal(t, "4722366482869645213696", snap.Tiers[0].SqrtPrice)
	assert.Equal(t, uint32(99975), snap.Tiers[1].SqrtGamma)
	assert.Equal(t, int32(-100), snap.Tiers[1].NextTickBelow)
	assert.Equal(t, int32(-776363), snap.Tiers[0].NextTickBelow)

	want, err := pool.ComputePoolID(
		currency.NewToken(1, tokenA, 18, "AAA", ""),
		currency.NewToken(1, tokenB, 6, "BBB", ""),
	)
	require.NoError(t, err)
	assert.Equal(t, want.Hex(), snap.PoolID)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	f := newFake(t, sampleTiers())
	f.failures = 2
	reader := NewSnapshotReader(f, ReaderConfig{ChainID: 1, Hub: hub, MaxRetries: 3, RetryBackoff: time.Millisecond}, nil, nil)

	_, err := reader.Fetch(context.Background(), Pair{TokenA: tokenA, TokenB: tokenB}, nil)
	require.NoError(t, err)
}

func TestFetchPoolNotFoundIsNotRetried(t *testing.T) {
	f := newFake(t, []hubTier{})
	reader := NewSnapshotReader(f, ReaderConfig{ChainID: 1, Hub: hub, MaxRetries: 5, RetryBackoff: time.Millisecond}, nil, nil)

	_, err := reader.Fetch(context.Background(), Pair{TokenA: tokenA, TokenB: tokenB}, nil)
	require.True(t, errors.Is(err, ErrPoolNotFound))

	// token metadata takes 8 calls, then a single getAllTiers
	f.mu.Lock()
	calls := f.calls
	f.mu.Unlock()
	assert.LessOrEqual(t, calls, 9)
}

func TestTokenMetaCache(t *testing.T) {
	f := newFake(t, sampleTiers())
	cache := NewTokenMetaCache()
	reader := NewSnapshotReader(f, ReaderConfig{ChainID: 1, Hub: hub}, cache, nil)

	_, err := reader.Fetch(context.Background(), Pair{TokenA: tokenA, TokenB: tokenB}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	f.mu.Lock()
	before := f.calls
	f.mu.Unlock()
	_, err = reader.Fetch(context.Background(), Pair{TokenA: tokenA, TokenB: tokenB}, nil)
	require.NoError(t, err)
	f.mu.Lock()
	after := f.calls
	f.mu.Unlock()
	// only the two hub calls
	assert.Equal(t, 2, after-before)
}

func TestParsePairs(t *testing.T) {
	pairs, err := ParsePairs([]string{
		" 0x1111111111111111111111111111111111111111:0x2222222222222222222222222222222222222222 ",
		"",
	})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, tokenA, pairs[0].TokenA)
	assert.Equal(t, tokenB, pairs[0].TokenB)

	for _, bad := range []string{
		"0x1111111111111111111111111111111111111111",
		"0x1111111111111111111111111111111111111111:nothex",
		"0x1111111111111111111111111111111111111111:0x1111111111111111111111111111111111111111",
	} {
		_, err := ParsePairs([]string{bad})
		assert.Error(t, err, bad)
	}
}
