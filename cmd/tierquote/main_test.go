package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tierquote/internal/model"
	"tierquote/internal/quote"
	"tierquote/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func testSnapshot(block uint64, sqrtPrice string) model.PoolSnapshot {
	return model.PoolSnapshot{
		ChainID:     1,
		Token0:      model.TokenMeta{ChainID: 1, Address: "0x1111111111111111111111111111111111111111", Decimals: 18, Symbol: "AAA"},
		Token1:      model.TokenMeta{ChainID: 1, Address: "0x2222222222222222222222222222222222222222", Decimals: 18, Symbol: "BBB"},
		TickSpacing: 1,
		BlockNumber: block,
		Tiers: []model.TierSnapshot{{
			Liquidity:     "1000000000000000000",
			SqrtPrice:     sqrtPrice,
			SqrtGamma:     99850,
			NextTickBelow: -776363,
			NextTickAbove: 776363,
		}},
	}
}

var (
	metaA = model.TokenMeta{ChainID: 1, Address: "0x1111111111111111111111111111111111111111", Decimals: 18, Symbol: "AAA"}
	metaB = model.TokenMeta{ChainID: 1, Address: "0x2222222222222222222222222222222222222222", Decimals: 18, Symbol: "BBB"}
	metaC = model.TokenMeta{ChainID: 1, Address: "0x3333333333333333333333333333333333333333", Decimals: 18, Symbol: "CCC"}
)

const (
	sqrtPriceOne  = "4722366482869645213696"
	sqrtPriceFour = "9444732965739290427392"
	sqrtPriceNine = "14167099448608935641088"
)

func tieredSnapshot(t *testing.T, token0, token1 model.TokenMeta, sqrtPrices ...string) model.PoolSnapshot {
	t.Helper()
	snap := testSnapshot(100, sqrtPrices[0])
	snap.Token0, snap.Token1 = token0, token1
	snap.Tiers = nil
	for _, sp := range sqrtPrices {
		tier := testSnapshot(100, sp).Tiers[0]
		snap.Tiers = append(snap.Tiers, tier)
	}
	snap.PoolID = poolID(t, snap)
	return snap
}

// runTradeLines writes snaps and one request per line, runs the trade command
// and returns the quotes and error records it produced.
func runTradeLines(t *testing.T, snaps []model.PoolSnapshot, reqs ...model.TradeRequest) ([]model.TradeQuote, []model.QuoteError) {
	t.Helper()
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "snapshots.jsonl")
	require.NoError(t, storage.NewJsonlStorage(snapPath).PutSnapshots(context.Background(), snaps))

	lines := make([]string, len(reqs))
	for i, req := range reqs {
		b, err := json.Marshal(req)
		require.NoError(t, err)
		lines[i] = string(b)
	}
	inPath := filepath.Join(dir, "trades.jsonl")
	writeLines(t, inPath, lines...)

	outPath := filepath.Join(dir, "quotes.jsonl")
	errPath := filepath.Join(dir, "errors.jsonl")
	_, err := execute(t, "trade",
		"--snapshots", snapPath,
		"--in", inPath,
		"--out", outPath,
		"--errors", errPath,
		"--log-level", "error",
	)
	require.NoError(t, err)

	quotes, err := storage.ReadJSONL[model.TradeQuote](outPath)
	require.NoError(t, err)
	var failures []model.QuoteError
	if _, statErr := os.Stat(errPath); statErr == nil {
		failures, err = storage.ReadJSONL[model.QuoteError](errPath)
		require.NoError(t, err)
	}
	return quotes, failures
}

func poolID(t *testing.T, snap model.PoolSnapshot) string {
	t.Helper()
	p, err := quote.PoolFromSnapshot(snap)
	require.NoError(t, err)
	return p.ID().Hex()
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestTickCommand(t *testing.T) {
	out, err := execute(t, "tick", "--tick", "0")
	require.NoError(t, err)
	assert.Equal(t, "tick=0 sqrt_price=4722366482869645213696\n", out)

	out, err = execute(t, "tick", "--sqrt-price", "9444732965739290427392", "--tick-spacing", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "sqrt_price=9444732965739290427392 tick=13863\n")
	assert.Contains(t, out, "nearest_usable_tick=13900\n")

	_, err = execute(t, "tick")
	require.Error(t, err)
	_, err = execute(t, "tick", "--tick", "1", "--sqrt-price", "1")
	require.Error(t, err)
	_, err = execute(t, "tick", "--tick", "900000")
	require.Error(t, err)
}

func TestLatestSnapshots(t *testing.T) {
	older := testSnapshot(100, "4722366482869645213696")
	older.PoolID = "0xAB"
	newer := testSnapshot(120, "9444732965739290427392")
	newer.PoolID = "0xab"
	other := testSnapshot(130, "4722366482869645213696")
	other.ChainID = 56

	got := latestSnapshots([]model.PoolSnapshot{newer, other, older}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(120), got[0].BlockNumber)
}

func TestPositionCommand(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot(100, "4722366482869645213696")
	p, err := quote.PoolFromSnapshot(snap)
	require.NoError(t, err)

	snapPath := filepath.Join(dir, "snapshots.jsonl")
	require.NoError(t, storage.NewJsonlStorage(snapPath).PutSnapshots(context.Background(), []model.PoolSnapshot{snap}))

	good, err := json.Marshal(model.PositionRequest{
		ID:          "p1",
		PoolID:      p.ID().Hex(),
		TickLower:   -1,
		TickUpper:   2,
		LiquidityD8: "1000000000000000000",
	})
	require.NoError(t, err)
	unknown, err := json.Marshal(model.PositionRequest{
		ID:          "p2",
		PoolID:      "0x00000000000000000000000000000000000000000000000000000000000000ab",
		TickLower:   -1,
		TickUpper:   2,
		LiquidityD8: "1",
	})
	require.NoError(t, err)

	inPath := filepath.Join(dir, "requests.jsonl")
	writeLines(t, inPath, string(good), "", "{not json", string(unknown))

	outPath := filepath.Join(dir, "out", "quotes.jsonl")
	errPath := filepath.Join(dir, "errors.jsonl")
	_, err = execute(t, "position",
		"--snapshots", snapPath,
		"--in", inPath,
		"--out", outPath,
		"--errors", errPath,
		"--log-level", "error",
	)
	require.NoError(t, err)

	quotes, err := storage.ReadJSONL[model.PositionQuote](outPath)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "p1", quotes[0].ID)
	assert.Equal(t, model.AmountPair{Amount0: "25597440255974402", Amount1: "12799040079993000"}, quotes[0].Holding)

	failures, err := storage.ReadJSONL[model.QuoteError](errPath)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "bad_request", failures[0].Kind)
	assert.Equal(t, "p2", failures[1].RequestID)
	assert.Equal(t, "unknown_pool", failures[1].Kind)
}

func TestQuoteCommandRequiresInput(t *testing.T) {
	_, err := execute(t, "trade", "--snapshots", "snapshots.jsonl", "--log-level", "error")
	require.Error(t, err)
}

func TestTradeCommandExactInput(t *testing.T) {
	ab := tieredSnapshot(t, metaA, metaB, sqrtPriceOne, sqrtPriceFour)

	quotes, failures := runTradeLines(t, []model.PoolSnapshot{ab}, model.TradeRequest{
		ID:        "t1",
		TradeType: "exact_input",
		Input:     metaA.Address,
		Output:    metaB.Address,
		Slippage:  "5",
		Swaps: []model.SwapRequest{{
			PoolIDs:   []string{poolID(t, ab)},
			TierMasks: []uint{3},
			AmountIn:  "1000",
			AmountOut: "2400",
			Hops:      []model.HopRequest{{TierAmountsIn: []string{"250", "750"}}},
		}},
	})
	require.Empty(t, failures)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "t1", q.ID)
	assert.Equal(t, "exact_input", q.TradeType)
	assert.Equal(t, "2285", q.MinimumAmountOut)
	assert.Equal(t, "1000", q.MaximumAmountIn)
	assert.Equal(t, "3.250000000000", q.MarginalPrice)
	assert.Equal(t, "26.1538", q.PriceImpact)
	assert.Equal(t, "0.2998", q.FeePercent)
	assert.Equal(t, "2", q.FeeAmount)
	assert.Equal(t, [][][]string{{{"25.0000", "75.0000"}}}, q.TierDistributions)
}

func TestTradeCommandExactOutputMultiHop(t *testing.T) {
	ab := tieredSnapshot(t, metaA, metaB, sqrtPriceOne)
	bc := tieredSnapshot(t, metaB, metaC, sqrtPriceOne, sqrtPriceNine)

	// hops arrive in execution order, so the B/C hop comes first
	quotes, failures := runTradeLines(t, []model.PoolSnapshot{ab, bc},
		model.TradeRequest{
			ID:        "t2",
			TradeType: "exact_output",
			Input:     metaA.Address,
			Output:    metaC.Address,
			Slippage:  "1",
			Swaps: []model.SwapRequest{{
				PoolIDs:   []string{poolID(t, ab), poolID(t, bc)},
				TierMasks: []uint{1, 3},
				AmountIn:  "1000",
				AmountOut: "6500",
				Hops: []model.HopRequest{
					{TierAmountsIn: []string{"100", "300"}},
					{TierAmountsIn: []string{"1000"}},
				},
			}},
		},
		model.TradeRequest{
			ID:     "t3",
			Input:  metaA.Address,
			Output: metaC.Address,
			Swaps: []model.SwapRequest{{
				PoolIDs:   []string{poolID(t, ab), poolID(t, bc)},
				TierMasks: []uint{1, 3},
				AmountIn:  "1",
				AmountOut: "1",
			}},
		},
	)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "t2", q.ID)
	assert.Equal(t, "exact_output", q.TradeType)
	// 1 * (1/4 * 1 + 3/4 * 9)
	assert.Equal(t, "7.000000000000", q.MarginalPrice)
	assert.Equal(t, "1010", q.MaximumAmountIn)
	assert.Equal(t, "6500", q.MinimumAmountOut)
	assert.Equal(t, "6.500000000000", q.ExecutionPrice)
	assert.Equal(t, "6.435643564356", q.WorstPrice)
	assert.Equal(t, "7.1429", q.PriceImpact)
	assert.Equal(t, "0.5987", q.FeePercent)
	assert.Equal(t, "5", q.FeeAmount)
	assert.Equal(t, [][][]string{{{"100.0000"}, {"25.0000", "75.0000"}}}, q.TierDistributions)

	require.Len(t, failures, 1)
	assert.Equal(t, "t3", failures[0].RequestID)
	assert.Equal(t, "invalid_trade_type", failures[0].Kind)
}
