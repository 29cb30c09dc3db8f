package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tierquote/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshots.jsonl")
	store := NewJsonlStorage(path)

	first := model.PoolSnapshot{ChainID: 1, PoolID: "0x01", TickSpacing: 1, Tiers: []model.TierSnapshot{{Liquidity: "1", SqrtPrice: "2", SqrtGamma: 99850}}}
	second := model.PoolSnapshot{ChainID: 1, PoolID: "0x02", TickSpacing: 25}

	require.NoError(t, store.PutSnapshots(context.Background(), []model.PoolSnapshot{first}))
	require.NoError(t, store.PutSnapshots(context.Background(), []model.PoolSnapshot{second}))
	require.NoError(t, store.PutSnapshots(context.Background(), nil))

	got, err := ReadJSONL[model.PoolSnapshot](path)
	require.NoError(t, err)
	require.Equal(t, []model.PoolSnapshot{first, second}, got)
}

func TestDecodeJSONLSkipsBlankLines(t *testing.T) {
	input := "{\"id\":\"a\"}\n\n  \r\n{\"id\":\"b\"}\n"
	got, err := DecodeJSONL[model.PositionRequest](strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[1].ID)

	_, err = DecodeJSONL[model.PositionRequest](strings.NewReader("{\"id\":\"a\"}\n{oops\n"))
	require.ErrorContains(t, err, "line 2")
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)
	require.NoError(t, w.Write(model.QuoteError{RequestID: "r1", Kind: "invalid_path", Error: "invalid path"}))
	require.NoError(t, w.Write(model.QuoteError{RequestID: "r2", Kind: "internal", Error: "boom"}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, `{"request_id":"r1","kind":"invalid_path","error":"invalid path"}`, lines[0])
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := ReadJSONL[model.PoolSnapshot](filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
