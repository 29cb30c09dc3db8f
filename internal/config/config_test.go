package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("snapshot", pflag.ContinueOnError)
	fs.String("rpc", "", "")
	fs.String("hub", "", "")
	fs.StringSlice("pair", nil, "")
	fs.Uint64("block", 0, "")
	fs.Int("concurrency", 4, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadSnapshotPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "tierquote.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
rpc: http://file:8545
hub: "0x9999999999999999999999999999999999999999"
pair:
  - "0x1111111111111111111111111111111111111111:0x2222222222222222222222222222222222222222"
concurrency: 2
retry-backoff: 2s
`), 0o644))

	t.Setenv("TIERQUOTE_RPC", "http://env:8545")
	t.Setenv("TIERQUOTE_MAX_RETRIES", "9")

	cfg, err := LoadSnapshot(cfgFile, snapshotFlags(t, "--rpc", "http://flag:8545", "--block", "123"))
	require.NoError(t, err)

	assert.Equal(t, "http://flag:8545", cfg.RPCURL)
	assert.Equal(t, uint64(123), cfg.Block)
	assert.Equal(t, 9, cfg.MaxRetries)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111:0x2222222222222222222222222222222222222222"}, cfg.Pairs)
	assert.Equal(t, "./data/snapshots.jsonl", cfg.Out)
	require.NoError(t, cfg.Validate())
}

func TestLoadSnapshotPairsFromEnv(t *testing.T) {
	t.Setenv("TIERQUOTE_PAIR", "0xa:0xb, ,0xc:0xd")
	cfg, err := LoadSnapshot("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xa:0xb", "0xc:0xd"}, cfg.Pairs)
}

func TestSnapshotValidate(t *testing.T) {
	valid := SnapshotConfig{
		RPCURL: "http://localhost:8545",
		Hub:    "0x9999999999999999999999999999999999999999",
		Pairs:  []string{"a:b"},
		Out:    "out.jsonl",
	}
	require.NoError(t, valid.Validate())

	noHub := valid
	noHub.Hub = "hub"
	assert.Error(t, noHub.Validate())

	noSink := valid
	noSink.Out = ""
	assert.Error(t, noSink.Validate())

	noPairs := valid
	noPairs.Pairs = nil
	assert.Error(t, noPairs.Validate())
}

func TestLoadQuoteDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("trade", pflag.ContinueOnError)
	fs.String("in", "", "")
	fs.String("snapshots", "", "")
	require.NoError(t, fs.Parse([]string{"--in", "trades.jsonl", "--snapshots", "snaps.jsonl"}))

	cfg, err := LoadQuote("", fs)
	require.NoError(t, err)
	assert.Equal(t, "0.5", cfg.Slippage)
	assert.Equal(t, uint64(1), cfg.ChainID)
	assert.Equal(t, "./data/quote_errors.jsonl", cfg.Errors)
	require.NoError(t, cfg.Validate())

	cfg.Snapshots = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := LoadQuote(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}
