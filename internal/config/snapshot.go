package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
)

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	RPCURL       string
	Hub          string
	Pairs        []string
	Block        uint64
	Out          string
	PGDSN        string
	Concurrency  int
	RPS          float64
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadSnapshot merges config file, environment variables, and flags into
// SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"out":           "./data/snapshots.jsonl",
		"concurrency":   4,
		"rps":           10.0,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:       v.GetString("rpc"),
		Hub:          v.GetString("hub"),
		Pairs:        pairList(v, "pair"),
		Block:        v.GetUint64("block"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		Concurrency:  v.GetInt("concurrency"),
		RPS:          v.GetFloat64("rps"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}
	return cfg, nil
}

// Validate checks the fields the snapshot command cannot run without.
func (c SnapshotConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc is required")
	}
	if !common.IsHexAddress(c.Hub) {
		return fmt.Errorf("hub must be an address, got %q", c.Hub)
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one pair is required")
	}
	if c.Out == "" && c.PGDSN == "" {
		return fmt.Errorf("out or pg-dsn is required")
	}
	return nil
}
