package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the position and trade commands.
type QuoteConfig struct {
	Snapshots string
	PGDSN     string
	ChainID   uint64
	In        string
	Out       string
	Errors    string
	Slippage  string
	LogLevel  string
}

// LoadQuote merges config file, environment variables, and flags into
// QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"chain-id":  uint64(1),
		"errors":    "./data/quote_errors.jsonl",
		"slippage":  "0.5",
		"log-level": "info",
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Snapshots: v.GetString("snapshots"),
		PGDSN:     v.GetString("pg-dsn"),
		ChainID:   v.GetUint64("chain-id"),
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		Errors:    v.GetString("errors"),
		Slippage:  v.GetString("slippage"),
		LogLevel:  v.GetString("log-level"),
	}
	return cfg, nil
}

// Validate checks the fields a quote command cannot run without.
func (c QuoteConfig) Validate() error {
	if c.Snapshots == "" && c.PGDSN == "" {
		return fmt.Errorf("snapshots or pg-dsn is required")
	}
	if c.In == "" {
		return fmt.Errorf("in is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("chain-id is required")
	}
	return nil
}
