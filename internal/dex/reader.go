package dex

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tierquote/internal/model"
)

// ReaderConfig configures a SnapshotReader.
type ReaderConfig struct {
	ChainID      uint64
	Hub          common.Address
	Concurrency  int
	MaxRetries   int
	RetryBackoff time.Duration
}

// SnapshotReader fetches pool snapshots from the hub.
type SnapshotReader struct {
	caller ContractCaller
	cfg    ReaderConfig
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewSnapshotReader(caller ContractCaller, cfg ReaderConfig, tokens *TokenMetaCache, logger *zap.Logger) *SnapshotReader {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotReader{caller: caller, cfg: cfg, tokens: tokens, logger: logger}
}

// FetchAll reads every pair at block. Results keep the order of pairs. The
// first failure cancels the remaining reads.
func (r *SnapshotReader) FetchAll(ctx context.Context, pairs []Pair, block *big.Int) ([]model.PoolSnapshot, error) {
	snaps := make([]model.PoolSnapshot, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			snap, err := r.Fetch(gctx, pair, block)
			if err != nil {
				return fmt.Errorf("pair %s/%s: %w", pair.TokenA.Hex(), pair.TokenB.Hex(), err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// Fetch reads one pair at block.
func (r *SnapshotReader) Fetch(ctx context.Context, pair Pair, block *big.Int) (model.PoolSnapshot, error) {
	a, b := pair.TokenA, pair.TokenB
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	token0, err := r.tokenMeta(ctx, a)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	token1, err := r.tokenMeta(ctx, b)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	var snap model.PoolSnapshot
	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		snap, err = FetchPoolSnapshot(ctx, r.caller, r.cfg.Hub, token0, token1, block)
		return err
	})
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	snap.FetchedAt = time.Now().UTC().Format(time.RFC3339)
	r.logger.Debug("pool snapshot fetched",
		zap.String("pool_id", snap.PoolID),
		zap.String("token0", token0.Symbol),
		zap.String("token1", token1.Symbol),
		zap.Int("tiers", len(snap.Tiers)),
	)
	return snap, nil
}

func (r *SnapshotReader) tokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := r.tokens.Get(token); ok {
		return meta, nil
	}
	var meta model.TokenMeta
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		meta, err = FetchTokenMeta(ctx, r.caller, r.cfg.ChainID, token, r.logger)
		return err
	})
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("token %s metadata: %w", token.Hex(), err)
	}
	r.tokens.Set(token, meta)
	return meta, nil
}
