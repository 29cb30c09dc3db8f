package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tierquote/internal/chain"
	"tierquote/internal/config"
	"tierquote/internal/dex"
	"tierquote/internal/storage"
	"tierquote/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}
	hub, err := dex.ParseAddress(cfg.Hub)
	if err != nil {
		return err
	}
	pairs, err := dex.ParsePairs(cfg.Pairs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
		RequestsPerSecond: cfg.RPS,
		Burst:             cfg.Concurrency,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}

	block := cfg.Block
	if block == 0 {
		if block, err = chainClient.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	var sinks []storage.SnapshotSink
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if last, ok, err := store.LastSnapshotBlock(ctx, chainID.Uint64()); err != nil {
			return err
		} else if ok {
			logger.Info("previous snapshot", zap.Uint64("block", last))
		}
		sinks = append(sinks, store)
	}

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.String("hub", hub.Hex()),
		zap.Int("pairs", len(pairs)),
		zap.Uint64("block", block),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	reader := dex.NewSnapshotReader(chainClient, dex.ReaderConfig{
		ChainID:      chainID.Uint64(),
		Hub:          hub,
		Concurrency:  cfg.Concurrency,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, dex.NewTokenMetaCache(), logger)

	snaps, err := reader.FetchAll(ctx, pairs, new(big.Int).SetUint64(block))
	if err != nil {
		return err
	}

	for _, sink := range sinks {
		if err := sink.PutSnapshots(ctx, snaps); err != nil {
			return fmt.Errorf("write snapshots: %w", err)
		}
	}

	tiers := 0
	for _, snap := range snaps {
		tiers += len(snap.Tiers)
	}
	logger.Info("snapshot complete",
		zap.Int("pools", len(snaps)),
		zap.Int("tiers", tiers),
	)
	return nil
}
