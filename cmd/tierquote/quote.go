package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tierquote/internal/config"
	"tierquote/internal/currency"
	"tierquote/internal/model"
	"tierquote/internal/quote"
	"tierquote/internal/storage"
	"tierquote/internal/storage/postgres"
)

func runPosition(cmd *cobra.Command, _ []string) error {
	return runQuotes(cmd, "position", func(b *quote.Book, req model.PositionRequest) (string, interface{}, error) {
		q, err := b.QuotePosition(req)
		return req.ID, q, err
	})
}

func runTrade(cmd *cobra.Command, _ []string) error {
	return runQuotes(cmd, "trade", func(b *quote.Book, req model.TradeRequest) (string, interface{}, error) {
		q, err := b.QuoteTrade(req)
		return req.ID, q, err
	})
}

// runQuotes streams requests from the input JSONL through quoteFn. Failed
// lines go to the errors file and never stop the run.
func runQuotes[R any](cmd *cobra.Command, name string, quoteFn func(*quote.Book, R) (string, interface{}, error)) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := loadBook(ctx, cfg, logger)
	if err != nil {
		return err
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	quotes, err := openJSONL(cfg.Out, false, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer quotes.Close()

	errorsOut, err := openJSONL(cfg.Errors, true, io.Discard)
	if err != nil {
		return err
	}
	defer errorsOut.Close()

	logger.Info(name+" quote start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Int("pools", book.Len()),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, quoted, failed int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var req R
		if err := json.Unmarshal(line, &req); err != nil {
			failed++
			_ = errorsOut.Write(model.QuoteError{
				Kind:  "bad_request",
				Error: fmt.Sprintf("line %d: %v", total, err),
			})
			continue
		}

		id, result, err := quoteFn(book, req)
		if err != nil {
			failed++
			logger.Debug("quote failed", zap.String("id", id), zap.Error(err))
			_ = errorsOut.Write(quote.NewQuoteError(id, err))
			continue
		}
		if err := quotes.Write(result); err != nil {
			return fmt.Errorf("write quote: %w", err)
		}
		quoted++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info(name+" quote complete",
		zap.Int("total", total),
		zap.Int("quoted", quoted),
		zap.Int("failed", failed),
	)
	return nil
}

func loadBook(ctx context.Context, cfg config.QuoteConfig, logger *zap.Logger) (*quote.Book, error) {
	slippage, err := currency.ParsePercent(cfg.Slippage)
	if err != nil {
		return nil, err
	}

	var snaps []model.PoolSnapshot
	if cfg.Snapshots != "" {
		snaps, err = storage.ReadJSONL[model.PoolSnapshot](cfg.Snapshots)
		if err != nil {
			return nil, fmt.Errorf("read snapshots: %w", err)
		}
	} else {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if snaps, err = store.LoadSnapshots(ctx, cfg.ChainID); err != nil {
			return nil, err
		}
	}

	book := quote.NewBook(cfg.ChainID, slippage, logger)
	if err := book.AddAll(latestSnapshots(snaps, cfg.ChainID)); err != nil {
		return nil, err
	}
	return book, nil
}

// latestSnapshots keeps the highest block seen for each pool on chainID, so
// an appended snapshots file can be read as a whole.
func latestSnapshots(snaps []model.PoolSnapshot, chainID uint64) []model.PoolSnapshot {
	index := make(map[string]int)
	var out []model.PoolSnapshot
	for _, snap := range snaps {
		if snap.ChainID != chainID {
			continue
		}
		key := strings.ToLower(snap.PoolID)
		if i, ok := index[key]; ok {
			if snap.BlockNumber >= out[i].BlockNumber {
				out[i] = snap
			}
			continue
		}
		index[key] = len(out)
		out = append(out, snap)
	}
	return out
}
