// Package quote answers position and trade requests against a book of pool
// snapshots.
package quote

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/model"
	"tierquote/internal/pool"
)

var (
	ErrUnknownPool  = errors.New("unknown pool")
	ErrUnknownToken = errors.New("unknown token")
	ErrWrongChain   = errors.New("snapshot on another chain")
	ErrBadNumber    = errors.New("bad number")
)

// Book holds the pools of one chain built from snapshots.
type Book struct {
	chainID  uint64
	slippage currency.Percent
	pools    map[common.Hash]*pool.Pool
	tokens   map[common.Address]*currency.Token
	logger   *zap.Logger
}

// NewBook returns an empty book for chainID. defaultSlippage applies to
// requests that carry none.
func NewBook(chainID uint64, defaultSlippage currency.Percent, logger *zap.Logger) *Book {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Book{
		chainID:  chainID,
		slippage: defaultSlippage,
		pools:    make(map[common.Hash]*pool.Pool),
		tokens:   make(map[common.Address]*currency.Token),
		logger:   logger,
	}
}

func (b *Book) ChainID() uint64 { return b.chainID }
func (b *Book) Len() int        { return len(b.pools) }

// Add builds the pool of snap and indexes it. A later snapshot of the same
// pool replaces the earlier one.
func (b *Book) Add(snap model.PoolSnapshot) (*pool.Pool, error) {
	if snap.ChainID != b.chainID {
		return nil, fmt.Errorf("%w: pool %s on chain %d, book on %d", ErrWrongChain, snap.PoolID, snap.ChainID, b.chainID)
	}
	p, err := PoolFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", snap.PoolID, err)
	}
	if snap.PoolID != "" && !strings.EqualFold(snap.PoolID, p.ID().Hex()) {
		return nil, fmt.Errorf("%w: pool id %s does not match tokens (want %s)", errs.ErrInvalidToken, snap.PoolID, p.ID().Hex())
	}
	b.pools[p.ID()] = p
	b.tokens[p.Token0().Address()] = p.Token0()
	b.tokens[p.Token1().Address()] = p.Token1()
	b.logger.Debug("pool added",
		zap.String("pool_id", p.ID().Hex()),
		zap.String("token0", p.Token0().Symbol()),
		zap.String("token1", p.Token1().Symbol()),
		zap.Int("tiers", p.TierCount()),
		zap.Uint64("block", snap.BlockNumber),
	)
	return p, nil
}

// AddAll adds every snapshot, stopping at the first failure.
func (b *Book) AddAll(snaps []model.PoolSnapshot) error {
	for _, snap := range snaps {
		if _, err := b.Add(snap); err != nil {
			return err
		}
	}
	return nil
}

// Pool looks up a pool by hex id.
func (b *Book) Pool(id string) (*pool.Pool, error) {
	if !isHash(id) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrUnknownPool, id)
	}
	p, ok := b.pools[common.HexToHash(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPool, id)
	}
	return p, nil
}

// Token looks up a token seen in any pool of the book.
func (b *Book) Token(address string) (*currency.Token, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: malformed address %q", ErrUnknownToken, address)
	}
	t, ok := b.tokens[common.HexToAddress(address)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, address)
	}
	return t, nil
}

// PoolFromSnapshot validates a snapshot and builds its pool.
func PoolFromSnapshot(snap model.PoolSnapshot) (*pool.Pool, error) {
	token0, err := tokenFromMeta(snap.ChainID, snap.Token0)
	if err != nil {
		return nil, err
	}
	token1, err := tokenFromMeta(snap.ChainID, snap.Token1)
	if err != nil {
		return nil, err
	}
	states := make([]pool.TierState, len(snap.Tiers))
	for i, ts := range snap.Tiers {
		liquidity, err := parseBig(ts.Liquidity, "liquidity")
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		sqrtPrice, err := parseBig(ts.SqrtPrice, "sqrt_price")
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		states[i] = pool.TierState{
			Liquidity:     liquidity,
			SqrtPrice:     sqrtPrice,
			SqrtGamma:     ts.SqrtGamma,
			NextTickBelow: int(ts.NextTickBelow),
			NextTickAbove: int(ts.NextTickAbove),
		}
	}
	return pool.New(token0, token1, int(snap.TickSpacing), snap.ProtocolFee, states)
}

func tokenFromMeta(chainID uint64, meta model.TokenMeta) (*currency.Token, error) {
	if !common.IsHexAddress(meta.Address) {
		return nil, fmt.Errorf("%w: address %q", errs.ErrInvalidToken, meta.Address)
	}
	if meta.ChainID != 0 && meta.ChainID != chainID {
		return nil, fmt.Errorf("%w: token %s on chain %d, pool on %d", errs.ErrInvalidToken, meta.Address, meta.ChainID, chainID)
	}
	return currency.NewToken(chainID, common.HexToAddress(meta.Address), meta.Decimals, meta.Symbol, meta.Name), nil
}

func parseBig(s, field string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrBadNumber, field, s)
	}
	return v, nil
}

func isHash(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*common.HashLength {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func (b *Book) slippageOf(raw string) (currency.Percent, error) {
	if raw == "" {
		return b.slippage, nil
	}
	tol, err := currency.ParsePercent(raw)
	if err != nil {
		return currency.Percent{}, fmt.Errorf("%w: %v", errs.ErrInvalidSlippage, err)
	}
	if tol.IsNegative() {
		return currency.Percent{}, fmt.Errorf("%w: %s", errs.ErrInvalidSlippage, raw)
	}
	return tol, nil
}
