// Package pool models a token pair with its fee tiers.
package pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/mathutil"
)

const (
	// MaxTiers is the number of tiers a pool can hold.
	MaxTiers = 6
	// BaseLiquidityD8 is the liquidity locked when a tier is created.
	BaseLiquidityD8 = 100
)

var addressPairArgs = mustAddressPairArgs()

func mustAddressPairArgs() abi.Arguments {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: addressType}, {Type: addressType}}
}

// ComputePoolID returns keccak256(abi.encode(token0, token1)) for the sorted
// pair.
func ComputePoolID(tokenA, tokenB *currency.Token) (common.Hash, error) {
	token0, token1, err := currency.SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Hash{}, err
	}
	encoded, err := addressPairArgs.Pack(token0.Address(), token1.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode pool key: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// Pool is an immutable snapshot of a token pair and its tiers.
type Pool struct {
	id          common.Hash
	token0      *currency.Token
	token1      *currency.Token
	tickSpacing int
	protocolFee uint8
	tiers       []*Tier
}

// New builds a pool from two tokens in any order and the tier states in tier
// index order.
func New(tokenA, tokenB *currency.Token, tickSpacing int, protocolFee uint8, states []TierState) (*Pool, error) {
	token0, token1, err := currency.SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, err
	}
	if tickSpacing <= 0 {
		return nil, fmt.Errorf("%w: tick spacing %d", errs.ErrInvalidTickRange, tickSpacing)
	}
	if len(states) == 0 || len(states) > MaxTiers {
		return nil, fmt.Errorf("%w: %d tiers", errs.ErrInvalidTier, len(states))
	}

	tiers := make([]*Tier, 0, len(states))
	for i, state := range states {
		tier, err := NewTier(token0, token1, state)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		tiers = append(tiers, tier)
	}

	id, err := ComputePoolID(token0, token1)
	if err != nil {
		return nil, err
	}

	return &Pool{
		id:          id,
		token0:      token0,
		token1:      token1,
		tickSpacing: tickSpacing,
		protocolFee: protocolFee,
		tiers:       tiers,
	}, nil
}

func (p *Pool) ID() common.Hash         { return p.id }
func (p *Pool) ChainID() uint64         { return p.token0.ChainID() }
func (p *Pool) Token0() *currency.Token { return p.token0 }
func (p *Pool) Token1() *currency.Token { return p.token1 }
func (p *Pool) TickSpacing() int        { return p.tickSpacing }
func (p *Pool) ProtocolFee() uint8      { return p.protocolFee }
func (p *Pool) TierCount() int          { return len(p.tiers) }

// Tiers returns the tiers in index order.
func (p *Pool) Tiers() []*Tier {
	out := make([]*Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// Tier returns the tier at index id.
func (p *Pool) Tier(id int) (*Tier, error) {
	if id < 0 || id >= len(p.tiers) {
		return nil, fmt.Errorf("%w: tier id %d of %d", errs.ErrInvalidTier, id, len(p.tiers))
	}
	return p.tiers[id], nil
}

// InvolvesToken reports whether token is token0 or token1.
func (p *Pool) InvolvesToken(token *currency.Token) bool {
	return token.Equals(p.token0) || token.Equals(p.token1)
}

// OtherToken returns the counterpart of token in the pair.
func (p *Pool) OtherToken(token *currency.Token) (*currency.Token, error) {
	switch {
	case token.Equals(p.token0):
		return p.token1, nil
	case token.Equals(p.token1):
		return p.token0, nil
	default:
		return nil, fmt.Errorf("%w: %v not in pool", errs.ErrInvalidToken, token)
	}
}

// PriceOf returns the spot price of token on the given tier.
func (p *Pool) PriceOf(token *currency.Token, tierID int) (currency.Price, error) {
	tier, err := p.Tier(tierID)
	if err != nil {
		return currency.Price{}, err
	}
	return tier.PriceOf(token)
}

// Same reports whether other is the same pool on the same chain.
func (p *Pool) Same(other *Pool) bool {
	return p.ChainID() == other.ChainID() && p.id == other.id
}

// NewTierAmounts returns the token amounts charged to whoever opens the next
// tier. The base liquidity is priced at tier 0's sqrt price as if the whole
// amount sat on a constant-product curve, which charges more than the exact
// range formula would.
func (p *Pool) NewTierAmounts() (currency.Amount, currency.Amount, error) {
	if len(p.tiers) >= MaxTiers {
		return currency.Amount{}, currency.Amount{}, fmt.Errorf("%w: pool already has %d tiers", errs.ErrInvalidTier, len(p.tiers))
	}
	sqrtP := p.tiers[0].sqrtPrice
	base := big.NewInt(BaseLiquidityD8)

	amount0 := mathutil.CeilDiv(new(big.Int).Lsh(base, 80), sqrtP)
	amount1 := mathutil.MulDivRoundingUp(base, sqrtP, new(big.Int).Lsh(big.NewInt(1), 64))

	a0, err := currency.NewAmount(p.token0, amount0)
	if err != nil {
		return currency.Amount{}, currency.Amount{}, err
	}
	a1, err := currency.NewAmount(p.token1, amount1)
	if err != nil {
		return currency.Amount{}, currency.Amount{}, err
	}
	return a0, a1, nil
}
