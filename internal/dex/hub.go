package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tierquote/internal/currency"
	"tierquote/internal/model"
	"tierquote/internal/pool"
)

// ErrPoolNotFound is returned when the hub has no tiers for a pool id.
var ErrPoolNotFound = errors.New("pool not found")

// hubTier mirrors one element of getAllTiers. Fee growth is read but unused.
type hubTier struct {
	Liquidity        *big.Int
	SqrtPrice        *big.Int
	SqrtGamma        *big.Int
	Tick             *big.Int
	NextTickBelow    *big.Int
	NextTickAbove    *big.Int
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int
}

// PoolID returns the hub pool id of a token pair given in any order.
func PoolID(chainID uint64, tokenA, tokenB common.Address) (common.Hash, error) {
	return pool.ComputePoolID(
		currency.NewToken(chainID, tokenA, 0, "", ""),
		currency.NewToken(chainID, tokenB, 0, "", ""),
	)
}

// FetchPoolSnapshot reads the parameters and tiers of the pool of token0 and
// token1 at block. A nil block reads the latest state. Token metadata must
// already be sorted by address.
func FetchPoolSnapshot(ctx context.Context, caller ContractCaller, hub common.Address, token0, token1 model.TokenMeta, block *big.Int) (model.PoolSnapshot, error) {
	chainID := token0.ChainID
	id, err := PoolID(chainID, common.HexToAddress(token0.Address), common.HexToAddress(token1.Address))
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	parsed, err := HubABI()
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse hub abi: %w", err)
	}

	values, err := callMethod(ctx, caller, hub, parsed, "getAllTiers", block, [32]byte(id))
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	raw := *abi.ConvertType(values[0], new([]hubTier)).(*[]hubTier)
	if len(raw) == 0 {
		return model.PoolSnapshot{}, fmt.Errorf("%w: %s", ErrPoolNotFound, id.Hex())
	}

	values, err = callMethod(ctx, caller, hub, parsed, "getPoolParameters", block, [32]byte(id))
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	if len(values) < 2 {
		return model.PoolSnapshot{}, fmt.Errorf("getPoolParameters: %d values", len(values))
	}
	tickSpacing, err := asUint8(values[0])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("tick spacing: %w", err)
	}
	protocolFee, err := asUint8(values[1])
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("protocol fee: %w", err)
	}

	tiers := make([]model.TierSnapshot, len(raw))
	for i, t := range raw {
		tier, err := tierSnapshot(t)
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("tier %d: %w", i, err)
		}
		tiers[i] = tier
	}

	snap := model.PoolSnapshot{
		ChainID:     chainID,
		PoolID:      id.Hex(),
		Token0:      token0,
		Token1:      token1,
		TickSpacing: int32(tickSpacing),
		ProtocolFee: protocolFee,
		Tiers:       tiers,
	}
	if block != nil {
		snap.BlockNumber = block.Uint64()
	}
	return snap, nil
}

func tierSnapshot(t hubTier) (model.TierSnapshot, error) {
	if t.Liquidity == nil || t.SqrtPrice == nil || t.SqrtGamma == nil {
		return model.TierSnapshot{}, fmt.Errorf("missing tier fields")
	}
	below, err := int24FromBig(t.NextTickBelow)
	if err != nil {
		return model.TierSnapshot{}, fmt.Errorf("next tick below: %w", err)
	}
	above, err := int24FromBig(t.NextTickAbove)
	if err != nil {
		return model.TierSnapshot{}, fmt.Errorf("next tick above: %w", err)
	}
	if !t.SqrtGamma.IsUint64() || t.SqrtGamma.Uint64() > pool.MaxSqrtGamma {
		return model.TierSnapshot{}, fmt.Errorf("sqrt gamma %s out of range", t.SqrtGamma)
	}
	return model.TierSnapshot{
		Liquidity:     t.Liquidity.String(),
		SqrtPrice:     t.SqrtPrice.String(),
		SqrtGamma:     uint32(t.SqrtGamma.Uint64()),
		NextTickBelow: below,
		NextTickAbove: above,
	}, nil
}
