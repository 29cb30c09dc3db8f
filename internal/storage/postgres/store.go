package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tierquote/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS hub_pools (
	chain_id         BIGINT   NOT NULL,
	pool_id          TEXT     NOT NULL,
	token0           TEXT     NOT NULL,
	token0_decimals  SMALLINT NOT NULL,
	token0_symbol    TEXT     NOT NULL DEFAULT '',
	token0_name      TEXT     NOT NULL DEFAULT '',
	token1           TEXT     NOT NULL,
	token1_decimals  SMALLINT NOT NULL,
	token1_symbol    TEXT     NOT NULL DEFAULT '',
	token1_name      TEXT     NOT NULL DEFAULT '',
	tick_spacing     INTEGER  NOT NULL,
	protocol_fee     SMALLINT NOT NULL,
	block_number     BIGINT   NOT NULL,
	fetched_at       TEXT     NOT NULL DEFAULT '',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_id)
);
CREATE TABLE IF NOT EXISTS hub_tiers (
	chain_id         BIGINT  NOT NULL,
	pool_id          TEXT    NOT NULL,
	tier_id          SMALLINT NOT NULL,
	liquidity        NUMERIC(78, 0) NOT NULL,
	sqrt_price       NUMERIC(78, 0) NOT NULL,
	sqrt_gamma       INTEGER NOT NULL,
	next_tick_below  INTEGER NOT NULL,
	next_tick_above  INTEGER NOT NULL,
	block_number     BIGINT  NOT NULL DEFAULT 0,
	PRIMARY KEY (chain_id, pool_id, tier_id)
);
ALTER TABLE hub_tiers ADD COLUMN IF NOT EXISTS block_number BIGINT NOT NULL DEFAULT 0;
CREATE TABLE IF NOT EXISTS snapshot_state (
	chain_id     BIGINT PRIMARY KEY,
	block_number BIGINT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutSnapshots upserts pools and their tiers in one transaction. Rows stored
// from a later block are left untouched. Tiers beyond a pool's current tier
// count are removed, and the chain's snapshot block is advanced.
func (s *Store) PutSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := snapshotBatch(snaps)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("snapshot statement %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func snapshotBatch(snaps []model.PoolSnapshot) *pgx.Batch {
	batch := &pgx.Batch{}
	latest := make(map[uint64]uint64)
	for _, snap := range snaps {
		block := int64(snap.BlockNumber)
		batch.Queue(`
			INSERT INTO hub_pools (
				chain_id, pool_id,
				token0, token0_decimals, token0_symbol, token0_name,
				token1, token1_decimals, token1_symbol, token1_name,
				tick_spacing, protocol_fee, block_number, fetched_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
			ON CONFLICT (chain_id, pool_id)
			DO UPDATE SET
				token0_symbol = EXCLUDED.token0_symbol,
				token0_name = EXCLUDED.token0_name,
				token1_symbol = EXCLUDED.token1_symbol,
				token1_name = EXCLUDED.token1_name,
				tick_spacing = EXCLUDED.tick_spacing,
				protocol_fee = EXCLUDED.protocol_fee,
				block_number = EXCLUDED.block_number,
				fetched_at = EXCLUDED.fetched_at,
				updated_at = now()
			WHERE hub_pools.block_number <= EXCLUDED.block_number
		`,
			int64(snap.ChainID),
			snap.PoolID,
			snap.Token0.Address,
			int16(snap.Token0.Decimals),
			snap.Token0.Symbol,
			snap.Token0.Name,
			snap.Token1.Address,
			int16(snap.Token1.Decimals),
			snap.Token1.Symbol,
			snap.Token1.Name,
			snap.TickSpacing,
			int16(snap.ProtocolFee),
			block,
			snap.FetchedAt,
		)
		for i, tier := range snap.Tiers {
			batch.Queue(`
				INSERT INTO hub_tiers (
					chain_id, pool_id, tier_id, liquidity, sqrt_price, sqrt_gamma, next_tick_below, next_tick_above, block_number
				) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9)
				ON CONFLICT (chain_id, pool_id, tier_id)
				DO UPDATE SET
					liquidity = EXCLUDED.liquidity,
					sqrt_price = EXCLUDED.sqrt_price,
					sqrt_gamma = EXCLUDED.sqrt_gamma,
					next_tick_below = EXCLUDED.next_tick_below,
					next_tick_above = EXCLUDED.next_tick_above,
					block_number = EXCLUDED.block_number
				WHERE hub_tiers.block_number <= EXCLUDED.block_number
			`,
				int64(snap.ChainID),
				snap.PoolID,
				int16(i),
				tier.Liquidity,
				tier.SqrtPrice,
				int64(tier.SqrtGamma),
				tier.NextTickBelow,
				tier.NextTickAbove,
				block,
			)
		}
		batch.Queue(`DELETE FROM hub_tiers WHERE chain_id = $1 AND pool_id = $2 AND tier_id >= $3 AND block_number <= $4`,
			int64(snap.ChainID), snap.PoolID, int16(len(snap.Tiers)), block)
		if snap.BlockNumber > latest[snap.ChainID] {
			latest[snap.ChainID] = snap.BlockNumber
		}
	}
	for chainID, block := range latest {
		batch.Queue(`
			INSERT INTO snapshot_state (chain_id, block_number, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (chain_id) DO UPDATE
			SET block_number = GREATEST(snapshot_state.block_number, EXCLUDED.block_number), updated_at = now()
		`, int64(chainID), int64(block))
	}
	return batch
}

// LastSnapshotBlock returns the highest block stored for a chain.
func (s *Store) LastSnapshotBlock(ctx context.Context, chainID uint64) (uint64, bool, error) {
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT block_number FROM snapshot_state WHERE chain_id=$1`, int64(chainID))
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// LoadSnapshots returns every stored pool of a chain with its tiers in tier
// order.
func (s *Store) LoadSnapshots(ctx context.Context, chainID uint64) ([]model.PoolSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.pool_id,
			p.token0, p.token0_decimals, p.token0_symbol, p.token0_name,
			p.token1, p.token1_decimals, p.token1_symbol, p.token1_name,
			p.tick_spacing, p.protocol_fee, p.block_number, p.fetched_at,
			t.liquidity::text, t.sqrt_price::text, t.sqrt_gamma, t.next_tick_below, t.next_tick_above
		FROM hub_pools p
		JOIN hub_tiers t ON t.chain_id = p.chain_id AND t.pool_id = p.pool_id
		WHERE p.chain_id = $1
		ORDER BY p.pool_id, t.tier_id
	`, int64(chainID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.PoolSnapshot
	for rows.Next() {
		var (
			snap                 model.PoolSnapshot
			dec0, dec1, protoFee int16
			block                int64
			sqrtGamma            int64
			tier                 model.TierSnapshot
		)
		if err := rows.Scan(
			&snap.PoolID,
			&snap.Token0.Address, &dec0, &snap.Token0.Symbol, &snap.Token0.Name,
			&snap.Token1.Address, &dec1, &snap.Token1.Symbol, &snap.Token1.Name,
			&snap.TickSpacing, &protoFee, &block, &snap.FetchedAt,
			&tier.Liquidity, &tier.SqrtPrice, &sqrtGamma, &tier.NextTickBelow, &tier.NextTickAbove,
		); err != nil {
			return nil, err
		}
		tier.SqrtGamma = uint32(sqrtGamma)

		if n := len(snaps); n > 0 && snaps[n-1].PoolID == snap.PoolID {
			snaps[n-1].Tiers = append(snaps[n-1].Tiers, tier)
			continue
		}
		snap.ChainID = chainID
		snap.Token0.ChainID = chainID
		snap.Token0.Decimals = uint8(dec0)
		snap.Token1.ChainID = chainID
		snap.Token1.Decimals = uint8(dec1)
		snap.ProtocolFee = uint8(protoFee)
		snap.BlockNumber = uint64(block)
		snap.Tiers = []model.TierSnapshot{tier}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
