package postgres

import (
	"context"
	"fmt"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	chain_id        BIGINT      NOT NULL,
	pool_address    TEXT        NOT NULL,
	token0          TEXT        NOT NULL,
	token1          TEXT        NOT NULL,
	symbol0         TEXT        NOT NULL DEFAULT '',
	symbol1         TEXT        NOT NULL DEFAULT '',
	fee             INTEGER     NOT NULL,
	tick_spacing    INTEGER     NOT NULL,
	current_tick    INTEGER     NOT NULL,
	sqrt_price_x96  NUMERIC     NOT NULL,
	liquidity       NUMERIC     NOT NULL,
	tvl_usd         DOUBLE PRECISION NOT NULL,
	fee_apr         DOUBLE PRECISION NOT NULL,
	emission_apr    DOUBLE PRECISION NOT NULL,
	total_apr       DOUBLE PRECISION NOT NULL,
	block_number    BIGINT      NOT NULL,
	snapshot_at     TIMESTAMPTZ NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);

CREATE TABLE IF NOT EXISTS simulations (
	id            BIGSERIAL   PRIMARY KEY,
	chain_id      BIGINT      NOT NULL,
	pool_address  TEXT        NOT NULL,
	input         JSONB       NOT NULL,
	result        JSONB       NOT NULL,
	total_apr     DOUBLE PRECISION NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS simulations_pool_idx ON simulations (chain_id, pool_address, created_at DESC);
`

// EnsureSchema applies Schema. Every statement is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
