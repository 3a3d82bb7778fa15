package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aeroScope/internal/model"
)

// Store provides Postgres persistence for pool snapshots and simulations.
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

// UpsertPools inserts or refreshes the latest snapshot row per pool.
// An older block never overwrites a newer one.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				chain_id, pool_address, token0, token1, symbol0, symbol1, fee, tick_spacing,
				current_tick, sqrt_price_x96, liquidity, tvl_usd, fee_apr, emission_apr, total_apr,
				block_number, snapshot_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				symbol0 = EXCLUDED.symbol0,
				symbol1 = EXCLUDED.symbol1,
				fee = EXCLUDED.fee,
				tick_spacing = EXCLUDED.tick_spacing,
				current_tick = EXCLUDED.current_tick,
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				liquidity = EXCLUDED.liquidity,
				tvl_usd = EXCLUDED.tvl_usd,
				fee_apr = EXCLUDED.fee_apr,
				emission_apr = EXCLUDED.emission_apr,
				total_apr = EXCLUDED.total_apr,
				block_number = EXCLUDED.block_number,
				snapshot_at = EXCLUDED.snapshot_at,
				updated_at = now()
			WHERE pool_snapshots.block_number <= EXCLUDED.block_number
		`,
			int64(p.ChainID),
			strings.ToLower(p.Address),
			strings.ToLower(p.Token0),
			strings.ToLower(p.Token1),
			p.Symbol0,
			p.Symbol1,
			int32(p.Fee),
			p.TickSpacing,
			p.CurrentTick,
			numericOrZero(p.SqrtPriceX96),
			numericOrZero(p.Liquidity),
			p.TVLUSD,
			p.FeeAPR,
			p.EmissionAPR,
			p.TotalAPR,
			int64(p.BlockNumber),
			p.UpdatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutSimulation stores one simulation run with its input and result as JSON.
func (s *Store) PutSimulation(ctx context.Context, record model.SimulationRecord) error {
	input, err := json.Marshal(record.Input)
	if err != nil {
		return fmt.Errorf("marshal simulation input: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal simulation result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO simulations (chain_id, pool_address, input, result, total_apr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		int64(record.ChainID),
		strings.ToLower(record.PoolAddress),
		string(input),
		string(result),
		record.Result.TotalEarnings.APR,
		record.CreatedAt,
	)
	return err
}

// LatestPool returns the stored row for a pool.
func (s *Store) LatestPool(ctx context.Context, chainID uint64, address string) (model.PoolRecord, bool, error) {
	var (
		rec         model.PoolRecord
		chain       int64
		fee         int32
		blockNumber int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT chain_id, pool_address, token0, token1, symbol0, symbol1, fee, tick_spacing, current_tick,
			sqrt_price_x96::text, liquidity::text, tvl_usd, fee_apr, emission_apr, total_apr, block_number, snapshot_at
		FROM pool_snapshots WHERE chain_id=$1 AND pool_address=$2
	`, int64(chainID), strings.ToLower(address))
	err := row.Scan(&chain, &rec.Address, &rec.Token0, &rec.Token1, &rec.Symbol0, &rec.Symbol1, &fee,
		&rec.TickSpacing, &rec.CurrentTick, &rec.SqrtPriceX96, &rec.Liquidity, &rec.TVLUSD,
		&rec.FeeAPR, &rec.EmissionAPR, &rec.TotalAPR, &blockNumber, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolRecord{}, false, nil
		}
		return model.PoolRecord{}, false, err
	}
	rec.ChainID = uint64(chain)
	rec.Fee = uint32(fee)
	rec.BlockNumber = uint64(blockNumber)
	return rec, true, nil
}

func numericOrZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
