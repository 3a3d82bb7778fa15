package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

// DefaultTickBatchSize is the number of ticks read per JSON-RPC batch.
const DefaultTickBatchSize = 20

// SplitTickRange lists spacing-aligned ticks in [lower, upper] in batches of batchSize.
func SplitTickRange(lower, upper, spacing int32, batchSize int) ([][]int32, error) {
	if spacing <= 0 {
		return nil, fmt.Errorf("tick spacing must be greater than zero")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if upper < lower {
		return nil, fmt.Errorf("upper tick must be >= lower tick")
	}

	batches := make([][]int32, 0)
	current := make([]int32, 0, batchSize)
	for tick := int64(lower); tick <= int64(upper); tick += int64(spacing) {
		current = append(current, int32(tick))
		if len(current) == batchSize {
			batches = append(batches, current)
			current = make([]int32, 0, batchSize)
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches, nil
}

// TickScan describes a window of ticks to read from a pool.
type TickScan struct {
	Lower     int32
	Upper     int32
	Spacing   int32
	BatchSize int
	Decimals0 uint8
	Decimals1 uint8
}

// FetchTicks reads tick data across the scan window and returns the initialized
// ticks in ascending order. Individual failed reads are logged and skipped.
func FetchTicks(ctx context.Context, caller Caller, pool common.Address, scan TickScan, block *big.Int, logger *zap.Logger) ([]model.TickLiquidity, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scan.BatchSize <= 0 {
		scan.BatchSize = DefaultTickBatchSize
	}
	poolABI, err := CLPoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	batches, err := SplitTickRange(scan.Lower, scan.Upper, scan.Spacing, scan.BatchSize)
	if err != nil {
		return nil, err
	}

	ticks := make([]model.TickLiquidity, 0)
	for _, batch := range batches {
		calls := make([]methodCall, len(batch))
		for i, tick := range batch {
			calls[i] = methodCall{to: pool, parsed: poolABI, method: "ticks", args: []interface{}{big.NewInt(int64(tick))}}
		}
		values, errs, err := batchMethods(ctx, caller, calls, block)
		if err != nil {
			return nil, fmt.Errorf("ticks [%d, %d]: %w", batch[0], batch[len(batch)-1], err)
		}

		for i, tick := range batch {
			if errs[i] != nil {
				logger.Debug("tick read failed", zap.String("pool", pool.Hex()), zap.Int32("tick", tick), zap.Error(errs[i]))
				continue
			}
			if len(values[i]) < 2 {
				continue
			}
			gross, errGross := asBigInt(values[i][0])
			net, errNet := asBigInt(values[i][1])
			if errGross != nil || errNet != nil || gross.Sign() == 0 {
				continue
			}
			ticks = append(ticks, model.TickLiquidity{
				Tick:           tick,
				Price:          tickmath.TickToPrice(tick, scan.Decimals0, scan.Decimals1),
				LiquidityNet:   net.String(),
				LiquidityGross: gross.String(),
			})
		}
	}
	return ticks, nil
}
