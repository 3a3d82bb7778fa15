package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// PoolState is the live state of a Slipstream pool at one block.
type PoolState struct {
	Address         common.Address
	Token0          common.Address
	Token1          common.Address
	Fee             uint32
	TickSpacing     int32
	SqrtPriceX96    *big.Int
	Tick            int32
	Liquidity       *big.Int
	StakedLiquidity *big.Int
	Gauge           common.Address
}

// HasGauge reports whether the pool is wired to a reward gauge.
func (s PoolState) HasGauge() bool {
	return s.Gauge != (common.Address{})
}

// FetchPoolState reads slot0, liquidity and immutable pool fields in one batch.
// fee, stakedLiquidity and gauge are optional and left zero when the call fails.
func FetchPoolState(ctx context.Context, caller Caller, pool common.Address, block *big.Int, logger *zap.Logger) (PoolState, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolABI, err := CLPoolABI()
	if err != nil {
		return PoolState{}, fmt.Errorf("parse pool abi: %w", err)
	}

	methods := []string{"token0", "token1", "tickSpacing", "slot0", "liquidity", "fee", "stakedLiquidity", "gauge"}
	calls := make([]methodCall, len(methods))
	for i, m := range methods {
		calls[i] = methodCall{to: pool, parsed: poolABI, method: m}
	}
	values, errs, err := batchMethods(ctx, caller, calls, block)
	if err != nil {
		return PoolState{}, fmt.Errorf("pool %s: %w", pool.Hex(), err)
	}
	for i := 0; i < 5; i++ {
		if errs[i] != nil {
			return PoolState{}, fmt.Errorf("pool %s: %w", pool.Hex(), errs[i])
		}
	}

	state := PoolState{Address: pool}
	if state.Token0, err = asAddress(values[0][0]); err != nil {
		return PoolState{}, fmt.Errorf("token0: %w", err)
	}
	if state.Token1, err = asAddress(values[1][0]); err != nil {
		return PoolState{}, fmt.Errorf("token1: %w", err)
	}

	spacing, err := asBigInt(values[2][0])
	if err != nil {
		return PoolState{}, fmt.Errorf("tick spacing: %w", err)
	}
	if state.TickSpacing, err = int24FromBig(spacing); err != nil {
		return PoolState{}, fmt.Errorf("tick spacing: %w", err)
	}

	slot0 := values[3]
	if len(slot0) < 2 {
		return PoolState{}, fmt.Errorf("slot0: short output")
	}
	if state.SqrtPriceX96, err = asBigInt(slot0[0]); err != nil {
		return PoolState{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tick, err := asBigInt(slot0[1])
	if err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}
	if state.Tick, err = int24FromBig(tick); err != nil {
		return PoolState{}, fmt.Errorf("slot0 tick: %w", err)
	}

	if state.Liquidity, err = asBigInt(values[4][0]); err != nil {
		return PoolState{}, fmt.Errorf("liquidity: %w", err)
	}

	if errs[5] == nil {
		if fee, err := asBigInt(values[5][0]); err == nil {
			state.Fee = uint32(fee.Uint64())
		}
	} else {
		logger.Debug("fee call failed", zap.String("pool", pool.Hex()), zap.Error(errs[5]))
	}
	if errs[6] == nil {
		if staked, err := asBigInt(values[6][0]); err == nil {
			state.StakedLiquidity = staked
		}
	} else {
		logger.Debug("stakedLiquidity call failed", zap.String("pool", pool.Hex()), zap.Error(errs[6]))
	}
	if errs[7] == nil {
		if gauge, err := asAddress(values[7][0]); err == nil {
			state.Gauge = gauge
		}
	} else {
		logger.Debug("gauge call failed", zap.String("pool", pool.Hex()), zap.Error(errs[7]))
	}

	return state, nil
}
