package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// GaugeState is the reward configuration of a gauge.
type GaugeState struct {
	Address      common.Address
	RewardRate   *big.Int
	PeriodFinish uint64
	RewardToken  common.Address
}

// Alive reports whether the reward period is still running at the given unix time.
func (g GaugeState) Alive(now uint64) bool {
	return g.PeriodFinish > now
}

// FetchGaugeState reads reward rate, period end and reward token in one batch.
func FetchGaugeState(ctx context.Context, caller Caller, gauge common.Address, block *big.Int) (GaugeState, error) {
	gaugeABI, err := CLGaugeABI()
	if err != nil {
		return GaugeState{}, fmt.Errorf("parse gauge abi: %w", err)
	}
	calls := []methodCall{
		{to: gauge, parsed: gaugeABI, method: "rewardRate"},
		{to: gauge, parsed: gaugeABI, method: "periodFinish"},
		{to: gauge, parsed: gaugeABI, method: "rewardToken"},
	}
	values, errs, err := batchMethods(ctx, caller, calls, block)
	if err != nil {
		return GaugeState{}, fmt.Errorf("gauge %s: %w", gauge.Hex(), err)
	}
	for _, e := range errs {
		if e != nil {
			return GaugeState{}, fmt.Errorf("gauge %s: %w", gauge.Hex(), e)
		}
	}

	state := GaugeState{Address: gauge}
	if state.RewardRate, err = asBigInt(values[0][0]); err != nil {
		return GaugeState{}, fmt.Errorf("reward rate: %w", err)
	}
	finish, err := asBigInt(values[1][0])
	if err != nil {
		return GaugeState{}, fmt.Errorf("period finish: %w", err)
	}
	if !finish.IsUint64() {
		return GaugeState{}, fmt.Errorf("period finish overflow: %s", finish)
	}
	state.PeriodFinish = finish.Uint64()
	if state.RewardToken, err = asAddress(values[2][0]); err != nil {
		return GaugeState{}, fmt.Errorf("reward token: %w", err)
	}
	return state, nil
}
