package simulator

import (
	"fmt"
	"math"
	"math/big"

	"aeroScope/internal/apr"
	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

// Validate checks the caller-supplied position before any computation.
func Validate(input model.SimulationInput) error {
	if input.TickLower >= input.TickUpper {
		return fmt.Errorf("%w: lower %d must be below upper %d", ErrInvalidRange, input.TickLower, input.TickUpper)
	}
	if !(input.InvestmentUSD > 0) || math.IsInf(input.InvestmentUSD, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, input.InvestmentUSD)
	}
	return nil
}

// Simulate projects a position's token split, earnings and risk against a pool snapshot.
// The investment is split 50/50 by value regardless of where the range sits.
func Simulate(input model.SimulationInput, pool model.PoolSnapshot) (model.SimulationResult, error) {
	if err := Validate(input); err != nil {
		return model.SimulationResult{}, err
	}
	duration := input.DurationDays
	if duration <= 0 {
		duration = model.DefaultDurationDays
	}
	d0, d1 := pool.Token0.Decimals, pool.Token1.Decimals

	priceLower := tickmath.TickToPrice(input.TickLower, d0, d1)
	priceUpper := tickmath.TickToPrice(input.TickUpper, d0, d1)

	sqrtLower, err := tickmath.GetSqrtRatioAtTick(input.TickLower)
	if err != nil {
		return model.SimulationResult{}, fmt.Errorf("lower tick: %w", err)
	}
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(input.TickUpper)
	if err != nil {
		return model.SimulationResult{}, fmt.Errorf("upper tick: %w", err)
	}
	sqrtCurrent, err := currentSqrtRatio(pool)
	if err != nil {
		return model.SimulationResult{}, err
	}

	half := input.InvestmentUSD / 2
	amount0 := tokenAmount(half, pool.Token0)
	amount1 := tokenAmount(half, pool.Token1)

	liquidity, err := bindingLiquidity(sqrtLower, sqrtUpper, sqrtCurrent, amount0, amount1)
	if err != nil {
		return model.SimulationResult{}, err
	}

	efficiency := CalculateCapitalEfficiency(input.TickLower, input.TickUpper, pool.CurrentTick)
	feeAPR := pool.APR.FeeAPR * math.Min(efficiency, maxFeeMultiplier)
	emissionAPR := pool.APR.EmissionAPR
	if er := pool.EmissionRange; er != nil {
		emissionAPR, err = apr.AdjustAPRForRange(pool.APR.EmissionAPR, input.TickLower, input.TickUpper, er.TickLower, er.TickUpper)
		if err != nil {
			return model.SimulationResult{}, fmt.Errorf("emission apr: %w", err)
		}
	}

	feeEarnings := apr.CalculateEarnings(input.InvestmentUSD, feeAPR)
	emissionEarnings := apr.CalculateEarnings(input.InvestmentUSD, emissionAPR)
	totalEarnings := apr.CalculateEarnings(input.InvestmentUSD, apr.CalculateTotalAPR(feeAPR, emissionAPR))

	rewardAmount := 0.0
	if pool.RewardToken != nil && pool.RewardToken.PriceUSD > 0 {
		rewardAmount = emissionEarnings.Yearly / pool.RewardToken.PriceUSD
	}

	probability := EstimateInRangeProbability(input.TickLower, input.TickUpper, input.Volatility)

	rangeLiquidityUSD := 0.0
	if pool.EmissionRange != nil {
		rangeLiquidityUSD = pool.EmissionRange.LiquidityInRangeUSD
	}

	return model.SimulationResult{
		PoolAddress:        input.PoolAddress,
		InvestmentUSD:      input.InvestmentUSD,
		TickLower:          input.TickLower,
		TickUpper:          input.TickUpper,
		PriceLower:         priceLower,
		PriceUpper:         priceUpper,
		DurationDays:       duration,
		EstimatedLiquidity: liquidity.String(),
		Token0Amount:       tickmath.FormatUnits(amount0, d0),
		Token1Amount:       tickmath.FormatUnits(amount1, d1),
		FeeEarnings:        feeEarnings,
		EmissionEarnings: model.EmissionEarnings{
			Earnings:     emissionEarnings,
			RewardAmount: rewardAmount,
		},
		TotalEarnings:  totalEarnings,
		PeriodEarnings: totalEarnings.Daily * float64(duration),
		EffectiveAPR:   apr.CalculateEffectiveAPR(totalEarnings.APR, probability),
		ImpermanentLoss: model.ImpermanentLoss{
			At5PercentMove:  CalculateImpermanentLoss(1.05) * 100,
			At10PercentMove: CalculateImpermanentLoss(1.1) * 100,
			At20PercentMove: CalculateImpermanentLoss(1.2) * 100,
		},
		InRangeProbability: probability,
		CapitalEfficiency:  efficiency,
		ShareOfEmissionRange: CalculateShareOfRange(ShareInput{
			UserLiquidityUSD:       input.InvestmentUSD,
			TotalRangeLiquidityUSD: rangeLiquidityUSD,
		}),
		ShareOfTotalPool: CalculateShareOfRange(ShareInput{
			UserLiquidityUSD:       input.InvestmentUSD,
			TotalRangeLiquidityUSD: pool.TVLUSD,
		}),
	}, nil
}

func currentSqrtRatio(pool model.PoolSnapshot) (*big.Int, error) {
	if pool.SqrtPriceX96 != "" {
		v, err := model.ParseBigInt(pool.SqrtPriceX96)
		if err != nil {
			return nil, fmt.Errorf("pool sqrt price: %w", err)
		}
		if v.Sign() > 0 {
			return v, nil
		}
	}
	v, err := tickmath.GetSqrtRatioAtTick(pool.CurrentTick)
	if err != nil {
		return nil, fmt.Errorf("current tick: %w", err)
	}
	return v, nil
}

func tokenAmount(usd float64, token model.TokenInfo) *big.Int {
	if token.PriceUSD <= 0 {
		return new(big.Int)
	}
	return tickmath.ParseUnits(usd/token.PriceUSD, token.Decimals)
}

// bindingLiquidity takes the smaller of the token0 estimate over [current, upper]
// and the token1 estimate over [lower, current]. A side whose interval collapses
// because the price sits on a bound does not constrain the result.
func bindingLiquidity(lower, upper, current, amount0, amount1 *big.Int) (*big.Int, error) {
	var best *big.Int
	if current.Cmp(upper) != 0 {
		l0, err := tickmath.GetLiquidityForAmount0(current, upper, amount0)
		if err != nil {
			return nil, fmt.Errorf("token0 liquidity: %w", err)
		}
		best = l0
	}
	if current.Cmp(lower) != 0 {
		l1, err := tickmath.GetLiquidityForAmount1(lower, current, amount1)
		if err != nil {
			return nil, fmt.Errorf("token1 liquidity: %w", err)
		}
		if best == nil || l1.Cmp(best) < 0 {
			best = l1
		}
	}
	if best == nil {
		return new(big.Int), nil
	}
	return best, nil
}
