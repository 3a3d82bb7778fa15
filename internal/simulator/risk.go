package simulator

import (
	"math"

	"aeroScope/internal/tickmath"
)

// DefaultVolatility is the assumed daily volatility used by the in-range estimate.
const DefaultVolatility = 0.15

// maxFeeMultiplier caps the capital efficiency applied to the fee APR.
const maxFeeMultiplier = 10

// CalculateImpermanentLoss returns 2*sqrt(r)/(1+r) - 1 as a fraction.
// Non-positive ratios return 0.
func CalculateImpermanentLoss(priceRatio float64) float64 {
	if priceRatio <= 0 {
		return 0
	}
	return 2*math.Sqrt(priceRatio)/(1+priceRatio) - 1
}

// CalculateCapitalEfficiency is full-range width over position width, or 0
// when the current tick is outside [tickLower, tickUpper].
func CalculateCapitalEfficiency(tickLower, tickUpper, currentTick int32) float64 {
	width := int64(tickUpper) - int64(tickLower)
	if width <= 0 {
		return 1
	}
	if currentTick < tickLower || currentTick > tickUpper {
		return 0
	}
	return float64(tickmath.FullRangeWidth) / float64(width)
}

// ShareInput pairs a user's USD liquidity with the liquidity it is compared against.
type ShareInput struct {
	UserLiquidityUSD       float64
	TotalRangeLiquidityUSD float64
}

// CalculateShareOfRange returns user/total, or 0 when total <= 0.
func CalculateShareOfRange(in ShareInput) float64 {
	if in.TotalRangeLiquidityUSD <= 0 {
		return 0
	}
	return in.UserLiquidityUSD / in.TotalRangeLiquidityUSD
}

// EstimateInRangeProbability maps the half-width of a range, as a price
// percentage, against daily volatility onto a fixed probability table.
// This is a coarse heuristic with deliberate steps, not a diffusion model.
func EstimateInRangeProbability(tickLower, tickUpper int32, volatility float64) float64 {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	width := float64(int64(tickUpper) - int64(tickLower))
	rangePercent := (math.Pow(1.0001, width/2) - 1) * 100
	ratio := rangePercent / (volatility * 100)

	switch {
	case ratio >= 4:
		return 98
	case ratio >= 2:
		return 92
	case ratio >= 1:
		return 75
	case ratio >= 0.5:
		return 55
	default:
		return 35
	}
}
