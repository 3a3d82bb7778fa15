package apr

import (
	"fmt"
	"math/big"

	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

const (
	// SecondsPerYear is the annualisation basis for per-second reward rates.
	SecondsPerYear = 365 * 24 * 60 * 60
	secondsPerDay  = 24 * 60 * 60

	rewardDecimals = 18
)

// FeeInput holds the raw inputs for a fee APR.
type FeeInput struct {
	Fees24hUSD float64
	TVLUSD     float64
}

// EmissionInput holds the raw inputs for an emission APR.
type EmissionInput struct {
	// RewardRate is reward token wei emitted per second.
	RewardRate         *big.Int
	TokenPriceUSD      float64
	StakedLiquidityUSD float64
}

// CalculateFeeAPR returns (fees24h * 365 / tvl) * 100, or 0 when tvl <= 0.
func CalculateFeeAPR(in FeeInput) float64 {
	if in.TVLUSD <= 0 {
		return 0
	}
	return (in.Fees24hUSD * 365 / in.TVLUSD) * 100
}

// CalculateEmissionAPR annualises a per-second reward rate into a percentage of staked liquidity.
func CalculateEmissionAPR(in EmissionInput) float64 {
	if in.StakedLiquidityUSD <= 0 || in.RewardRate == nil {
		return 0
	}
	annual := new(big.Int).Mul(in.RewardRate, big.NewInt(SecondsPerYear))
	annualTokens := tickmath.ToFloat(annual, rewardDecimals)
	return (annualTokens * in.TokenPriceUSD / in.StakedLiquidityUSD) * 100
}

// CalculateTotalAPR sums fee and emission APRs.
func CalculateTotalAPR(feeAPR, emissionAPR float64) float64 {
	return feeAPR + emissionAPR
}

// CalculateDailyEarnings returns investment * apr/100 / 365.
func CalculateDailyEarnings(investmentUSD, aprPercent float64) float64 {
	return investmentUSD * (aprPercent / 100) / 365
}

// CalculateEarnings expands an APR into daily, weekly, monthly and yearly returns.
func CalculateEarnings(investmentUSD, aprPercent float64) model.Earnings {
	daily := CalculateDailyEarnings(investmentUSD, aprPercent)
	return model.Earnings{
		Daily:   daily,
		Weekly:  daily * 7,
		Monthly: daily * 30,
		Yearly:  daily * 365,
		APR:     aprPercent,
	}
}

// AdjustAPRForRange scales an emission APR by how a position overlaps the reward range.
// A position fully inside a wider reward range gets the concentration bonus
// emissionWidth/positionWidth; partial overlap is pro-rated; no overlap earns nothing.
func AdjustAPRForRange(baseAPR float64, positionLower, positionUpper, emissionLower, emissionUpper int32) (float64, error) {
	positionWidth := int64(positionUpper) - int64(positionLower)
	if positionWidth <= 0 {
		return 0, fmt.Errorf("%w: position width %d", tickmath.ErrInvalidArgument, positionWidth)
	}
	emissionWidth := int64(emissionUpper) - int64(emissionLower)

	overlapLower := max(int64(positionLower), int64(emissionLower))
	overlapUpper := min(int64(positionUpper), int64(emissionUpper))
	if overlapLower >= overlapUpper {
		return 0, nil
	}

	overlapWidth := overlapUpper - overlapLower
	if overlapWidth == positionWidth && positionWidth < emissionWidth {
		return baseAPR * (float64(emissionWidth) / float64(positionWidth)), nil
	}
	return baseAPR * (float64(overlapWidth) / float64(positionWidth)), nil
}

// CalculateEffectiveAPR weights an APR by an in-range probability percentage.
func CalculateEffectiveAPR(aprPercent, inRangeProbability float64) float64 {
	return aprPercent * (inRangeProbability / 100)
}
