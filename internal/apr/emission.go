package apr

import (
	"math/big"

	"aeroScope/internal/tickmath"
)

// Rates describes a gauge's reward flow in token and USD terms.
type Rates struct {
	PerSecond        float64
	PerDay           float64
	PerWeek          float64
	ValuePerDayUSD   float64
	PerDayPer1000    float64
	USDPerDayPer1000 float64
}

// EmissionRates derives reward flow figures from a per-second wei rate.
// The per-$1000 figures are zero when the range holds no priced liquidity.
func EmissionRates(rewardRate *big.Int, tokenPriceUSD, rangeLiquidityUSD float64) Rates {
	if rewardRate == nil || rewardRate.Sign() <= 0 {
		return Rates{}
	}
	perDayWei := new(big.Int).Mul(rewardRate, big.NewInt(secondsPerDay))

	rates := Rates{
		PerSecond: tickmath.ToFloat(rewardRate, rewardDecimals),
		PerDay:    tickmath.ToFloat(perDayWei, rewardDecimals),
	}
	rates.PerWeek = rates.PerDay * 7
	rates.ValuePerDayUSD = rates.PerDay * tokenPriceUSD
	if rangeLiquidityUSD > 0 {
		rates.PerDayPer1000 = rates.PerDay * 1000 / rangeLiquidityUSD
		rates.USDPerDayPer1000 = rates.ValuePerDayUSD * 1000 / rangeLiquidityUSD
	}
	return rates
}

// RewardTokensPerYear inverts an emission APR back into reward tokens per year:
// apr * tvl / (price * 100). It is zero without a positive token price.
func RewardTokensPerYear(emissionAPR, tvlUSD, tokenPriceUSD float64) float64 {
	if tokenPriceUSD <= 0 {
		return 0
	}
	return emissionAPR * tvlUSD / (tokenPriceUSD * 100)
}
