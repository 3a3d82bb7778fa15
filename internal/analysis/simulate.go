package analysis

import (
	"math"

	"aeroScope/internal/apr"
)

// InvestmentSimulation projects returns for a deposit at the pool's current
// APRs, before impermanent loss. DaysToDouble is nil when nothing accrues.
type InvestmentSimulation struct {
	Investment float64 `json:"investment"`
	PoolShare  float64 `json:"pool_share"`

	DailyFeeReturn      float64 `json:"daily_fee_return"`
	DailyEmissionReturn float64 `json:"daily_emission_return"`
	DailyTotalReturn    float64 `json:"daily_total_return"`

	WeeklyReturn  float64 `json:"weekly_return"`
	MonthlyReturn float64 `json:"monthly_return"`
	YearlyReturn  float64 `json:"yearly_return"`

	DailyAeroReward   float64 `json:"daily_aero_reward"`
	WeeklyAeroReward  float64 `json:"weekly_aero_reward"`
	MonthlyAeroReward float64 `json:"monthly_aero_reward"`

	DailyROI   float64 `json:"daily_roi"`
	WeeklyROI  float64 `json:"weekly_roi"`
	MonthlyROI float64 `json:"monthly_roi"`
	AnnualROI  float64 `json:"annual_roi"`

	DaysToDouble *int64 `json:"days_to_double"`
}

// SimulateInvestment spreads investmentUSD pro rata over the pool's TVL.
func SimulateInvestment(a PoolAnalysis, investmentUSD float64) InvestmentSimulation {
	var share float64
	if a.TVLUSD > 0 {
		share = investmentUSD / a.TVLUSD * 100
	}

	dailyFee := apr.CalculateDailyEarnings(investmentUSD, a.FeeAPR)
	dailyEmission := apr.CalculateDailyEarnings(investmentUSD, a.EmissionAPR)
	dailyTotal := dailyFee + dailyEmission
	dailyAero := a.AeroPerDay * share / 100

	sim := InvestmentSimulation{
		Investment:          investmentUSD,
		PoolShare:           share,
		DailyFeeReturn:      dailyFee,
		DailyEmissionReturn: dailyEmission,
		DailyTotalReturn:    dailyTotal,
		WeeklyReturn:        dailyTotal * 7,
		MonthlyReturn:       dailyTotal * 30,
		YearlyReturn:        dailyTotal * 365,
		DailyAeroReward:     dailyAero,
		WeeklyAeroReward:    dailyAero * 7,
		MonthlyAeroReward:   dailyAero * 30,
		AnnualROI:           a.TotalAPR,
	}
	if investmentUSD > 0 {
		sim.DailyROI = dailyTotal / investmentUSD * 100
		sim.WeeklyROI = sim.WeeklyReturn / investmentUSD * 100
		sim.MonthlyROI = sim.MonthlyReturn / investmentUSD * 100
	}
	if dailyTotal > 0 {
		days := int64(math.Ceil(investmentUSD / dailyTotal))
		sim.DaysToDouble = &days
	}
	return sim
}
