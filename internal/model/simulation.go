package model

import "time"

// DefaultDurationDays is used when a simulation does not name a horizon.
const DefaultDurationDays = 30

// SimulationInput is a proposed position.
type SimulationInput struct {
	PoolAddress   string  `json:"pool_address"`
	InvestmentUSD float64 `json:"investment_usd"`
	TickLower     int32   `json:"tick_lower"`
	TickUpper     int32   `json:"tick_upper"`
	DurationDays  int     `json:"duration_days"`
	// Volatility is the assumed daily volatility as a fraction; zero selects the default.
	Volatility float64 `json:"volatility,omitempty"`
}

// Earnings are expected returns at several horizons for one APR.
type Earnings struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
	APR     float64 `json:"apr"`
}

// EmissionEarnings adds the reward token amount earned per year.
type EmissionEarnings struct {
	Earnings
	RewardAmount float64 `json:"reward_amount"`
}

// ImpermanentLoss holds IL percentages at fixed price moves.
type ImpermanentLoss struct {
	At5PercentMove  float64 `json:"at_5_percent_move"`
	At10PercentMove float64 `json:"at_10_percent_move"`
	At20PercentMove float64 `json:"at_20_percent_move"`
}

// SimulationResult is the outcome of simulating a position against a snapshot.
type SimulationResult struct {
	PoolAddress   string  `json:"pool_address"`
	InvestmentUSD float64 `json:"investment_usd"`
	TickLower     int32   `json:"tick_lower"`
	TickUpper     int32   `json:"tick_upper"`
	PriceLower    float64 `json:"price_lower"`
	PriceUpper    float64 `json:"price_upper"`
	DurationDays  int     `json:"duration_days"`

	EstimatedLiquidity string `json:"estimated_liquidity"`
	Token0Amount       string `json:"token0_amount"`
	Token1Amount       string `json:"token1_amount"`

	FeeEarnings      Earnings         `json:"fee_earnings"`
	EmissionEarnings EmissionEarnings `json:"emission_earnings"`
	TotalEarnings    Earnings         `json:"total_earnings"`
	PeriodEarnings   float64          `json:"period_earnings"`
	EffectiveAPR     float64          `json:"effective_apr"`

	ImpermanentLoss    ImpermanentLoss `json:"impermanent_loss"`
	InRangeProbability float64         `json:"in_range_probability"`
	CapitalEfficiency  float64         `json:"capital_efficiency"`

	ShareOfEmissionRange float64 `json:"share_of_emission_range"`
	ShareOfTotalPool     float64 `json:"share_of_total_pool"`
}

// SimulationRecord is the storage row for a completed simulation.
type SimulationRecord struct {
	ChainID     uint64           `json:"chain_id"`
	PoolAddress string           `json:"pool_address"`
	Input       SimulationInput  `json:"input"`
	Result      SimulationResult `json:"result"`
	CreatedAt   time.Time        `json:"created_at"`
}
