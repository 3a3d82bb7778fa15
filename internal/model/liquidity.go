package model

// TickLiquidity is one initialized tick observed on a pool.
type TickLiquidity struct {
	Tick              int32   `json:"tick"`
	Price             float64 `json:"price"`
	LiquidityNet      string  `json:"liquidity_net"`
	LiquidityGross    string  `json:"liquidity_gross"`
	IsInEmissionRange bool    `json:"is_in_emission_range"`
}

// EmissionRange is the tick interval where gauge rewards are concentrated.
type EmissionRange struct {
	TickLower           int32   `json:"tick_lower"`
	TickUpper           int32   `json:"tick_upper"`
	PriceLower          float64 `json:"price_lower"`
	PriceUpper          float64 `json:"price_upper"`
	LiquidityInRange    string  `json:"liquidity_in_range"`
	LiquidityInRangeUSD float64 `json:"liquidity_in_range_usd"`
	PercentOfTotal      float64 `json:"percent_of_total"`
	RewardPerSecond     float64 `json:"reward_per_second"`
	RewardPerDay        float64 `json:"reward_per_day"`
	RewardPerWeek       float64 `json:"reward_per_week"`
	RewardValuePerDay   float64 `json:"reward_value_per_day"`
	RewardPerDayPer1000 float64 `json:"reward_per_day_per_1000"`
	USDPerDayPer1000    float64 `json:"usd_per_day_per_1000"`
	GaugeActive         bool    `json:"gauge_active"`
	PeriodFinish        uint64  `json:"period_finish"`
}

// LiquidityDistribution is the ordered tick sample set of a pool.
type LiquidityDistribution struct {
	PoolAddress   string          `json:"pool_address"`
	CurrentTick   int32           `json:"current_tick"`
	CurrentPrice  float64         `json:"current_price"`
	TickSpacing   int32           `json:"tick_spacing"`
	Ticks         []TickLiquidity `json:"ticks"`
	EmissionRange *EmissionRange  `json:"emission_range,omitempty"`
}

// HistogramBucket is one price bucket of an aggregated distribution.
// Liquidity is the exact sum; LiquidityValue is its float rendering for charts.
type HistogramBucket struct {
	Price             float64 `json:"price"`
	Liquidity         string  `json:"liquidity"`
	LiquidityValue    float64 `json:"liquidity_value"`
	IsInEmissionRange bool    `json:"is_in_emission_range"`
}
