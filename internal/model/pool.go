package model

import "time"

// ILRisk classifies a pool's exposure to impermanent loss.
type ILRisk string

const (
	ILRiskYes     ILRisk = "yes"
	ILRiskNo      ILRisk = "no"
	ILRiskUnknown ILRisk = "unknown"
)

// PoolAPR holds the yield components of a pool.
type PoolAPR struct {
	FeeAPR      float64 `json:"fee_apr"`
	EmissionAPR float64 `json:"emission_apr"`
	TotalAPR    float64 `json:"total_apr"`
	Change1D    float64 `json:"change_1d"`
	Change7D    float64 `json:"change_7d"`
	Mean30D     float64 `json:"mean_30d"`
}

// PoolSnapshot is the read-only view of a pool that the simulator consumes.
type PoolSnapshot struct {
	Address         string         `json:"address"`
	Token0          TokenInfo      `json:"token0"`
	Token1          TokenInfo      `json:"token1"`
	RewardToken     *TokenInfo     `json:"reward_token,omitempty"`
	TickSpacing     int32          `json:"tick_spacing"`
	Fee             uint32         `json:"fee"`
	CurrentTick     int32          `json:"current_tick"`
	CurrentPrice    float64        `json:"current_price"`
	SqrtPriceX96    string         `json:"sqrt_price_x96,omitempty"`
	Liquidity       string         `json:"liquidity"`
	StakedLiquidity string         `json:"staked_liquidity,omitempty"`
	TVLUSD          float64        `json:"tvl_usd"`
	Volume24hUSD    float64        `json:"volume_24h_usd"`
	Fees24hUSD      float64        `json:"fees_24h_usd"`
	APR             PoolAPR        `json:"apr"`
	Gauge           string         `json:"gauge,omitempty"`
	GaugeAlive      bool           `json:"gauge_alive"`
	EmissionRange   *EmissionRange `json:"emission_range,omitempty"`
	IsStable        bool           `json:"is_stable"`
	ILRisk          ILRisk         `json:"il_risk"`
	BlockNumber     uint64         `json:"block_number"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PoolRecord is the storage row for a pool snapshot.
type PoolRecord struct {
	ChainID      uint64    `json:"chain_id"`
	Address      string    `json:"address"`
	Token0       string    `json:"token0"`
	Token1       string    `json:"token1"`
	Symbol0      string    `json:"symbol0"`
	Symbol1      string    `json:"symbol1"`
	Fee          uint32    `json:"fee"`
	TickSpacing  int32     `json:"tick_spacing"`
	CurrentTick  int32     `json:"current_tick"`
	SqrtPriceX96 string    `json:"sqrt_price_x96"`
	Liquidity    string    `json:"liquidity"`
	TVLUSD       float64   `json:"tvl_usd"`
	FeeAPR       float64   `json:"fee_apr"`
	EmissionAPR  float64   `json:"emission_apr"`
	TotalAPR     float64   `json:"total_apr"`
	BlockNumber  uint64    `json:"block_number"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewPoolRecord flattens a snapshot into a storage row.
func NewPoolRecord(chainID uint64, s PoolSnapshot) PoolRecord {
	return PoolRecord{
		ChainID:      chainID,
		Address:      s.Address,
		Token0:       s.Token0.Address,
		Token1:       s.Token1.Address,
		Symbol0:      s.Token0.Symbol,
		Symbol1:      s.Token1.Symbol,
		Fee:          s.Fee,
		TickSpacing:  s.TickSpacing,
		CurrentTick:  s.CurrentTick,
		SqrtPriceX96: s.SqrtPriceX96,
		Liquidity:    s.Liquidity,
		TVLUSD:       s.TVLUSD,
		FeeAPR:       s.APR.FeeAPR,
		EmissionAPR:  s.APR.EmissionAPR,
		TotalAPR:     s.APR.TotalAPR,
		BlockNumber:  s.BlockNumber,
		UpdatedAt:    s.UpdatedAt,
	}
}
