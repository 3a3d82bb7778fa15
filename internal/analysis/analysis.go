// Package analysis ranks Slipstream pools from the yields feed and projects
// simple investment returns from their reported APRs.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aeroScope/internal/apr"
	"aeroScope/internal/pricing"
)

const (
	DefaultMinTVL = 100_000
	DefaultLimit  = 30

	// share of liquidity assumed to sit in the active range
	stableActivePercent   = 90
	volatileActivePercent = 70
)

var ErrInvalidOptions = errors.New("invalid analysis options")

// PoolAnalysis is the per-pool view served by the analysis routes.
type PoolAnalysis struct {
	Symbol      string `json:"symbol"`
	PoolAddress string `json:"pool_address"`
	TickSpacing int32  `json:"tick_spacing"`
	Fee         uint32 `json:"fee"`

	TVLUSD    float64 `json:"tvl_usd"`
	Volume24h float64 `json:"volume_24h"`
	Volume7d  float64 `json:"volume_7d"`

	FeeAPR      float64 `json:"fee_apr"`
	EmissionAPR float64 `json:"emission_apr"`
	TotalAPR    float64 `json:"total_apr"`

	AeroPerDay       float64 `json:"aero_per_day"`
	AeroPerWeek      float64 `json:"aero_per_week"`
	EmissionValueUSD float64 `json:"emission_value_usd"`

	ActiveLiquidityPercent float64 `json:"active_liquidity_percent"`

	APRChange1d  float64 `json:"apr_change_1d"`
	APRChange7d  float64 `json:"apr_change_7d"`
	APRChange30d float64 `json:"apr_change_30d"`
	APRMean30d   float64 `json:"apr_mean_30d"`

	IsStablecoin bool   `json:"is_stablecoin"`
	HasILRisk    bool   `json:"has_il_risk"`
	Prediction   string `json:"prediction"`
}

// Analyze derives the analysis view of one yields-feed pool. Reward token
// flow is backed out of the emission APR at aeroPrice.
func Analyze(p pricing.YieldPool, aeroPrice float64) PoolAnalysis {
	meta := ""
	if p.PoolMeta != nil {
		meta = *p.PoolMeta
	}
	spacing, fee := apr.ParsePoolMeta(meta)

	feeAPR := pricing.Value(p.APYBase)
	emissionAPR := pricing.Value(p.APYReward)
	totalAPR := pricing.Value(p.APY)
	if totalAPR == 0 {
		totalAPR = apr.CalculateTotalAPR(feeAPR, emissionAPR)
	}

	perDay := apr.RewardTokensPerYear(emissionAPR, p.TVLUSD, aeroPrice) / 365

	active := float64(volatileActivePercent)
	if p.Stablecoin {
		active = stableActivePercent
	}

	mean := pricing.Value(p.APYMean30d)
	if mean == 0 {
		mean = totalAPR
	}

	prediction := "Unknown"
	if p.Predictions != nil && p.Predictions.PredictedClass != "" {
		prediction = p.Predictions.PredictedClass
	}

	return PoolAnalysis{
		Symbol:                 p.Symbol,
		PoolAddress:            p.Pool,
		TickSpacing:            spacing,
		Fee:                    fee,
		TVLUSD:                 p.TVLUSD,
		Volume24h:              pricing.Value(p.VolumeUSD1d),
		Volume7d:               pricing.Value(p.VolumeUSD7d),
		FeeAPR:                 feeAPR,
		EmissionAPR:            emissionAPR,
		TotalAPR:               totalAPR,
		AeroPerDay:             perDay,
		AeroPerWeek:            perDay * 7,
		EmissionValueUSD:       perDay * aeroPrice,
		ActiveLiquidityPercent: active,
		APRChange1d:            pricing.Value(p.APYPct1D),
		APRChange7d:            pricing.Value(p.APYPct7D),
		APRChange30d:           pricing.Value(p.APYPct30D),
		APRMean30d:             mean,
		IsStablecoin:           p.Stablecoin,
		HasILRisk:              p.ILRisk == "yes",
		Prediction:             prediction,
	}
}

// SortKey orders ranked pools, always descending.
type SortKey string

const (
	SortAPR       SortKey = "apr"
	SortTVL       SortKey = "tvl"
	SortEmissions SortKey = "emissions"
	SortVolume    SortKey = "volume"
)

// ParseSortKey maps a query value onto a SortKey. Empty input means apr.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortAPR, nil
	case SortAPR, SortTVL, SortEmissions, SortVolume:
		return k, nil
	}
	return "", fmt.Errorf("%w: sort key %q", ErrInvalidOptions, s)
}

// Options select and order pools for Rank. Limit <= 0 means DefaultLimit.
type Options struct {
	MinTVL float64
	SortBy SortKey
	Limit  int
}

// Result is a ranked window of pools. The totals cover only the returned pools.
type Result struct {
	Pools               []PoolAnalysis `json:"pools"`
	AeroPrice           float64        `json:"aero_price"`
	TotalTVL            float64        `json:"total_tvl"`
	TotalDailyEmissions float64        `json:"total_daily_emissions"`
	LastUpdated         time.Time      `json:"last_updated"`
}

// Rank analyzes every pool at or above opts.MinTVL, orders them by opts.SortBy
// and keeps the first opts.Limit.
func Rank(pools []pricing.YieldPool, aeroPrice float64, opts Options, now time.Time) Result {
	analyzed := make([]PoolAnalysis, 0, len(pools))
	for _, p := range pools {
		if p.TVLUSD < opts.MinTVL {
			continue
		}
		analyzed = append(analyzed, Analyze(p, aeroPrice))
	}

	key := rankValue(opts.SortBy)
	sort.SliceStable(analyzed, func(i, j int) bool {
		return key(analyzed[i]) > key(analyzed[j])
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(analyzed) > limit {
		analyzed = analyzed[:limit]
	}

	res := Result{Pools: analyzed, AeroPrice: aeroPrice, LastUpdated: now.UTC()}
	for _, a := range analyzed {
		res.TotalTVL += a.TVLUSD
		res.TotalDailyEmissions += a.AeroPerDay
	}
	return res
}

func rankValue(k SortKey) func(PoolAnalysis) float64 {
	switch k {
	case SortTVL:
		return func(a PoolAnalysis) float64 { return a.TVLUSD }
	case SortEmissions:
		return func(a PoolAnalysis) float64 { return a.AeroPerDay }
	case SortVolume:
		return func(a PoolAnalysis) float64 { return a.Volume24h }
	default:
		return func(a PoolAnalysis) float64 { return a.TotalAPR }
	}
}
