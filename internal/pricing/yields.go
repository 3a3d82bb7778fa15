package pricing

import (
	"context"
	"fmt"
	"strings"

	"aeroScope/internal/apr"
)

const (
	SlipstreamProject = "aerodrome-slipstream"
	BaseChain         = "Base"
)

// YieldPool is one entry of the DefiLlama yields feed.
type YieldPool struct {
	Pool             string   `json:"pool"`
	Chain            string   `json:"chain"`
	Project          string   `json:"project"`
	Symbol           string   `json:"symbol"`
	TVLUSD           float64  `json:"tvlUsd"`
	APYBase          *float64 `json:"apyBase"`
	APYReward        *float64 `json:"apyReward"`
	APY              *float64 `json:"apy"`
	APYPct1D         *float64 `json:"apyPct1D"`
	APYPct7D         *float64 `json:"apyPct7D"`
	APYPct30D        *float64 `json:"apyPct30D"`
	APYMean30d       *float64 `json:"apyMean30d"`
	VolumeUSD1d      *float64 `json:"volumeUsd1d"`
	VolumeUSD7d      *float64 `json:"volumeUsd7d"`
	PoolMeta         *string  `json:"poolMeta"`
	UnderlyingTokens []string `json:"underlyingTokens"`
	Stablecoin       bool     `json:"stablecoin"`
	ILRisk           string   `json:"ilRisk"`
	Predictions      *struct {
		PredictedClass       string  `json:"predictedClass"`
		PredictedProbability float64 `json:"predictedProbability"`
	} `json:"predictions"`
}

// TickSpacing reads the spacing from the pool label, defaulting like ParsePoolMeta.
func (p YieldPool) TickSpacing() int32 {
	meta := ""
	if p.PoolMeta != nil {
		meta = *p.PoolMeta
	}
	spacing, _ := apr.ParsePoolMeta(meta)
	return spacing
}

type yieldsResponse struct {
	Status string      `json:"status"`
	Data   []YieldPool `json:"data"`
}

// SlipstreamPools returns the Aerodrome Slipstream pools on Base from the yields feed.
func (c *Client) SlipstreamPools(ctx context.Context) ([]YieldPool, error) {
	var resp yieldsResponse
	if err := c.getJSON(ctx, c.cfg.YieldsURL+"/pools", nil, &resp); err != nil {
		return nil, fmt.Errorf("defillama yields: %w", err)
	}
	pools := make([]YieldPool, 0)
	for _, p := range resp.Data {
		if p.Project == SlipstreamProject && p.Chain == BaseChain {
			pools = append(pools, p)
		}
	}
	return pools, nil
}

// FindYieldPool matches a pool by its two underlying tokens and tick spacing.
// When several entries match, the one with the highest TVL wins.
func FindYieldPool(pools []YieldPool, token0, token1 string, tickSpacing int32) (YieldPool, bool) {
	a, b := strings.ToLower(token0), strings.ToLower(token1)
	var best YieldPool
	found := false
	for _, p := range pools {
		if len(p.UnderlyingTokens) != 2 || p.TickSpacing() != tickSpacing {
			continue
		}
		u0, u1 := strings.ToLower(p.UnderlyingTokens[0]), strings.ToLower(p.UnderlyingTokens[1])
		if !((u0 == a && u1 == b) || (u0 == b && u1 == a)) {
			continue
		}
		if !found || p.TVLUSD > best.TVLUSD {
			best = p
			found = true
		}
	}
	return best, found
}

// Value returns *f or zero.
func Value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
