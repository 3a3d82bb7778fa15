package liquidity

import (
	"fmt"
	"math/big"

	"aeroScope/internal/apr"
	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

const (
	ticksPerMultiplier = 100
	// emissionHalfWidth is the tick distance either side of the current tick
	// assumed to receive emissions when the gauge does not publish bounds.
	emissionHalfWidth = 5000
)

// ScanBounds returns the spacing-aligned tick window scanned around the current tick.
// The window spans 100*multiplier spacings each side and is clamped to the usable tick range.
func ScanBounds(currentTick, spacing int32, multiplier int) (int32, int32) {
	if spacing <= 0 {
		spacing = 1
	}
	if multiplier <= 0 {
		multiplier = 1
	}
	reach := int64(ticksPerMultiplier) * int64(multiplier) * int64(spacing)
	return alignedBounds(int64(currentTick), reach, int64(spacing))
}

// DefaultEmissionBounds returns the emission range assumed around the current tick.
func DefaultEmissionBounds(currentTick, spacing int32) (int32, int32) {
	if spacing <= 0 {
		spacing = 1
	}
	return alignedBounds(int64(currentTick), emissionHalfWidth, int64(spacing))
}

func alignedBounds(current, reach, spacing int64) (int32, int32) {
	lower := floorDiv(current-reach, spacing) * spacing
	upper := ceilDiv(current+reach, spacing) * spacing

	minUsable := ceilDiv(int64(tickmath.MinTick), spacing) * spacing
	maxUsable := floorDiv(int64(tickmath.MaxTick), spacing) * spacing
	lower = max(lower, minUsable)
	upper = min(upper, maxUsable)
	return int32(lower), int32(upper)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// MarkEmissionRange flags every tick in [lower, upper] and returns the gross
// liquidity inside the range and its share of the total as a percentage with
// two decimals of integer precision.
func MarkEmissionRange(ticks []model.TickLiquidity, lower, upper int32) (*big.Int, float64, error) {
	inRange := new(big.Int)
	total := new(big.Int)
	for i := range ticks {
		gross, err := model.ParseBigInt(ticks[i].LiquidityGross)
		if err != nil {
			return nil, 0, fmt.Errorf("tick %d gross liquidity: %w", ticks[i].Tick, err)
		}
		total.Add(total, gross)
		ticks[i].IsInEmissionRange = ticks[i].Tick >= lower && ticks[i].Tick <= upper
		if ticks[i].IsInEmissionRange {
			inRange.Add(inRange, gross)
		}
	}
	if total.Sign() == 0 {
		return inRange, 0, nil
	}
	basisPoints := new(big.Int).Mul(inRange, big.NewInt(10000))
	basisPoints.Quo(basisPoints, total)
	return inRange, float64(basisPoints.Int64()) / 100, nil
}

// EmissionParams are the inputs needed to describe a gauge's reward range.
type EmissionParams struct {
	TickLower    int32
	TickUpper    int32
	Decimals0    uint8
	Decimals1    uint8
	RewardRate   *big.Int
	RewardPrice  float64
	TVLUSD       float64
	GaugeActive  bool
	PeriodFinish uint64
}

// BuildEmissionRange marks ticks against the reward range and derives its reward flow.
// An inactive gauge yields a range with zero reward rates.
func BuildEmissionRange(ticks []model.TickLiquidity, p EmissionParams) (*model.EmissionRange, error) {
	if p.TickLower >= p.TickUpper {
		return nil, fmt.Errorf("%w: emission range [%d, %d]", tickmath.ErrInvalidArgument, p.TickLower, p.TickUpper)
	}
	inRange, percent, err := MarkEmissionRange(ticks, p.TickLower, p.TickUpper)
	if err != nil {
		return nil, err
	}

	liquidityUSD := p.TVLUSD * percent / 100
	rate := p.RewardRate
	if !p.GaugeActive {
		rate = nil
	}
	rates := apr.EmissionRates(rate, p.RewardPrice, liquidityUSD)

	return &model.EmissionRange{
		TickLower:           p.TickLower,
		TickUpper:           p.TickUpper,
		PriceLower:          tickmath.TickToPrice(p.TickLower, p.Decimals0, p.Decimals1),
		PriceUpper:          tickmath.TickToPrice(p.TickUpper, p.Decimals0, p.Decimals1),
		LiquidityInRange:    inRange.String(),
		LiquidityInRangeUSD: liquidityUSD,
		PercentOfTotal:      percent,
		RewardPerSecond:     rates.PerSecond,
		RewardPerDay:        rates.PerDay,
		RewardPerWeek:       rates.PerWeek,
		RewardValuePerDay:   rates.ValuePerDayUSD,
		RewardPerDayPer1000: rates.PerDayPer1000,
		USDPerDayPer1000:    rates.USDPerDayPer1000,
		GaugeActive:         p.GaugeActive,
		PeriodFinish:        p.PeriodFinish,
	}, nil
}
