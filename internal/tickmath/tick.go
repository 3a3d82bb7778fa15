package tickmath

import (
	"fmt"
	"math"
)

const (
	// MinTick and MaxTick bound every usable tick index.
	MinTick int32 = -887272
	MaxTick int32 = 887272

	// FullRangeWidth is the tick width of a full-range position.
	FullRangeWidth = int64(MaxTick) - int64(MinTick)

	tickBase = 1.0001
)

var logTickBase = math.Log(tickBase)

// TickToPrice converts a tick to a price of token1 per token0 adjusted for decimals.
// Ticks near the range edges lose precision; that is accepted for display values.
func TickToPrice(tick int32, decimals0, decimals1 uint8) float64 {
	return math.Pow(tickBase, float64(tick)) * decimalAdjustment(decimals0, decimals1)
}

// PriceToTick converts a decimal-adjusted price back to the nearest tick.
func PriceToTick(price float64, decimals0, decimals1 uint8) (int32, error) {
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidArgument, price)
	}
	raw := price / decimalAdjustment(decimals0, decimals1)
	tick := roundHalfUp(math.Log(raw) / logTickBase)
	if tick < float64(math.MinInt32) || tick > float64(math.MaxInt32) {
		return 0, fmt.Errorf("%w: price %v maps outside int32 ticks", ErrOutOfRange, price)
	}
	return int32(tick), nil
}

// RoundTickToSpacing snaps a tick to the nearest multiple of spacing.
// Halves round toward positive infinity. The result is not clamped: near
// MinTick or MaxTick it can land outside [MinTick, MaxTick] (for example
// -887272 with spacing 60 gives -887280), which GetSqrtRatioAtTick rejects.
// Callers that need a usable tick must clamp to the nearest in-range multiple.
func RoundTickToSpacing(tick, spacing int32) int32 {
	if spacing <= 0 {
		return tick
	}
	return int32(roundHalfUp(float64(tick)/float64(spacing))) * spacing
}

func decimalAdjustment(decimals0, decimals1 uint8) float64 {
	return math.Pow10(int(decimals0) - int(decimals1))
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
