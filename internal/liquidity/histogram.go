package liquidity

import (
	"fmt"
	"math"
	"math/big"

	"aeroScope/internal/model"
)

// DefaultBuckets is the chart resolution used when callers do not choose one.
const DefaultBuckets = 50

// AggregateHistogram groups tick samples into buckets of equal price width,
// ordered by ascending price. A sample falls in bucket i when its price is in
// [min+i*size, min+(i+1)*size); the highest sample lands in a bucket only when
// float rounding puts it below the last upper bound. A bucket is flagged when
// its midpoint lies inside the emission price range. A sample whose gross
// liquidity is not a base-10 integer fails the whole histogram.
func AggregateHistogram(dist model.LiquidityDistribution, buckets int) ([]model.HistogramBucket, error) {
	if buckets <= 0 {
		return nil, nil
	}
	if len(dist.Ticks) == 0 {
		return []model.HistogramBucket{}, nil
	}

	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	gross := make([]*big.Int, len(dist.Ticks))
	for i, t := range dist.Ticks {
		minPrice = math.Min(minPrice, t.Price)
		maxPrice = math.Max(maxPrice, t.Price)
		v, err := model.ParseBigInt(t.LiquidityGross)
		if err != nil {
			return nil, fmt.Errorf("tick %d gross liquidity: %w", t.Tick, err)
		}
		gross[i] = v
	}
	bucketSize := (maxPrice - minPrice) / float64(buckets)

	out := make([]model.HistogramBucket, 0, buckets)
	for i := 0; i < buckets; i++ {
		bucketMin := minPrice + float64(i)*bucketSize
		bucketMax := bucketMin + bucketSize
		bucketMid := (bucketMin + bucketMax) / 2

		sum := new(big.Int)
		for j, t := range dist.Ticks {
			if t.Price >= bucketMin && t.Price < bucketMax {
				sum.Add(sum, gross[j])
			}
		}

		inRange := false
		if er := dist.EmissionRange; er != nil {
			inRange = bucketMid >= er.PriceLower && bucketMid <= er.PriceUpper
		}

		value, _ := new(big.Float).SetInt(sum).Float64()
		out = append(out, model.HistogramBucket{
			Price:             bucketMid,
			Liquidity:         sum.String(),
			LiquidityValue:    value,
			IsInEmissionRange: inRange,
		})
	}
	return out, nil
}
