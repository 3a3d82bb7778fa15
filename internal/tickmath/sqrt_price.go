package tickmath

import (
	"fmt"
	"math"
	"math/big"
)

var (
	// Q96 is 2^96, the fixed-point scale of sqrtPriceX96 values.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

	// MinSqrtRatio and MaxSqrtRatio are GetSqrtRatioAtTick(MinTick) and GetSqrtRatioAtTick(MaxTick).
	MinSqrtRatio = big.NewInt(4295128739)
	MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342", 10)

	q96Float   = new(big.Float).SetInt(Q96)
	q128       = new(big.Int).Lsh(big.NewInt(1), 128)
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	lowMask32  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 32), big.NewInt(1))
)

// sqrt(1.0001^-(2^i)) in Q128.128, one per bit of |tick|.
var tickFactors = []struct {
	mask   uint32
	factor *big.Int
}{
	{0x1, mustBig("fffcb933bd6fad37aa2d162d1a594001", 16)},
	{0x2, mustBig("fff97272373d413259a46990580e213a", 16)},
	{0x4, mustBig("fff2e50f5f656932ef12357cf3c7fdcc", 16)},
	{0x8, mustBig("ffe5caca7e10e4e61c3624eaa0941cd0", 16)},
	{0x10, mustBig("ffcb9843d60f6159c9db58835c926644", 16)},
	{0x20, mustBig("ff973b41fa98c081472e6896dfb254c0", 16)},
	{0x40, mustBig("ff2ea16466c96a3843ec78b326b52861", 16)},
	{0x80, mustBig("fe5dee046a99a2a811c461f1969c3053", 16)},
	{0x100, mustBig("fcbe86c7900a88aedcffc83b479aa3a4", 16)},
	{0x200, mustBig("f987a7253ac413176f2b074cf7815e54", 16)},
	{0x400, mustBig("f3392b0822b70005940c7a398e4b70f3", 16)},
	{0x800, mustBig("e7159475a2c29b7443b29c7fa6e889d9", 16)},
	{0x1000, mustBig("d097f3bdfd2022b8845ad8f792aa5825", 16)},
	{0x2000, mustBig("a9f746462d870fdf8a65dc1f90e061e5", 16)},
	{0x4000, mustBig("70d869a156d2a1b890bb3df62baf32f7", 16)},
	{0x8000, mustBig("31be135f97d08fd981231505542fcfa6", 16)},
	{0x10000, mustBig("9aa508b5b7a84e1c677de54f3e99bc9", 16)},
	{0x20000, mustBig("5d6af8dedb81196699c329225ee604", 16)},
	{0x40000, mustBig("2216e584f5fa1ea926041bedfe98", 16)},
	{0x80000, mustBig("48a170391f7dc42444e8fa2", 16)},
}

// SqrtPriceX96ToPrice converts a Q64.96 square-root price to a decimal-adjusted price.
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8) float64 {
	if sqrtPriceX96 == nil {
		return 0
	}
	sqrtPrice, _ := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96Float).Float64()
	return sqrtPrice * sqrtPrice * decimalAdjustment(decimals0, decimals1)
}

// PriceToSqrtPriceX96 is the floor-rounded inverse of SqrtPriceX96ToPrice.
func PriceToSqrtPriceX96(price float64, decimals0, decimals1 uint8) (*big.Int, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%w: price must be finite and non-negative, got %v", ErrInvalidArgument, price)
	}
	sqrtPrice := math.Sqrt(price / decimalAdjustment(decimals0, decimals1))
	scaled := new(big.Float).Mul(new(big.Float).SetFloat64(sqrtPrice), q96Float)
	out, _ := scaled.Int(nil)
	return out, nil
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 exactly as the pool contract computes it.
func GetSqrtRatioAtTick(tick int32) (*big.Int, error) {
	absTick := int64(tick)
	if absTick < 0 {
		absTick = -absTick
	}
	if absTick > int64(MaxTick) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, tick)
	}

	ratio := new(big.Int).Set(q128)
	for _, f := range tickFactors {
		if uint32(absTick)&f.mask != 0 {
			ratio.Mul(ratio, f.factor)
			ratio.Rsh(ratio, 128)
		}
	}
	if tick > 0 {
		ratio.Quo(maxUint256, ratio)
	}

	// Q128.128 to Q64.96, rounding up.
	remainder := new(big.Int).And(ratio, lowMask32)
	out := ratio.Rsh(ratio, 32)
	if remainder.Sign() != 0 {
		out.Add(out, big.NewInt(1))
	}
	return out, nil
}

// GetTickAtSqrtRatio approximates the tick for a sqrt price using float logarithms.
// It is meant for display and estimates; it can land one tick below the
// on-chain answer and is not the inverse of GetSqrtRatioAtTick bit for bit.
func GetTickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0, fmt.Errorf("%w: sqrt price must be positive", ErrInvalidArgument)
	}
	sqrtPrice, _ := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), q96Float).Float64()
	tick := math.Floor(math.Log(sqrtPrice*sqrtPrice) / logTickBase)
	if tick < float64(MinTick) || tick > float64(MaxTick) {
		return 0, fmt.Errorf("%w: sqrt price %s", ErrOutOfRange, sqrtPriceX96)
	}
	return int32(tick), nil
}

func mustBig(s string, base int) *big.Int {
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		panic("tickmath: bad constant " + s)
	}
	return v
}
