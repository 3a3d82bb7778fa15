package tickmath

import (
	"fmt"
	"math/big"
)

// GetAmount0ForLiquidity returns L * Q96 * (sqrtB - sqrtA) / (sqrtB * sqrtA).
func GetAmount0ForLiquidity(sqrtRatioA, sqrtRatioB, liquidity *big.Int) (*big.Int, error) {
	a, b, err := orderedRatios(sqrtRatioA, sqrtRatioB)
	if err != nil {
		return nil, err
	}
	if liquidity == nil {
		return nil, fmt.Errorf("%w: nil liquidity", ErrInvalidArgument)
	}
	num := new(big.Int).Mul(liquidity, Q96)
	num.Mul(num, new(big.Int).Sub(b, a))
	return num.Quo(num, new(big.Int).Mul(b, a)), nil
}

// GetAmount1ForLiquidity returns L * (sqrtB - sqrtA) / Q96.
func GetAmount1ForLiquidity(sqrtRatioA, sqrtRatioB, liquidity *big.Int) (*big.Int, error) {
	a, b, err := orderedRatios(sqrtRatioA, sqrtRatioB)
	if err != nil {
		return nil, err
	}
	if liquidity == nil {
		return nil, fmt.Errorf("%w: nil liquidity", ErrInvalidArgument)
	}
	num := new(big.Int).Mul(liquidity, new(big.Int).Sub(b, a))
	return num.Quo(num, Q96), nil
}

// GetLiquidityForAmount0 returns amount0 * (sqrtA * sqrtB / Q96) / (sqrtB - sqrtA).
func GetLiquidityForAmount0(sqrtRatioA, sqrtRatioB, amount0 *big.Int) (*big.Int, error) {
	a, b, err := orderedRatios(sqrtRatioA, sqrtRatioB)
	if err != nil {
		return nil, err
	}
	if amount0 == nil {
		return nil, fmt.Errorf("%w: nil amount0", ErrInvalidArgument)
	}
	width := new(big.Int).Sub(b, a)
	if width.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero-width sqrt price range", ErrInvalidArgument)
	}
	intermediate := new(big.Int).Mul(a, b)
	intermediate.Quo(intermediate, Q96)
	out := new(big.Int).Mul(amount0, intermediate)
	return out.Quo(out, width), nil
}

// GetLiquidityForAmount1 returns amount1 * Q96 / (sqrtB - sqrtA).
func GetLiquidityForAmount1(sqrtRatioA, sqrtRatioB, amount1 *big.Int) (*big.Int, error) {
	a, b, err := orderedRatios(sqrtRatioA, sqrtRatioB)
	if err != nil {
		return nil, err
	}
	if amount1 == nil {
		return nil, fmt.Errorf("%w: nil amount1", ErrInvalidArgument)
	}
	width := new(big.Int).Sub(b, a)
	if width.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero-width sqrt price range", ErrInvalidArgument)
	}
	out := new(big.Int).Mul(amount1, Q96)
	return out.Quo(out, width), nil
}

// orderedRatios returns the two ratios in ascending order.
func orderedRatios(a, b *big.Int) (*big.Int, *big.Int, error) {
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%w: nil sqrt ratio", ErrInvalidArgument)
	}
	if a.Sign() <= 0 || b.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: sqrt ratio must be positive", ErrInvalidArgument)
	}
	if a.Cmp(b) > 0 {
		return b, a, nil
	}
	return a, b, nil
}
