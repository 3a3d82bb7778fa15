package tickmath

import (
	"math"
	"math/big"
)

// FormatUnits renders a raw token amount with the token's decimals.
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	rat := new(big.Rat).SetFrac(abs, pow10(decimals))
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// ParseUnits converts a human token amount to raw units, flooring the remainder.
// Non-positive and non-finite amounts yield zero.
func ParseUnits(amount float64, decimals uint8) *big.Int {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return big.NewInt(0)
	}
	scaled := new(big.Float).SetPrec(256).SetFloat64(amount)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetInt(pow10(decimals)))
	out, _ := scaled.Int(nil)
	return out
}

// ToFloat converts a raw amount to a float with the given decimals.
func ToFloat(value *big.Int, decimals uint8) float64 {
	if value == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(value, pow10(decimals)).Float64()
	return f
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
