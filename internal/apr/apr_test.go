package apr

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"aeroScope/internal/tickmath"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculateFeeAPR(t *testing.T) {
	if got := CalculateFeeAPR(FeeInput{Fees24hUSD: 2500, TVLUSD: 0}); got != 0 {
		t.Fatalf("zero tvl: %v", got)
	}
	if got := CalculateFeeAPR(FeeInput{Fees24hUSD: 2500, TVLUSD: -10}); got != 0 {
		t.Fatalf("negative tvl: %v", got)
	}
	if got := CalculateFeeAPR(FeeInput{Fees24hUSD: 2500, TVLUSD: 10_000_000}); !almostEqual(got, 9.125, 1e-9) {
		t.Fatalf("fee apr: %v", got)
	}
}

func TestCalculateEmissionAPR(t *testing.T) {
	oneTokenPerSecond := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	got := CalculateEmissionAPR(EmissionInput{
		RewardRate:         oneTokenPerSecond,
		TokenPriceUSD:      1,
		StakedLiquidityUSD: SecondsPerYear,
	})
	if !almostEqual(got, 100, 1e-9) {
		t.Fatalf("emission apr: %v", got)
	}

	if got := CalculateEmissionAPR(EmissionInput{RewardRate: oneTokenPerSecond, TokenPriceUSD: 1}); got != 0 {
		t.Fatalf("zero staked: %v", got)
	}

	// rates beyond 2^64 wei/s must not lose integer precision before scaling
	huge := new(big.Int).Mul(oneTokenPerSecond, big.NewInt(1_000_000))
	got = CalculateEmissionAPR(EmissionInput{RewardRate: huge, TokenPriceUSD: 0.5, StakedLiquidityUSD: 1e12})
	want := 1e6 * SecondsPerYear * 0.5 / 1e12 * 100
	if !almostEqual(got, want, 1e-6) {
		t.Fatalf("large rate: %v want %v", got, want)
	}
}

func TestCalculateEarnings(t *testing.T) {
	e := CalculateEarnings(1000, 36.5)
	if !almostEqual(e.Daily, 1, 1e-12) {
		t.Fatalf("daily: %v", e.Daily)
	}
	if !almostEqual(e.Weekly, 7, 1e-12) || !almostEqual(e.Monthly, 30, 1e-12) || !almostEqual(e.Yearly, 365, 1e-9) {
		t.Fatalf("horizons: %+v", e)
	}
	if e.APR != 36.5 {
		t.Fatalf("apr: %v", e.APR)
	}
	if total := CalculateTotalAPR(9.125, 25.5); total != 34.625 {
		t.Fatalf("total: %v", total)
	}
}

func TestAdjustAPRForRange(t *testing.T) {
	cases := []struct {
		name               string
		posLower, posUpper int32
		emLower, emUpper   int32
		want               float64
	}{
		{"disjoint", 100, 200, 300, 400, 0},
		{"touching", 100, 300, 300, 400, 0},
		{"narrower inside", -500, 500, -5000, 5000, 25.5 * 10},
		{"identical", -5000, 5000, -5000, 5000, 25.5},
		{"wider", -10000, 10000, -5000, 5000, 25.5 * 0.5},
		{"partial", 0, 10000, -5000, 5000, 25.5 * 0.5},
	}
	for _, tc := range cases {
		got, err := AdjustAPRForRange(25.5, tc.posLower, tc.posUpper, tc.emLower, tc.emUpper)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !almostEqual(got, tc.want, 1e-9) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}

	if _, err := AdjustAPRForRange(25.5, 100, 100, 0, 200); !errors.Is(err, tickmath.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for zero width, got %v", err)
	}
}

func TestCalculateEffectiveAPR(t *testing.T) {
	if got := CalculateEffectiveAPR(40, 75); got != 30 {
		t.Fatalf("effective apr: %v", got)
	}
}

func TestEmissionRates(t *testing.T) {
	rate := new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil) // 0.1 token/s
	r := EmissionRates(rate, 2, 1_000_000)
	if !almostEqual(r.PerSecond, 0.1, 1e-12) {
		t.Fatalf("per second: %v", r.PerSecond)
	}
	if !almostEqual(r.PerDay, 8640, 1e-9) || !almostEqual(r.PerWeek, 60480, 1e-9) {
		t.Fatalf("per day/week: %+v", r)
	}
	if !almostEqual(r.ValuePerDayUSD, 17280, 1e-9) {
		t.Fatalf("value per day: %v", r.ValuePerDayUSD)
	}
	if !almostEqual(r.USDPerDayPer1000, 17.28, 1e-9) {
		t.Fatalf("usd per 1000: %v", r.USDPerDayPer1000)
	}

	empty := EmissionRates(rate, 2, 0)
	if empty.PerDayPer1000 != 0 || empty.USDPerDayPer1000 != 0 {
		t.Fatalf("expected zero per-1000 rates: %+v", empty)
	}
}

func TestRewardTokensPerYear(t *testing.T) {
	// 36.5% of $1M at $2/token is 182,500 tokens a year, 500 a day
	got := RewardTokensPerYear(36.5, 1_000_000, 2)
	if !almostEqual(got, 182500, 1e-9) || !almostEqual(got/365, 500, 1e-9) {
		t.Fatalf("tokens per year: %v", got)
	}
	if RewardTokensPerYear(36.5, 1_000_000, 0) != 0 {
		t.Fatalf("zero price should yield zero")
	}
	// round trip against the forward formula
	annualUSD := got * 2
	if !almostEqual(annualUSD/1_000_000*100, 36.5, 1e-9) {
		t.Fatalf("round trip apr: %v", annualUSD/1_000_000*100)
	}
}

func TestParsePoolMeta(t *testing.T) {
	spacing, fee := ParsePoolMeta("CL200 - 0.3%")
	if spacing != 200 || fee != 3000 {
		t.Fatalf("parsed %d %d", spacing, fee)
	}
	spacing, fee = ParsePoolMeta("")
	if spacing != 100 || fee != 500 {
		t.Fatalf("fallback %d %d", spacing, fee)
	}
	if FeeForTickSpacing(50) != 3000 || FeeForTickSpacing(7) != 500 {
		t.Fatalf("fee map mismatch")
	}
}
