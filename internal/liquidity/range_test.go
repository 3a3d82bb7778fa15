package liquidity

import (
	"errors"
	"math/big"
	"testing"

	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

func TestScanBounds(t *testing.T) {
	lower, upper := ScanBounds(-12345, 100, 2)
	if lower != -32400 || upper != 7700 {
		t.Fatalf("scan bounds %d %d", lower, upper)
	}
	lower, upper = ScanBounds(880000, 200, 2)
	if upper != 887200 || lower != 840000 {
		t.Fatalf("clamped bounds %d %d", lower, upper)
	}
}

func TestDefaultEmissionBounds(t *testing.T) {
	lower, upper := DefaultEmissionBounds(-12345, 100)
	if lower != -17400 || upper != -7300 {
		t.Fatalf("emission bounds %d %d", lower, upper)
	}
	lower, upper = DefaultEmissionBounds(0, 200)
	if lower != -5000 || upper != 5000 {
		t.Fatalf("aligned emission bounds %d %d", lower, upper)
	}
}

func TestMarkEmissionRange(t *testing.T) {
	ticks := []model.TickLiquidity{
		{Tick: -200, LiquidityGross: "100"},
		{Tick: -100, LiquidityGross: "200"},
		{Tick: 100, LiquidityGross: "300"},
		{Tick: 300, LiquidityGross: "400"},
	}
	inRange, percent, err := MarkEmissionRange(ticks, -100, 100)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if inRange.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("in range %s", inRange)
	}
	if percent != 50 {
		t.Fatalf("percent %v", percent)
	}
	want := []bool{false, true, true, false}
	for i, tk := range ticks {
		if tk.IsInEmissionRange != want[i] {
			t.Fatalf("tick %d flag %v", tk.Tick, tk.IsInEmissionRange)
		}
	}

	_, percent, err = MarkEmissionRange(nil, 0, 1)
	if err != nil || percent != 0 {
		t.Fatalf("empty: %v %v", percent, err)
	}

	_, _, err = MarkEmissionRange([]model.TickLiquidity{{Tick: 1, LiquidityGross: "abc"}}, 0, 10)
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBuildEmissionRange(t *testing.T) {
	ticks := []model.TickLiquidity{
		{Tick: -100, LiquidityGross: "1"},
		{Tick: 0, LiquidityGross: "1"},
		{Tick: 6000, LiquidityGross: "2"},
	}
	rate := new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)
	er, err := BuildEmissionRange(ticks, EmissionParams{
		TickLower:   -5000,
		TickUpper:   5000,
		Decimals0:   18,
		Decimals1:   18,
		RewardRate:  rate,
		RewardPrice: 1,
		TVLUSD:      1_000_000,
		GaugeActive: true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if er.PercentOfTotal != 50 || er.LiquidityInRangeUSD != 500_000 {
		t.Fatalf("range share %+v", er)
	}
	if er.RewardPerDay != 8640 || er.USDPerDayPer1000 != 8640*1000/500_000.0 {
		t.Fatalf("reward flow %+v", er)
	}
	if er.PriceLower >= 1 || er.PriceUpper <= 1 {
		t.Fatalf("price bounds %v %v", er.PriceLower, er.PriceUpper)
	}

	inactive, err := BuildEmissionRange(ticks, EmissionParams{TickLower: -5000, TickUpper: 5000, RewardRate: rate, RewardPrice: 1})
	if err != nil {
		t.Fatalf("build inactive: %v", err)
	}
	if inactive.RewardPerDay != 0 {
		t.Fatalf("inactive gauge should not emit: %+v", inactive)
	}

	if _, err := BuildEmissionRange(ticks, EmissionParams{TickLower: 10, TickUpper: 10}); !errors.Is(err, tickmath.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
