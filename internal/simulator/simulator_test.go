package simulator

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"aeroScope/internal/model"
	"aeroScope/internal/tickmath"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func referencePool() model.PoolSnapshot {
	return model.PoolSnapshot{
		Address:      "0x1111111111111111111111111111111111111111",
		Token0:       model.TokenInfo{Symbol: "WETH", Decimals: 18, PriceUSD: 3500},
		Token1:       model.TokenInfo{Symbol: "USDC", Decimals: 6, PriceUSD: 1},
		RewardToken:  &model.TokenInfo{Symbol: "AERO", Decimals: 18, PriceUSD: 1.5},
		TickSpacing:  100,
		Fee:          500,
		CurrentTick:  0,
		SqrtPriceX96: "79228162514264337593543950336",
		Liquidity:    "1000000000000000000000",
		TVLUSD:       10_000_000,
		Fees24hUSD:   2500,
		APR:          model.PoolAPR{FeeAPR: 9.125, EmissionAPR: 25.5, TotalAPR: 34.625},
	}
}

func TestCalculateImpermanentLoss(t *testing.T) {
	if got := CalculateImpermanentLoss(1.0); got != 0 {
		t.Fatalf("no move: %v", got)
	}
	got := CalculateImpermanentLoss(1.1)
	if got >= 0 || !almostEqual(got, -0.00114, 1e-5) {
		t.Fatalf("10%% move: %v", got)
	}
	if CalculateImpermanentLoss(0) != 0 || CalculateImpermanentLoss(-1) != 0 {
		t.Fatalf("non-positive ratio should be 0")
	}
}

func TestCalculateCapitalEfficiency(t *testing.T) {
	narrow := CalculateCapitalEfficiency(-1000, 1000, 0)
	full := CalculateCapitalEfficiency(tickmath.MinTick, tickmath.MaxTick, 0)
	if !(narrow > full) {
		t.Fatalf("narrow %v should exceed full %v", narrow, full)
	}
	if full != 1 {
		t.Fatalf("full range efficiency %v", full)
	}
	if got := CalculateCapitalEfficiency(100, 200, 0); got != 0 {
		t.Fatalf("out of range efficiency %v", got)
	}
	if got := CalculateCapitalEfficiency(-100, 0, 0); got == 0 {
		t.Fatalf("bound tick counts as in range")
	}
}

func TestCalculateShareOfRange(t *testing.T) {
	if got := CalculateShareOfRange(ShareInput{UserLiquidityUSD: 10000, TotalRangeLiquidityUSD: 0}); got != 0 {
		t.Fatalf("zero guard: %v", got)
	}
	if got := CalculateShareOfRange(ShareInput{UserLiquidityUSD: 1000, TotalRangeLiquidityUSD: 10_000_000}); got != 0.0001 {
		t.Fatalf("share: %v", got)
	}
}

func TestEstimateInRangeProbability(t *testing.T) {
	cases := []struct {
		lower, upper int32
		want         float64
	}{
		{-100, 100, 35},
		{-1000, 1000, 55},
		{-2000, 2000, 75},
		{-4000, 4000, 92},
		{-20000, 20000, 98},
	}
	for _, tc := range cases {
		if got := EstimateInRangeProbability(tc.lower, tc.upper, 0); got != tc.want {
			t.Fatalf("[%d, %d]: got %v want %v", tc.lower, tc.upper, got, tc.want)
		}
	}
	// tighter volatility makes the same range look safer
	if got := EstimateInRangeProbability(-100, 100, 0.001); got != 98 {
		t.Fatalf("low volatility: %v", got)
	}
}

func TestSimulateRejectsInvalidInput(t *testing.T) {
	pool := referencePool()
	_, err := Simulate(model.SimulationInput{InvestmentUSD: 1000, TickLower: 100, TickUpper: 100}, pool)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected invalid range, got %v", err)
	}
	_, err = Simulate(model.SimulationInput{InvestmentUSD: 0, TickLower: -100, TickUpper: 100}, pool)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	_, err = Simulate(model.SimulationInput{InvestmentUSD: -5, TickLower: 100, TickUpper: -100}, pool)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("range is checked first, got %v", err)
	}
	_, err = Simulate(model.SimulationInput{InvestmentUSD: 1000, TickLower: -900000, TickUpper: 100}, pool)
	if !errors.Is(err, tickmath.ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestSimulateFullRange(t *testing.T) {
	pool := referencePool()
	result, err := Simulate(model.SimulationInput{
		PoolAddress:   pool.Address,
		InvestmentUSD: 1000,
		TickLower:     tickmath.MinTick,
		TickUpper:     tickmath.MaxTick,
	}, pool)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !almostEqual(result.CapitalEfficiency, 1, 1e-12) {
		t.Fatalf("capital efficiency %v", result.CapitalEfficiency)
	}
	if !almostEqual(result.TotalEarnings.APR, 34.625, 1e-9) {
		t.Fatalf("total apr %v", result.TotalEarnings.APR)
	}
	if result.DurationDays != model.DefaultDurationDays {
		t.Fatalf("duration default %d", result.DurationDays)
	}
	if !almostEqual(result.PeriodEarnings, result.TotalEarnings.Daily*30, 1e-9) {
		t.Fatalf("period earnings %v", result.PeriodEarnings)
	}
	if result.InRangeProbability != 98 || !almostEqual(result.EffectiveAPR, 34.625*0.98, 1e-9) {
		t.Fatalf("effective apr %v at %v", result.EffectiveAPR, result.InRangeProbability)
	}
	if result.ShareOfTotalPool != 0.0001 || result.ShareOfEmissionRange != 0 {
		t.Fatalf("shares %v %v", result.ShareOfTotalPool, result.ShareOfEmissionRange)
	}
	if !almostEqual(result.EmissionEarnings.RewardAmount, result.EmissionEarnings.Yearly/1.5, 1e-9) {
		t.Fatalf("reward amount %v", result.EmissionEarnings.RewardAmount)
	}
	if result.Token1Amount != "500.000000" {
		t.Fatalf("token1 amount %s", result.Token1Amount)
	}
	liquidity, ok := new(big.Int).SetString(result.EstimatedLiquidity, 10)
	if !ok || liquidity.Sign() <= 0 {
		t.Fatalf("estimated liquidity %s", result.EstimatedLiquidity)
	}
	if result.ImpermanentLoss.At10PercentMove >= 0 || result.ImpermanentLoss.At20PercentMove >= result.ImpermanentLoss.At5PercentMove {
		t.Fatalf("impermanent loss %+v", result.ImpermanentLoss)
	}
}

func TestSimulateEmissionRange(t *testing.T) {
	pool := referencePool()
	pool.EmissionRange = &model.EmissionRange{TickLower: -5000, TickUpper: 5000, LiquidityInRangeUSD: 5_000_000}

	narrow, err := Simulate(model.SimulationInput{InvestmentUSD: 1000, TickLower: -500, TickUpper: 500}, pool)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !almostEqual(narrow.EmissionEarnings.APR, 255, 1e-9) {
		t.Fatalf("concentrated emission apr %v", narrow.EmissionEarnings.APR)
	}
	if !almostEqual(narrow.FeeEarnings.APR, 9.125*10, 1e-9) {
		t.Fatalf("fee apr should be capped at 10x: %v", narrow.FeeEarnings.APR)
	}
	if narrow.ShareOfEmissionRange != 0.0002 {
		t.Fatalf("share of emission range %v", narrow.ShareOfEmissionRange)
	}

	outside, err := Simulate(model.SimulationInput{InvestmentUSD: 1000, TickLower: 6000, TickUpper: 7000}, pool)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if outside.CapitalEfficiency != 0 || outside.FeeEarnings.APR != 0 || outside.EmissionEarnings.APR != 0 {
		t.Fatalf("out of range position should earn nothing: %+v", outside)
	}
	if outside.EstimatedLiquidity == "0" {
		t.Fatalf("out of range position still has a token-derived liquidity")
	}
}

func TestSimulatePriceOnBound(t *testing.T) {
	pool := referencePool()
	pool.SqrtPriceX96 = ""
	result, err := Simulate(model.SimulationInput{InvestmentUSD: 1000, TickLower: 0, TickUpper: 1000}, pool)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if result.EstimatedLiquidity == "0" {
		t.Fatalf("token0 side should bind when price sits on the lower bound")
	}
}
