package tickmath

import (
	"errors"
	"math"
	"testing"
)

func TestTickPriceRoundTrip(t *testing.T) {
	pairs := [][2]uint8{{18, 18}, {18, 6}, {8, 18}}
	for _, pair := range pairs {
		for tick := int32(-500000); tick <= 500000; tick += 7 {
			price := TickToPrice(tick, pair[0], pair[1])
			got, err := PriceToTick(price, pair[0], pair[1])
			if err != nil {
				t.Fatalf("price to tick %d (%d,%d): %v", tick, pair[0], pair[1], err)
			}
			if got != tick {
				t.Fatalf("round trip mismatch for (%d,%d): %d != %d", pair[0], pair[1], got, tick)
			}
		}
		for _, tick := range []int32{-500000, -1, 0, 1, 500000} {
			got, err := PriceToTick(TickToPrice(tick, pair[0], pair[1]), pair[0], pair[1])
			if err != nil || got != tick {
				t.Fatalf("edge round trip %d: got %d err %v", tick, got, err)
			}
		}
	}
}

func TestTickToPriceMonotonic(t *testing.T) {
	prev := TickToPrice(-200000, 18, 6)
	for tick := int32(-199990); tick <= 200000; tick += 10 {
		price := TickToPrice(tick, 18, 6)
		if !(price > prev) {
			t.Fatalf("price not increasing at tick %d: %v <= %v", tick, price, prev)
		}
		prev = price
	}
}

func TestTickToPriceKnownValues(t *testing.T) {
	if got := TickToPrice(0, 18, 18); got != 1 {
		t.Fatalf("tick 0 price: %v", got)
	}
	got := TickToPrice(0, 18, 6)
	if math.Abs(got-1e12)/1e12 > 1e-12 {
		t.Fatalf("decimal adjustment: %v", got)
	}
	got = TickToPrice(10000, 18, 18)
	if math.Abs(got-math.Pow(1.0001, 10000)) > 1e-9 {
		t.Fatalf("tick 10000 price: %v", got)
	}
}

func TestPriceToTickInvalid(t *testing.T) {
	for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := PriceToTick(price, 18, 18); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected invalid argument for %v, got %v", price, err)
		}
	}
}

func TestRoundTickToSpacing(t *testing.T) {
	cases := []struct {
		tick, spacing, want int32
	}{
		{149, 100, 100},
		{150, 100, 200},
		{151, 100, 200},
		{-149, 100, -100},
		{-150, 100, -100},
		{-151, 100, -200},
		{0, 60, 0},
		{887272, 200, 887200},
		{7, 0, 7},
	}
	for _, tc := range cases {
		if got := RoundTickToSpacing(tc.tick, tc.spacing); got != tc.want {
			t.Fatalf("round %d/%d: got %d want %d", tc.tick, tc.spacing, got, tc.want)
		}
	}
}

func TestRoundTickToSpacingCanLeaveTickRange(t *testing.T) {
	got := RoundTickToSpacing(MinTick, 60)
	if got != -887280 {
		t.Fatalf("round MinTick/60: got %d want -887280", got)
	}
	if _, err := GetSqrtRatioAtTick(got); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for %d, got %v", got, err)
	}
	if got := RoundTickToSpacing(MaxTick, 60); got != 887280 {
		t.Fatalf("round MaxTick/60: got %d want 887280", got)
	}
}
