package config

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestEstimateCost_EmptyContentFlash(t *testing.T) {
	got := EstimateCost(0, "gemini-1.5-flash")
	if !approxEqual(got, 0.00015) {
		t.Fatalf("EstimateCost(0, flash) = %g, want 0.00015", got)
	}
}

func TestEstimateCost_Pro(t *testing.T) {
	got := EstimateCost(4000, "gemini-1.5-pro")
	if !approxEqual(got, 0.007) {
		t.Fatalf("EstimateCost(4000, pro) = %g, want 0.007", got)
	}
}

func TestEstimateCost_UnknownModelUsesFallbackRate(t *testing.T) {
	for _, n := range []int{0, 3, 4000, 1_000_000} {
		got := EstimateCost(n, "unknown-model")
		want := float64(n/4+1000) / 1000.0 * 0.001
		if !approxEqual(got, want) {
			t.Errorf("EstimateCost(%d, unknown) = %g, want %g", n, got, want)
		}
	}

	if _, known := PricePerKTokens("unknown-model"); known {
		t.Error("PricePerKTokens(unknown) reported known=true")
	}
}

func TestEstimateCost_NonDecreasing(t *testing.T) {
	for _, m := range KnownModels() {
		prev := EstimateCost(0, m.Model)
		for n := 1; n <= 20_000; n += 7 {
			cur := EstimateCost(n, m.Model)
			if cur < prev {
				t.Fatalf("%s: EstimateCost(%d) = %g < previous %g", m.Model, n, cur, prev)
			}
			prev = cur
		}
	}
}

func TestEstimateTokens_IntegerDivision(t *testing.T) {
	if got := EstimateTokens(7); got != 1001 {
		t.Fatalf("EstimateTokens(7) = %d, want 1001", got)
	}
	if got := EstimateTokens(-10); got != 1000 {
		t.Fatalf("EstimateTokens(-10) = %d, want 1000", got)
	}
}

func TestKnownModels_MatchPriceLookup(t *testing.T) {
	for _, m := range KnownModels() {
		price, known := PricePerKTokens(m.Model)
		if !known {
			t.Errorf("%s: not known to PricePerKTokens", m.Model)
		}
		if price != m.PricePerKToken {
			t.Errorf("%s: table price %g != lookup %g", m.Model, m.PricePerKToken, price)
		}
	}

	models := KnownModels()
	models[0].PricePerKToken = 42
	if KnownModels()[0].PricePerKToken == 42 {
		t.Fatal("KnownModels returned shared backing storage")
	}
}
