package analytics

import "testing"

func TestPERatioPrefersTTM(t *testing.T) {
	m := map[string]float64{"peBasicExclExtraTTM": 12.5, "peNormalizedAnnual": 20}
	if got := PERatio(m); got != 12.5 {
		t.Fatalf("expected TTM value, got %v", got)
	}
}

func TestPERatioFallsBack(t *testing.T) {
	if got := PERatio(map[string]float64{"peNormalizedAnnual": 20}); got != 20 {
		t.Fatalf("expected fallback, got %v", got)
	}
	// explicit zero falls through like a missing value
	if got := PERatio(map[string]float64{"peBasicExclExtraTTM": 0, "peNormalizedAnnual": 18}); got != 18 {
		t.Fatalf("expected fallback past zero, got %v", got)
	}
	if got := PERatio(nil); got != 0 {
		t.Fatalf("expected 0 on nil bag, got %v", got)
	}
}

func TestEPSFallback(t *testing.T) {
	if got := EPS(map[string]float64{"epsTTM": 6.1}); got != 6.1 {
		t.Fatalf("expected epsTTM fallback, got %v", got)
	}
	if got := EPS(map[string]float64{"epsExclExtraItemsTTM": 5.9, "epsTTM": 6.1}); got != 5.9 {
		t.Fatalf("expected preferred key, got %v", got)
	}
}

func TestFiftyTwoWeekRangeDefaults(t *testing.T) {
	high, low := FiftyTwoWeekRange(map[string]float64{"52WeekHigh": 200, "52WeekLow": 120})
	if high != 200 || low != 120 {
		t.Fatalf("unexpected range %v/%v", high, low)
	}
	high, low = FiftyTwoWeekRange(nil)
	if high != 0 || low != 0 {
		t.Fatalf("expected zero defaults, got %v/%v", high, low)
	}
}
