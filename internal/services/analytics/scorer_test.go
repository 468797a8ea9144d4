package analytics

import (
	"testing"

	"StockScout/internal/domain/models"
)

func company(symbol string) models.CompanyProfile {
	return models.CompanyProfile{Symbol: symbol, Name: symbol + " Inc"}
}

func TestScoreInsufficientHistory(t *testing.T) {
	for _, prices := range [][]float64{nil, {100}, {100, 101}} {
		res := Score(company("AAPL"), prices, nil)
		if res.Score != 0 {
			t.Fatalf("expected score 0, got %d", res.Score)
		}
		if res.Recommendation != models.Avoid {
			t.Fatalf("expected AVOID, got %s", res.Recommendation)
		}
		if len(res.Rationale) != 1 || res.Rationale[0] != "Not enough price history" {
			t.Fatalf("unexpected rationale %v", res.Rationale)
		}
		if len(res.Signals) != 0 || len(res.Metrics) != 0 {
			t.Fatalf("expected empty signals/metrics")
		}
	}
}

func TestScoreAlwaysBounded(t *testing.T) {
	cases := [][]float64{
		{100, 102, 101, 105, 108, 107, 110, 109, 112, 115, 113, 117, 120, 119, 121},
		{200, 190, 180, 170, 160, 150, 140, 130, 120, 110, 100, 90, 80, 70, 60},
		{50, 50, 50},
		{1, 1000, 1, 1000, 1, 1000, 1},
	}
	bags := []*models.FundamentalsSnapshot{
		nil,
		{Metrics: map[string]float64{"peBasicExclExtraTTM": 8, "52WeekHigh": 250, "52WeekLow": 40}},
		{Metrics: map[string]float64{"peBasicExclExtraTTM": 95, "52WeekHigh": 120, "52WeekLow": 30}},
	}
	for _, prices := range cases {
		for _, bag := range bags {
			res := Score(company("X"), prices, bag)
			if res.Score < 0 || res.Score > 100 {
				t.Fatalf("score out of bounds: %d for %v", res.Score, prices)
			}
		}
	}
}

func TestScoreUptrendScenario(t *testing.T) {
	prices := []float64{100, 102, 101, 105, 108, 107, 110, 109, 112, 115, 113, 117, 120, 119, 121}
	res := Score(company("AAPL"), prices, &models.FundamentalsSnapshot{
		Metrics: map[string]float64{"peBasicExclExtraTTM": 12, "52WeekHigh": 130, "52WeekLow": 90},
	})

	if res.CurrentPrice != 121 {
		t.Fatalf("unexpected current price %v", res.CurrentPrice)
	}
	if res.Metrics["rsi"] <= 50 {
		t.Fatalf("expected rsi metric > 50, got %v", res.Metrics["rsi"])
	}
	if res.Metrics["momentum"] <= 0 {
		t.Fatalf("expected positive momentum metric, got %v", res.Metrics["momentum"])
	}
	if res.Signals["pe"] != "Undervalued P/E" {
		t.Fatalf("expected undervalued P/E signal, got %q", res.Signals["pe"])
	}
	if res.Metrics["pe_ratio"] != 12 {
		t.Fatalf("expected pe_ratio metric, got %v", res.Metrics["pe_ratio"])
	}
}

func TestScorePEUnavailableOmitsMetric(t *testing.T) {
	prices := []float64{100, 101, 100, 102, 101, 103}
	res := Score(company("ZZZ"), prices, nil)
	if _, ok := res.Metrics["pe_ratio"]; ok {
		t.Fatalf("pe_ratio should be absent when unavailable")
	}
	if res.Signals["pe"] != "P/E unavailable" {
		t.Fatalf("expected unavailable signal, got %q", res.Signals["pe"])
	}
}

func TestTierMapping(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Recommendation
	}{
		{80, models.StrongBuy},
		{75, models.StrongBuy},
		{70, models.Buy},
		{60, models.Buy},
		{50, models.Hold},
		{45, models.Hold},
		{35, models.Caution},
		{30, models.Caution},
		{20, models.Avoid},
		{0, models.Avoid},
	}
	for _, c := range cases {
		got, _ := tierForScore(c.score)
		if got != c.want {
			t.Fatalf("score %v: expected %s, got %s", c.score, c.want, got)
		}
	}
}

func TestScoreOversoldDipFavored(t *testing.T) {
	// steep decline: downtrend momentum, but deeply oversold RSI and below MA
	prices := []float64{150, 148, 146, 144, 142, 140, 138, 136, 134, 132, 130, 128, 126, 124, 100}
	res := Score(company("DIP"), prices, &models.FundamentalsSnapshot{
		Metrics: map[string]float64{"52WeekHigh": 160, "52WeekLow": 95},
	})
	if res.Signals["rsi"] != "OVERSOLD - Strong Buy" {
		t.Fatalf("expected oversold signal, got %q", res.Signals["rsi"])
	}
	if res.Signals["price_ma"] != "Below MA - Dip opportunity" {
		t.Fatalf("expected dip signal, got %q", res.Signals["price_ma"])
	}
	if res.Signals["52w"] != "Near 52w low - opportunity" {
		t.Fatalf("expected 52w low signal, got %q", res.Signals["52w"])
	}
}
