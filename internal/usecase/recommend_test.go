package usecase

import (
	"context"
	"testing"
	"time"

	"StockScout/internal/domain/models"
	"StockScout/internal/service/cache"
)

// oversoldDip builds a gentle 2% decline: RSI pins at 0 (+15), volatility is
// flat (+5), momentum and MA stay inside their neutral bands.
func oversoldDip() []float64 {
	prices := make([]float64, 0, 21)
	p := 102.0
	prices = append(prices, p)
	for i := 0; i < 20; i++ {
		p *= 0.999
		prices = append(prices, p)
	}
	return prices
}

func analysisStore() *fakeStore {
	return &fakeStore{
		companies: []models.CompanyProfile{
			{Symbol: "DIP", Name: "Dip Corp"},
			{Symbol: "THIN", Name: "Thin Corp"},
		},
		prices: map[string][]float64{
			"DIP":  oversoldDip(),
			"THIN": {10, 11},
		},
		funds: map[string]*models.FundamentalsSnapshot{
			"DIP": {Symbol: "DIP", Metrics: map[string]float64{
				"peBasicExclExtraTTM": 10,
				"52WeekHigh":          200,
				"52WeekLow":           60,
			}},
		},
	}
}

func TestRecommendationsSortedByScore(t *testing.T) {
	rec := NewRecommender(analysisStore(), nil, 0, 90, nil, nil, nil)

	results, err := rec.Recommendations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Symbol != "DIP" {
		t.Fatalf("expected DIP ranked first, got %s", results[0].Symbol)
	}
	if results[0].Score != 88 {
		t.Fatalf("unexpected DIP score %d", results[0].Score)
	}
	if results[1].Score != 0 {
		t.Fatalf("expected THIN score 0, got %d", results[1].Score)
	}
	if len(results[1].Rationale) != 1 || results[1].Rationale[0] != "Not enough price history" {
		t.Fatalf("unexpected THIN rationale %v", results[1].Rationale)
	}
}

func TestRecommendationsServedFromCache(t *testing.T) {
	store := analysisStore()
	rec := NewRecommender(store, cache.NewTTLCache(), time.Minute, 90, nil, nil, nil)

	first, err := rec.Recommendations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Empty the store; a cache hit must not notice.
	store.mu.Lock()
	store.companies = nil
	store.mu.Unlock()

	second, err := rec.Recommendations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected cached results, got %d vs %d", len(second), len(first))
	}
}

func TestPortfolioRejectsNonPositiveBudget(t *testing.T) {
	rec := NewRecommender(analysisStore(), nil, 0, 90, nil, nil, nil)

	if _, err := rec.Portfolio(context.Background(), 0); err == nil {
		t.Fatalf("expected error for zero budget")
	}
	if _, err := rec.Portfolio(context.Background(), -100); err == nil {
		t.Fatalf("expected error for negative budget")
	}
}

func TestPortfolioAllocatesWholeShares(t *testing.T) {
	store := analysisStore()
	rec := NewRecommender(store, nil, 0, 90, nil, nil, nil)

	suggestion, err := rec.Portfolio(context.Background(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suggestion == nil {
		t.Fatalf("expected a suggestion")
	}
	if len(suggestion.Allocations) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(suggestion.Allocations))
	}

	dip := oversoldDip()
	price := dip[len(dip)-1]
	a := suggestion.Allocations[0]
	if a.Symbol != "DIP" {
		t.Fatalf("expected DIP, got %s", a.Symbol)
	}
	if want := int(10000 / price); a.Shares != want {
		t.Fatalf("expected %d shares, got %d", want, a.Shares)
	}
	if a.Cost != float64(a.Shares)*price {
		t.Fatalf("cost mismatch: %v", a.Cost)
	}
	if suggestion.TotalCost != a.Cost {
		t.Fatalf("total cost mismatch: %v vs %v", suggestion.TotalCost, a.Cost)
	}
	if suggestion.RemainingCash != 10000-a.Cost {
		t.Fatalf("remaining cash mismatch: %v", suggestion.RemainingCash)
	}
	if suggestion.TotalCost > 10000 {
		t.Fatalf("portfolio overspends budget: %v", suggestion.TotalCost)
	}
}

func TestRecommendationsWatchlistFallback(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecommender(store, nil, 0, 90, []string{"AAPL", "MSFT"}, nil, nil)

	results, err := rec.Recommendations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected fallback results for the watchlist, got %d", len(results))
	}
	for _, r := range results {
		if r.Score != 0 || r.Recommendation != models.Avoid {
			t.Fatalf("expected insufficient-data result for %s, got %+v", r.Symbol, r)
		}
	}
}

func TestPortfolioNoQualifiers(t *testing.T) {
	store := &fakeStore{
		companies: []models.CompanyProfile{{Symbol: "THIN", Name: "Thin Corp"}},
		prices:    map[string][]float64{"THIN": {10, 11}},
	}
	rec := NewRecommender(store, nil, 0, 90, nil, nil, nil)

	suggestion, err := rec.Portfolio(context.Background(), 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suggestion != nil {
		t.Fatalf("expected nil suggestion, got %+v", suggestion)
	}
}
