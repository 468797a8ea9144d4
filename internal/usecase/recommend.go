package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"StockScout/internal/domain/models"
	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/service/cache"
	"StockScout/internal/services/analytics"
	applogger "StockScout/pkg/logger"
)

// Recommender ranks the watchlist by score. Results are cached as JSON for
// the configured TTL; every ingestion pass invalidates the cache.
type Recommender struct {
	store     drepo.StockStore
	cache     cache.BytesCache
	ttl       time.Duration
	lookback  time.Duration
	watchlist []string
	metrics   drepo.Metrics
	logger    *applogger.Logger
}

// NewRecommender creates a Recommender. Cache may be nil. The watchlist is
// the fallback universe when storage has no companies yet.
func NewRecommender(
	store drepo.StockStore,
	c cache.BytesCache,
	ttl time.Duration,
	lookbackDays int,
	watchlist []string,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *Recommender {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	return &Recommender{
		store:     store,
		cache:     c,
		ttl:       ttl,
		lookback:  time.Duration(lookbackDays) * 24 * time.Hour,
		watchlist: watchlist,
		metrics:   metrics,
		logger:    logger,
	}
}

// Recommendations scores every company in storage and returns the results
// sorted by score descending, symbol ascending on ties.
func (r *Recommender) Recommendations(ctx context.Context) ([]models.ScoreResult, error) {
	if r.cache != nil {
		if b, ok, err := r.cache.GetBytes(RecommendationsCacheKey); err == nil && ok {
			var cached []models.ScoreResult
			if jerr := json.Unmarshal(b, &cached); jerr == nil {
				return cached, nil
			}
		}
	}

	start := time.Now()
	companies, err := r.store.Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	if len(companies) == 0 {
		// Nothing ingested yet: fall back to the configured watchlist so the
		// endpoint answers (with insufficient-data results) instead of 404ing.
		for _, s := range r.watchlist {
			companies = append(companies, models.CompanyProfile{Symbol: s, Name: s})
		}
	}

	since := time.Now().UTC().Add(-r.lookback)
	results := make([]models.ScoreResult, 0, len(companies))
	for _, company := range companies {
		prices, err := r.store.PriceHistory(ctx, company.Symbol, since)
		if err != nil {
			return nil, fmt.Errorf("price history for %s: %w", company.Symbol, err)
		}
		fundamentals, err := r.store.Fundamentals(ctx, company.Symbol)
		if err != nil {
			return nil, fmt.Errorf("fundamentals for %s: %w", company.Symbol, err)
		}
		results = append(results, analytics.Score(company, prices, fundamentals))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Symbol < results[j].Symbol
	})

	if r.metrics != nil {
		r.metrics.RecordLatency("recommendations", time.Since(start).Seconds())
	}
	if r.logger != nil {
		r.logger.Debug("scored watchlist",
			applogger.Int("companies", len(companies)),
			applogger.Duration("took_ms", time.Since(start)),
		)
	}

	if r.cache != nil {
		if b, jerr := json.Marshal(results); jerr == nil {
			_ = r.cache.SetBytes(RecommendationsCacheKey, b, r.ttl)
		}
	}
	return results, nil
}

// Portfolio turns the current ranking into a whole-share buy plan for the
// given budget.
func (r *Recommender) Portfolio(ctx context.Context, budget float64) (*models.PortfolioSuggestion, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("budget must be positive, got %v", budget)
	}

	ranked, err := r.Recommendations(ctx)
	if err != nil {
		return nil, err
	}

	allocations := analytics.SuggestPortfolio(ranked, budget)
	if allocations == nil {
		return nil, nil
	}

	var total float64
	for _, a := range allocations {
		total += a.Cost
	}
	return &models.PortfolioSuggestion{
		Budget:        budget,
		Allocations:   allocations,
		TotalCost:     total,
		RemainingCash: budget - total,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}
