package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockScout/internal/domain/models"
	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/service/cache"
	applogger "StockScout/pkg/logger"
)

// flushTimeout bounds the storage writes when the ingest context has already
// expired; staged records are flushed regardless.
const flushTimeout = 10 * time.Second

// RecommendationsCacheKey is invalidated after every ingestion pass.
const RecommendationsCacheKey = "recommendations"

// Ingestor pulls profile, quote, and fundamentals for each watchlist symbol,
// stages the mapped records, and persists them in three batch writes at the
// end of the pass. Symbols are walked sequentially; the three endpoint
// fetches per symbol run concurrently and share the client's global slot pool.
type Ingestor struct {
	source  drepo.MarketDataSource
	mapper  drepo.RecordMapper
	store   drepo.StockStore
	pub     drepo.QuotePublisher
	cache   cache.BytesCache
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewIngestor creates a new Ingestor. Publisher and cache may be nil.
func NewIngestor(
	source drepo.MarketDataSource,
	mapper drepo.RecordMapper,
	store drepo.StockStore,
	pub drepo.QuotePublisher,
	c cache.BytesCache,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *Ingestor {
	return &Ingestor{
		source:  source,
		mapper:  mapper,
		store:   store,
		pub:     pub,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// stage accumulates mapped records across symbols. One mutex guards all
// three slices plus the counters; contention is negligible at three
// goroutines per symbol.
type stage struct {
	mu           sync.Mutex
	companies    []models.CompanyProfile
	quotes       []models.QuoteSnapshot
	fundamentals []models.FundamentalsSnapshot
	successes    int
	failures     map[string]int
	errs         []string
}

// Run executes one ingestion pass over the given symbols. A per-endpoint
// fetch failure is recorded and skipped; it never aborts the pass. Partial
// failure is not an error: the report carries everything that went wrong.
func (in *Ingestor) Run(ctx context.Context, symbols []string) *models.IngestionReport {
	report := &models.IngestionReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Symbols:   len(symbols),
		Failures:  make(map[string]int),
	}

	st := &stage{failures: make(map[string]int)}

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			st.mu.Lock()
			st.errs = append(st.errs, fmt.Sprintf("ingest interrupted: %v", ctx.Err()))
			st.mu.Unlock()
			break
		}
		in.ingestSymbol(ctx, symbol, st)
		report.Requests += len(drepo.Endpoints)
	}

	st.mu.Lock()
	report.Successes = st.successes
	for k, v := range st.failures {
		report.Failures[k] = v
	}
	report.Errors = append(report.Errors, st.errs...)
	report.Staged = models.RecordCounts{
		Companies:    len(st.companies),
		Quotes:       len(st.quotes),
		Fundamentals: len(st.fundamentals),
	}
	companies, quotes, fundamentals := st.companies, st.quotes, st.fundamentals
	st.mu.Unlock()

	in.flush(ctx, report, companies, quotes, fundamentals)

	persistedAny := report.Persisted.Companies > 0 || report.Persisted.Quotes > 0 || report.Persisted.Fundamentals > 0
	if in.cache != nil && persistedAny {
		if err := in.cache.Delete(RecommendationsCacheKey); err != nil {
			in.warn("cache invalidation failed", applogger.Error(err))
		}
	}

	report.FinishedAt = time.Now().UTC()
	in.info("ingestion pass finished",
		applogger.String("run_id", report.RunID),
		applogger.Int("symbols", report.Symbols),
		applogger.Int("requests", report.Requests),
		applogger.Int("successes", report.Successes),
		applogger.Int("persisted_quotes", report.Persisted.Quotes),
		applogger.Int("errors", len(report.Errors)),
	)

	return report
}

// ingestSymbol fans the three endpoint fetches out concurrently and waits for
// all of them before moving to the next symbol.
func (in *Ingestor) ingestSymbol(ctx context.Context, symbol string, st *stage) {
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for _, ep := range drepo.Endpoints {
		wg.Add(1)
		go func(ep drepo.Endpoint) {
			defer wg.Done()
			in.fetchEndpoint(ctx, ep, symbol, now, st)
		}(ep)
	}
	wg.Wait()
}

func (in *Ingestor) fetchEndpoint(ctx context.Context, ep drepo.Endpoint, symbol string, now time.Time, st *stage) {
	start := time.Now()
	payload, err := in.source.Fetch(ctx, ep, symbol)
	in.recordLatency("fetch_"+string(ep), time.Since(start).Seconds())
	if err != nil {
		st.mu.Lock()
		st.failures[string(ep)]++
		st.errs = append(st.errs, fmt.Sprintf("%s %s: %v", symbol, ep, err))
		st.mu.Unlock()
		in.warn("endpoint fetch failed",
			applogger.String("symbol", symbol),
			applogger.String("endpoint", string(ep)),
			applogger.Error(err),
		)
		return
	}

	st.mu.Lock()
	st.successes++
	st.mu.Unlock()

	switch ep {
	case drepo.EndpointProfile:
		if rec, ok := in.mapper.Profile(symbol, payload, now); ok {
			st.mu.Lock()
			st.companies = append(st.companies, *rec)
			st.mu.Unlock()
		}
	case drepo.EndpointQuote:
		if rec, ok := in.mapper.Quote(symbol, payload, now); ok {
			st.mu.Lock()
			st.quotes = append(st.quotes, *rec)
			st.mu.Unlock()
		}
	case drepo.EndpointFundamentals:
		if rec, ok := in.mapper.Fundamentals(symbol, payload, now); ok {
			st.mu.Lock()
			st.fundamentals = append(st.fundamentals, *rec)
			st.mu.Unlock()
		}
	}
}

// flush persists the staged batches. When the pass context is already done
// the writes run under a short independent context so staged data is not lost
// to a deadline that only governed fetching.
func (in *Ingestor) flush(
	ctx context.Context,
	report *models.IngestionReport,
	companies []models.CompanyProfile,
	quotes []models.QuoteSnapshot,
	fundamentals []models.FundamentalsSnapshot,
) {
	wctx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
	}

	start := time.Now()

	if len(companies) > 0 {
		if err := in.store.UpsertCompanies(wctx, companies); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("persist companies: %v", err))
			in.recordError("persist_companies")
		} else {
			report.Persisted.Companies = len(companies)
			in.recordPersisted("companies", len(companies))
		}
	}

	if len(quotes) > 0 {
		if err := in.store.InsertQuotes(wctx, quotes); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("persist quotes: %v", err))
			in.recordError("persist_quotes")
		} else {
			report.Persisted.Quotes = len(quotes)
			in.recordPersisted("quotes", len(quotes))
			for _, q := range quotes {
				in.recordLastPrice(q.Symbol, q.Current)
			}
		}

		if in.pub != nil {
			if err := in.pub.PublishQuotes(wctx, quotes); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("publish quotes: %v", err))
				in.recordError("publish_quotes")
			}
		}
	}

	if len(fundamentals) > 0 {
		if err := in.store.UpsertFundamentals(wctx, fundamentals); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("persist fundamentals: %v", err))
			in.recordError("persist_fundamentals")
		} else {
			report.Persisted.Fundamentals = len(fundamentals)
			in.recordPersisted("fundamentals", len(fundamentals))
		}
	}

	in.recordLatency("flush", time.Since(start).Seconds())
}

func (in *Ingestor) recordPersisted(table string, rows int) {
	if in.metrics != nil {
		in.metrics.RecordPersisted(table, rows)
	}
}

func (in *Ingestor) recordLastPrice(symbol string, price float64) {
	if in.metrics != nil {
		in.metrics.RecordLastPrice(symbol, price)
	}
}

func (in *Ingestor) recordError(kind string) {
	if in.metrics != nil {
		in.metrics.RecordError(kind)
	}
}

func (in *Ingestor) recordLatency(op string, seconds float64) {
	if in.metrics != nil {
		in.metrics.RecordLatency(op, seconds)
	}
}

func (in *Ingestor) info(msg string, fields ...applogger.Field) {
	if in.logger != nil {
		in.logger.Info(msg, fields...)
	}
}

func (in *Ingestor) warn(msg string, fields ...applogger.Field) {
	if in.logger != nil {
		in.logger.Warn(msg, fields...)
	}
}
