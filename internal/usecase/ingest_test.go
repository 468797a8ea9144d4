package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"StockScout/internal/domain/models"
	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/service/finnhub"
)

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string][]byte
	errs     map[string]error
	calls    int
}

func sourceKey(ep drepo.Endpoint, symbol string) string {
	return string(ep) + "/" + symbol
}

func (f *fakeSource) Fetch(_ context.Context, ep drepo.Endpoint, symbol string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := sourceKey(ep, symbol)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if p, ok := f.payloads[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no payload for %s", key)
}

type fakeStore struct {
	mu           sync.Mutex
	companies    []models.CompanyProfile
	quotes       []models.QuoteSnapshot
	fundamentals []models.FundamentalsSnapshot
	quotesErr    error
	// honorCtx makes writes fail on an expired context, like a real driver.
	honorCtx bool

	prices map[string][]float64
	funds  map[string]*models.FundamentalsSnapshot
}

func (f *fakeStore) Init(context.Context) error { return nil }

func (f *fakeStore) UpsertCompanies(ctx context.Context, rows []models.CompanyProfile) error {
	if f.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companies = append(f.companies, rows...)
	return nil
}

func (f *fakeStore) InsertQuotes(ctx context.Context, rows []models.QuoteSnapshot) error {
	if f.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quotesErr != nil {
		return f.quotesErr
	}
	f.quotes = append(f.quotes, rows...)
	return nil
}

func (f *fakeStore) UpsertFundamentals(ctx context.Context, rows []models.FundamentalsSnapshot) error {
	if f.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fundamentals = append(f.fundamentals, rows...)
	return nil
}

func (f *fakeStore) Companies(context.Context) ([]models.CompanyProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CompanyProfile(nil), f.companies...), nil
}

func (f *fakeStore) PriceHistory(_ context.Context, symbol string, _ time.Time) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prices[symbol], nil
}

func (f *fakeStore) Fundamentals(_ context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.funds[symbol], nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

// cancellingSource cancels the pass after each fetch it serves, simulating a
// caller deadline expiring while records are already staged.
type cancellingSource struct {
	inner  *fakeSource
	cancel context.CancelFunc
}

func (c *cancellingSource) Fetch(ctx context.Context, ep drepo.Endpoint, symbol string) ([]byte, error) {
	defer c.cancel()
	return c.inner.Fetch(ctx, ep, symbol)
}

func healthySource(symbols ...string) *fakeSource {
	src := &fakeSource{payloads: map[string][]byte{}, errs: map[string]error{}}
	for _, s := range symbols {
		src.payloads[sourceKey(drepo.EndpointProfile, s)] = []byte(`{"name":"` + s + ` Inc","exchange":"NASDAQ","finnhubIndustry":"Technology","marketCapitalization":1000}`)
		src.payloads[sourceKey(drepo.EndpointQuote, s)] = []byte(`{"c":190.5,"h":192,"l":188,"o":189,"pc":187,"d":3.5,"dp":1.87,"t":1700000000}`)
		src.payloads[sourceKey(drepo.EndpointFundamentals, s)] = []byte(`{"metric":{"peBasicExclExtraTTM":28.4}}`)
	}
	return src
}

func TestIngestRunStagesAndPersists(t *testing.T) {
	src := healthySource("AAPL", "MSFT")
	store := &fakeStore{}
	ing := NewIngestor(src, finnhub.Mapper{}, store, nil, nil, nil, nil)

	report := ing.Run(context.Background(), []string{"AAPL", "MSFT"})
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.Requests != 6 {
		t.Fatalf("expected 6 requests, got %d", report.Requests)
	}
	if report.Successes != 6 {
		t.Fatalf("expected 6 successes, got %d", report.Successes)
	}
	want := models.RecordCounts{Companies: 2, Quotes: 2, Fundamentals: 2}
	if report.Staged != want {
		t.Fatalf("unexpected staged counts: %+v", report.Staged)
	}
	if report.Persisted != want {
		t.Fatalf("unexpected persisted counts: %+v", report.Persisted)
	}
	if len(store.quotes) != 2 {
		t.Fatalf("expected 2 quotes in store, got %d", len(store.quotes))
	}
	if report.RunID == "" {
		t.Fatalf("expected run id")
	}
}

func TestIngestIsolatesEndpointFailure(t *testing.T) {
	src := healthySource("ZZZ")
	src.errs[sourceKey(drepo.EndpointProfile, "ZZZ")] = &finnhub.RateLimitedError{Attempts: 3}
	store := &fakeStore{}
	ing := NewIngestor(src, finnhub.Mapper{}, store, nil, nil, nil, nil)

	report := ing.Run(context.Background(), []string{"ZZZ"})
	if len(report.Errors) == 0 {
		t.Fatalf("expected reported errors for failed endpoint")
	}
	if report.Failures["profile"] != 1 {
		t.Fatalf("expected one profile failure, got %+v", report.Failures)
	}
	if report.Staged.Quotes != 1 || report.Staged.Fundamentals != 1 {
		t.Fatalf("quote and fundamentals should survive profile failure: %+v", report.Staged)
	}
	if report.Staged.Companies != 0 {
		t.Fatalf("no company should be staged: %+v", report.Staged)
	}
	if len(store.quotes) != 1 {
		t.Fatalf("expected quote persisted despite profile failure, got %d", len(store.quotes))
	}
}

func TestIngestFlushesStagedRecordsAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancellingSource{inner: healthySource("AAPL", "MSFT"), cancel: cancel}
	store := &fakeStore{honorCtx: true}
	ing := NewIngestor(src, finnhub.Mapper{}, store, nil, nil, nil, nil)

	report := ing.Run(ctx, []string{"AAPL", "MSFT"})

	if report.Requests != 3 {
		t.Fatalf("expected the pass to stop after the first symbol, got %d requests", report.Requests)
	}
	want := models.RecordCounts{Companies: 1, Quotes: 1, Fundamentals: 1}
	if report.Staged != want {
		t.Fatalf("unexpected staged counts: %+v", report.Staged)
	}
	if report.Persisted != want {
		t.Fatalf("staged records must flush despite the cancelled context: %+v", report.Persisted)
	}
	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote in store, got %d", len(store.quotes))
	}
	interrupted := false
	for _, e := range report.Errors {
		if strings.Contains(e, "ingest interrupted") {
			interrupted = true
		}
	}
	if !interrupted {
		t.Fatalf("expected an interrupted error in the report, got %v", report.Errors)
	}
}

func TestIngestSurfacesWriteFailure(t *testing.T) {
	src := healthySource("AAPL")
	store := &fakeStore{quotesErr: fmt.Errorf("connection refused")}
	ing := NewIngestor(src, finnhub.Mapper{}, store, nil, nil, nil, nil)

	report := ing.Run(context.Background(), []string{"AAPL"})
	if len(report.Errors) == 0 {
		t.Fatalf("expected reported errors for failed write")
	}
	if report.Staged.Quotes != 1 {
		t.Fatalf("expected one staged quote, got %d", report.Staged.Quotes)
	}
	if report.Persisted.Quotes != 0 {
		t.Fatalf("failed write must not count as persisted, got %d", report.Persisted.Quotes)
	}
	if report.Persisted.Companies != 1 || report.Persisted.Fundamentals != 1 {
		t.Fatalf("other batches should still persist: %+v", report.Persisted)
	}
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, "persist quotes") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a persist quotes error, got %v", report.Errors)
	}
}
