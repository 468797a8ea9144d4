package repository

import (
	"context"
	"time"

	"StockScout/internal/domain/models"
)

// Endpoint identifies one upstream read endpoint.
type Endpoint string

const (
	EndpointProfile      Endpoint = "profile"
	EndpointQuote        Endpoint = "quote"
	EndpointFundamentals Endpoint = "fundamentals"
)

// Endpoints lists the per-symbol fan-out set in a stable order.
var Endpoints = []Endpoint{EndpointProfile, EndpointQuote, EndpointFundamentals}

// MarketDataSource fetches one endpoint for one symbol, honoring the global
// concurrency cap and retry policy. The payload is the raw provider JSON.
type MarketDataSource interface {
	Fetch(ctx context.Context, ep Endpoint, symbol string) ([]byte, error)
}

// RecordMapper converts raw payloads into normalized records. ok=false means
// "valid response, nothing usable yet", which is distinct from a fetch error.
type RecordMapper interface {
	Profile(symbol string, payload []byte, now time.Time) (*models.CompanyProfile, bool)
	Quote(symbol string, payload []byte, now time.Time) (*models.QuoteSnapshot, bool)
	Fundamentals(symbol string, payload []byte, now time.Time) (*models.FundamentalsSnapshot, bool)
}

// StockStore is the storage sink plus the analysis-path reads. The write path
// never reads; the read path never writes.
type StockStore interface {
	Init(ctx context.Context) error
	UpsertCompanies(ctx context.Context, rows []models.CompanyProfile) error
	InsertQuotes(ctx context.Context, rows []models.QuoteSnapshot) error
	UpsertFundamentals(ctx context.Context, rows []models.FundamentalsSnapshot) error
	Companies(ctx context.Context) ([]models.CompanyProfile, error)
	PriceHistory(ctx context.Context, symbol string, since time.Time) ([]float64, error)
	Fundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error)
	Health(ctx context.Context) error
	Close() error
}

// QuotePublisher fans ingested quote batches out to downstream consumers.
type QuotePublisher interface {
	PublishQuotes(ctx context.Context, rows []models.QuoteSnapshot) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordFetch(endpoint, outcome string)
	RecordPersisted(table string, rows int)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
