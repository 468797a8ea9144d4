package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StockScout/internal/domain/models"
	"StockScout/internal/domain/repository"
)

// Chunk size tuned to 2000 rows per batch.
const chunkSize = 2000

var schemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS stockscout`,
	`CREATE TABLE IF NOT EXISTS stockscout.companies (
		symbol     String,
		name       String,
		exchange   String,
		industry   String,
		market_cap Float64,
		country    String,
		ipo_date   String,
		website    String,
		logo_url   String,
		updated_at DateTime,
		created_at DateTime
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY symbol`,
	`CREATE TABLE IF NOT EXISTS stockscout.quotes (
		symbol      String,
		current     Float64,
		high        Float64,
		low         Float64,
		open        Float64,
		prev_close  Float64,
		change_abs  Float64,
		change_pct  Float64,
		observed_at DateTime,
		created_at  DateTime
	) ENGINE = MergeTree
	ORDER BY (symbol, observed_at)`,
	`CREATE TABLE IF NOT EXISTS stockscout.fundamentals (
		symbol     String,
		metrics    String,
		updated_at DateTime
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY symbol`,
}

// ClickHouseStockStore implements StockStore on ClickHouse.
//
// Companies and fundamentals are keyed by symbol in ReplacingMergeTree tables,
// so an upsert is a plain insert and reads go through FINAL. Quotes are
// append-only history.
type ClickHouseStockStore struct {
	db *sql.DB
}

// NewClickHouseStockStore creates ClickHouse-backed stock storage.
func NewClickHouseStockStore(db *sql.DB) repository.StockStore {
	return &ClickHouseStockStore{db: db}
}

func (s *ClickHouseStockStore) Init(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStockStore) UpsertCompanies(ctx context.Context, rows []models.CompanyProfile) error {
	if len(rows) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, r := range rows[start:end] {
			if r.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Symbol,
				r.Name,
				r.Exchange,
				r.Industry,
				r.MarketCap,
				r.Country,
				r.IPODate,
				r.Website,
				r.LogoURL,
				r.UpdatedAt,
				r.CreatedAt,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO stockscout.companies (symbol, name, exchange, industry, market_cap, country, ipo_date, website, logo_url, updated_at, created_at) VALUES %s", strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert companies: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStockStore) InsertQuotes(ctx context.Context, rows []models.QuoteSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, r := range rows[start:end] {
			if r.Symbol == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.Symbol,
				r.Current,
				r.High,
				r.Low,
				r.Open,
				r.PrevClose,
				r.ChangeAbs,
				r.ChangePct,
				r.ObservedAt,
				r.CreatedAt,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO stockscout.quotes (symbol, current, high, low, open, prev_close, change_abs, change_pct, observed_at, created_at) VALUES %s", strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert quotes: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStockStore) UpsertFundamentals(ctx context.Context, rows []models.FundamentalsSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*3)
		for _, r := range rows[start:end] {
			if r.Symbol == "" {
				continue
			}
			metrics, err := json.Marshal(r.Metrics)
			if err != nil {
				return fmt.Errorf("marshal metrics for %s: %w", r.Symbol, err)
			}
			values = append(values, "(?, ?, ?)")
			args = append(args, r.Symbol, string(metrics), r.UpdatedAt)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO stockscout.fundamentals (symbol, metrics, updated_at) VALUES %s", strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("upsert fundamentals: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStockStore) Companies(ctx context.Context) ([]models.CompanyProfile, error) {
	q := `SELECT symbol, name, exchange, industry, market_cap, country, ipo_date, website, logo_url, updated_at, created_at
		FROM stockscout.companies FINAL ORDER BY symbol`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []models.CompanyProfile
	for rows.Next() {
		var c models.CompanyProfile
		if err := rows.Scan(&c.Symbol, &c.Name, &c.Exchange, &c.Industry, &c.MarketCap,
			&c.Country, &c.IPODate, &c.Website, &c.LogoURL, &c.UpdatedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PriceHistory returns closing prices for a symbol since the cutoff, oldest first.
func (s *ClickHouseStockStore) PriceHistory(ctx context.Context, symbol string, since time.Time) ([]float64, error) {
	q := `SELECT current FROM stockscout.quotes WHERE symbol = ? AND observed_at >= ? ORDER BY observed_at ASC`
	rows, err := s.db.QueryContext(ctx, q, symbol, since)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

func (s *ClickHouseStockStore) Fundamentals(ctx context.Context, symbol string) (*models.FundamentalsSnapshot, error) {
	q := `SELECT symbol, metrics, updated_at FROM stockscout.fundamentals FINAL WHERE symbol = ?`
	row := s.db.QueryRowContext(ctx, q, symbol)

	var f models.FundamentalsSnapshot
	var metrics string
	if err := row.Scan(&f.Symbol, &metrics, &f.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("query fundamentals: %w", err)
	}
	if metrics != "" {
		if err := json.Unmarshal([]byte(metrics), &f.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics for %s: %w", symbol, err)
		}
	}
	return &f, nil
}

func (s *ClickHouseStockStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStockStore) Close() error {
	return nil // Connection pool managed by pkg
}
