package models

import "time"

// CompanyProfile is the normalized company record, upserted keyed by symbol.
type CompanyProfile struct {
	Symbol    string
	Name      string
	Exchange  string
	Industry  string
	MarketCap float64
	Country   string
	IPODate   string
	Website   string
	LogoURL   string
	UpdatedAt time.Time
	CreatedAt time.Time
}

// QuoteSnapshot is one immutable price observation. Rows are append-only;
// history accumulates keyed by (symbol, observed_at).
type QuoteSnapshot struct {
	Symbol     string
	Current    float64
	High       float64
	Low        float64
	Open       float64
	PrevClose  float64
	ChangeAbs  float64
	ChangePct  float64
	ObservedAt time.Time
	CreatedAt  time.Time
}

// FundamentalsSnapshot carries the provider-defined metric bag for a symbol.
// Only numeric metrics are retained; the bag may be partially populated.
type FundamentalsSnapshot struct {
	Symbol    string
	Metrics   map[string]float64
	UpdatedAt time.Time
}
