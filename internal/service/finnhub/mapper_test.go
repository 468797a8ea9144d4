package finnhub

import (
	"testing"
	"time"
)

var now = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func TestProfileMapped(t *testing.T) {
	payload := []byte(`{"name":"Apple Inc","exchange":"NASDAQ","finnhubIndustry":"Technology","marketCapitalization":2800000,"country":"US","ipo":"1980-12-12","weburl":"https://apple.com","logo":"https://logo"}`)
	m := NewMapper()
	p, ok := m.Profile("AAPL", payload, now)
	if !ok {
		t.Fatalf("expected record")
	}
	if p.Symbol != "AAPL" || p.Name != "Apple Inc" || p.Industry != "Technology" {
		t.Fatalf("unexpected record %+v", p)
	}
	if !p.UpdatedAt.Equal(now) {
		t.Fatalf("expected processing timestamp")
	}
}

func TestProfileMissingNameIsNoRecord(t *testing.T) {
	m := NewMapper()
	if _, ok := m.Profile("AAPL", []byte(`{"country":"US"}`), now); ok {
		t.Fatalf("expected no record without name")
	}
	if _, ok := m.Profile("AAPL", []byte(`not json`), now); ok {
		t.Fatalf("expected no record on bad payload")
	}
}

func TestQuoteUsesProviderTimestamp(t *testing.T) {
	m := NewMapper()
	q, ok := m.Quote("AAPL", []byte(`{"c":190.5,"h":192,"l":189,"o":191,"pc":188,"d":2.5,"dp":1.33,"t":1717329600}`), now)
	if !ok {
		t.Fatalf("expected record")
	}
	if q.Current != 190.5 {
		t.Fatalf("unexpected price %v", q.Current)
	}
	if q.ObservedAt.Unix() != 1717329600 {
		t.Fatalf("expected provider timestamp, got %v", q.ObservedAt)
	}
	if !q.CreatedAt.Equal(now) {
		t.Fatalf("expected processing timestamp on created_at")
	}
}

func TestQuoteFallsBackToProcessingTime(t *testing.T) {
	m := NewMapper()
	q, ok := m.Quote("AAPL", []byte(`{"c":190.5}`), now)
	if !ok {
		t.Fatalf("expected record")
	}
	if !q.ObservedAt.Equal(now) {
		t.Fatalf("expected processing time fallback, got %v", q.ObservedAt)
	}
}

func TestQuoteMissingPriceIsNoRecord(t *testing.T) {
	m := NewMapper()
	if _, ok := m.Quote("AAPL", []byte(`{"h":192}`), now); ok {
		t.Fatalf("expected no record without current price")
	}
}

func TestQuoteZeroPriceIsStillARecord(t *testing.T) {
	// c present but zero is a valid (if odd) observation, unlike c absent.
	m := NewMapper()
	if _, ok := m.Quote("AAPL", []byte(`{"c":0}`), now); !ok {
		t.Fatalf("expected record for explicit zero price")
	}
}

func TestFundamentalsKeepsNumericMetricsOnly(t *testing.T) {
	m := NewMapper()
	f, ok := m.Fundamentals("AAPL", []byte(`{"metric":{"peBasicExclExtraTTM":28.3,"52WeekHigh":199.6,"name":"not-a-number"},"metricType":"all"}`), now)
	if !ok {
		t.Fatalf("expected record")
	}
	if f.Metrics["peBasicExclExtraTTM"] != 28.3 {
		t.Fatalf("unexpected metrics %v", f.Metrics)
	}
	if _, present := f.Metrics["name"]; present {
		t.Fatalf("string metric should be dropped")
	}
}

func TestFundamentalsMissingBagIsNoRecord(t *testing.T) {
	m := NewMapper()
	if _, ok := m.Fundamentals("AAPL", []byte(`{"metricType":"all"}`), now); ok {
		t.Fatalf("expected no record without metric bag")
	}
}
