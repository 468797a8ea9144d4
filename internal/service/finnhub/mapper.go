package finnhub

import (
	"encoding/json"
	"time"

	"StockScout/internal/domain/models"
	drepo "StockScout/internal/domain/repository"
)

// Mapper converts raw Finnhub payloads into normalized records. All methods
// are pure: an unusable payload yields (nil, false), never an error, so the
// caller can tell "nothing here yet" apart from a failed fetch.
type Mapper struct{}

func NewMapper() Mapper { return Mapper{} }

type profilePayload struct {
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	Industry  string  `json:"finnhubIndustry"`
	MarketCap float64 `json:"marketCapitalization"`
	Country   string  `json:"country"`
	IPO       string  `json:"ipo"`
	WebURL    string  `json:"weburl"`
	Logo      string  `json:"logo"`
}

// Profile requires a company name as discriminant.
func (Mapper) Profile(symbol string, payload []byte, now time.Time) (*models.CompanyProfile, bool) {
	var p profilePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Name == "" {
		return nil, false
	}
	return &models.CompanyProfile{
		Symbol:    symbol,
		Name:      p.Name,
		Exchange:  p.Exchange,
		Industry:  p.Industry,
		MarketCap: p.MarketCap,
		Country:   p.Country,
		IPODate:   p.IPO,
		Website:   p.WebURL,
		LogoURL:   p.Logo,
		UpdatedAt: now,
		CreatedAt: now,
	}, true
}

type quotePayload struct {
	Current   *float64 `json:"c"`
	High      float64  `json:"h"`
	Low       float64  `json:"l"`
	Open      float64  `json:"o"`
	PrevClose float64  `json:"pc"`
	Change    float64  `json:"d"`
	ChangePct float64  `json:"dp"`
	Timestamp int64    `json:"t"`
}

// Quote requires a current price as discriminant. ObservedAt is the provider
// observation time when present, else the processing time.
func (Mapper) Quote(symbol string, payload []byte, now time.Time) (*models.QuoteSnapshot, bool) {
	var q quotePayload
	if err := json.Unmarshal(payload, &q); err != nil || q.Current == nil {
		return nil, false
	}
	observed := now
	if q.Timestamp > 0 {
		observed = time.Unix(q.Timestamp, 0).UTC()
	}
	return &models.QuoteSnapshot{
		Symbol:     symbol,
		Current:    *q.Current,
		High:       q.High,
		Low:        q.Low,
		Open:       q.Open,
		PrevClose:  q.PrevClose,
		ChangeAbs:  q.Change,
		ChangePct:  q.ChangePct,
		ObservedAt: observed,
		CreatedAt:  now,
	}, true
}

// Fundamentals requires the metric bag as discriminant. Only numeric metrics
// are retained; the provider mixes in strings we have no use for.
func (Mapper) Fundamentals(symbol string, payload []byte, now time.Time) (*models.FundamentalsSnapshot, bool) {
	var f struct {
		Metric map[string]interface{} `json:"metric"`
	}
	if err := json.Unmarshal(payload, &f); err != nil || f.Metric == nil {
		return nil, false
	}
	metrics := make(map[string]float64, len(f.Metric))
	for k, v := range f.Metric {
		if n, ok := v.(float64); ok {
			metrics[k] = n
		}
	}
	return &models.FundamentalsSnapshot{
		Symbol:    symbol,
		Metrics:   metrics,
		UpdatedAt: now,
	}, true
}

var _ drepo.RecordMapper = Mapper{}
