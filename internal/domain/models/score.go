package models

// Recommendation is the ordinal tier derived from a numeric score.
type Recommendation string

const (
	StrongBuy Recommendation = "STRONG_BUY"
	Buy       Recommendation = "BUY"
	Hold      Recommendation = "HOLD"
	Caution   Recommendation = "CAUTION"
	Avoid     Recommendation = "AVOID"
)

// ScoreResult is a recomputed-on-demand view, never the source of truth.
type ScoreResult struct {
	Symbol         string             `json:"symbol"`
	Name           string             `json:"name"`
	CurrentPrice   float64            `json:"current_price"`
	Score          int                `json:"score"`
	Recommendation Recommendation     `json:"recommendation"`
	Action         string             `json:"action"`
	Rationale      []string           `json:"rationale"`
	Signals        map[string]string  `json:"signals"`
	Metrics        map[string]float64 `json:"metrics"`
}
