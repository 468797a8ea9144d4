package analytics

import (
	"fmt"
	"math"

	"StockScout/internal/domain/models"
)

const (
	rsiPeriod    = 14
	momentumDays = 5
	maPeriod     = 5
	minPrices    = 3
)

// Score combines technical and fundamental signals into a bounded [0,100]
// score, a recommendation tier, and a human-readable rationale. It starts
// from a neutral 50 and applies independent additive adjustments.
func Score(company models.CompanyProfile, prices []float64, fundamentals *models.FundamentalsSnapshot) models.ScoreResult {
	if len(prices) < minPrices {
		res := models.ScoreResult{
			Symbol:         company.Symbol,
			Name:           company.Name,
			Score:          0,
			Recommendation: models.Avoid,
			Action:         "Insufficient data",
			Rationale:      []string{"Not enough price history"},
			Signals:        map[string]string{},
			Metrics:        map[string]float64{},
		}
		if len(prices) > 0 {
			res.CurrentPrice = prices[len(prices)-1]
		}
		return res
	}

	var bag map[string]float64
	if fundamentals != nil {
		bag = fundamentals.Metrics
	}

	rsi := RSI(prices, rsiPeriod)
	momentum := Momentum(prices, momentumDays)
	volatility := Volatility(prices)
	ma := MovingAverage(prices, maPeriod)
	current := prices[len(prices)-1]

	pe := PERatio(bag)
	high52, low52 := FiftyTwoWeekRange(bag)

	score := 50.0
	signals := map[string]string{}
	rationale := []string{}

	switch {
	case rsi < 30:
		score += 15
		signals["rsi"] = "OVERSOLD - Strong Buy"
		rationale = append(rationale, fmt.Sprintf("Oversold (RSI: %.1f)", rsi))
	case rsi < 40:
		score += 8
		signals["rsi"] = "Undervalued"
		rationale = append(rationale, fmt.Sprintf("Undervalued (RSI: %.1f)", rsi))
	case rsi > 70:
		score -= 15
		signals["rsi"] = "OVERBOUGHT - Avoid"
		rationale = append(rationale, fmt.Sprintf("Overbought (RSI: %.1f)", rsi))
	default:
		signals["rsi"] = "Neutral"
	}

	switch {
	case momentum > 5:
		score += 10
		signals["momentum"] = "Strong uptrend"
		rationale = append(rationale, fmt.Sprintf("Strong momentum (+%.1f%%)", momentum))
	case momentum > 2:
		score += 5
		signals["momentum"] = "Uptrend"
		rationale = append(rationale, fmt.Sprintf("Positive trend (+%.1f%%)", momentum))
	case momentum < -5:
		score -= 10
		signals["momentum"] = "Downtrend"
		rationale = append(rationale, fmt.Sprintf("Declining (-%.1f%%)", math.Abs(momentum)))
	default:
		signals["momentum"] = "Stable"
	}

	switch {
	case current < ma*0.98:
		score += 8
		signals["price_ma"] = "Below MA - Dip opportunity"
		rationale = append(rationale, "Trading below average (buy dip)")
	case current > ma*1.02:
		score -= 5
		signals["price_ma"] = "Above MA - Hot"
	default:
		signals["price_ma"] = "Near MA"
	}

	switch {
	case volatility < 0.02:
		score += 5
		signals["volatility"] = "Low risk"
	case volatility > 0.05:
		score -= 5
		signals["volatility"] = "High risk"
		rationale = append(rationale, "High volatility - risky")
	default:
		signals["volatility"] = "Medium risk"
	}

	switch {
	case pe > 0 && pe < 15:
		score += 10
		signals["pe"] = "Undervalued P/E"
		rationale = append(rationale, fmt.Sprintf("Low P/E ratio (%.1f)", pe))
	case pe >= 15 && pe <= 25:
		score += 5
		signals["pe"] = "Fair P/E"
	case pe > 40:
		score -= 8
		signals["pe"] = "Overvalued P/E"
		rationale = append(rationale, fmt.Sprintf("High P/E (%.1f)", pe))
	default:
		signals["pe"] = "P/E unavailable"
	}

	// only meaningful when both bounds are known
	if high52 > 0 && low52 > 0 && high52 > low52 {
		position := (current - low52) / (high52 - low52)
		if position < 0.3 {
			score += 8
			signals["52w"] = "Near 52w low - opportunity"
			rationale = append(rationale, "Near yearly low")
		} else if position > 0.8 {
			score -= 5
			signals["52w"] = "Near 52w high"
		}
	}

	score = math.Max(0, math.Min(100, score))

	tier, action := tierForScore(score)

	metrics := map[string]float64{
		"rsi":           round1(rsi),
		"momentum":      round2(momentum),
		"volatility":    round2(volatility * 100),
		"current_vs_ma": 0,
	}
	if ma != 0 {
		metrics["current_vs_ma"] = round2((current/ma - 1) * 100)
	}
	if pe != 0 {
		metrics["pe_ratio"] = round1(pe)
	}

	return models.ScoreResult{
		Symbol:         company.Symbol,
		Name:           company.Name,
		CurrentPrice:   current,
		Score:          int(score),
		Recommendation: tier,
		Action:         action,
		Rationale:      rationale,
		Signals:        signals,
		Metrics:        metrics,
	}
}

func tierForScore(score float64) (models.Recommendation, string) {
	switch {
	case score >= 75:
		return models.StrongBuy, "Excellent opportunity"
	case score >= 60:
		return models.Buy, "Good opportunity"
	case score >= 45:
		return models.Hold, "Monitor for entry"
	case score >= 30:
		return models.Caution, "Wait for better entry"
	default:
		return models.Avoid, "Not recommended"
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
