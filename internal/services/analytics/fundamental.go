package analytics

// Fundamental extraction with graceful degradation: a missing or zero metric
// falls through to the next preferred key, then to 0. Extraction never fails.

// PERatio prefers the trailing-twelve-months basic P/E, falling back to the
// normalized annual figure.
func PERatio(metrics map[string]float64) float64 {
	if v, ok := metrics["peBasicExclExtraTTM"]; ok && v != 0 {
		return v
	}
	if v, ok := metrics["peNormalizedAnnual"]; ok && v != 0 {
		return v
	}
	return 0
}

// EPS prefers earnings excluding extra items over plain TTM earnings.
func EPS(metrics map[string]float64) float64 {
	if v, ok := metrics["epsExclExtraItemsTTM"]; ok && v != 0 {
		return v
	}
	if v, ok := metrics["epsTTM"]; ok && v != 0 {
		return v
	}
	return 0
}

// FiftyTwoWeekRange returns the 52-week high and low, defaulting to 0.
func FiftyTwoWeekRange(metrics map[string]float64) (high, low float64) {
	return metrics["52WeekHigh"], metrics["52WeekLow"]
}
