// Package analytics holds the pure scoring math: technical indicators,
// fundamental extraction, the multi-factor scorer, and the portfolio
// suggester. Everything here is stateless and side-effect free; inputs are
// in-memory slices, missing data degrades to documented defaults.
package analytics

import "math"

// RSI computes the relative strength index over the trailing period deltas.
// Fewer than period+1 points yields the neutral value 50; zero average loss
// yields 100.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	var avgGain, avgLoss float64
	for _, g := range gains[len(gains)-period:] {
		avgGain += g
	}
	for _, l := range losses[len(losses)-period:] {
		avgLoss += l
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Momentum is the percent change between the price days steps back and the
// latest price. Too few points or a zero reference price yields 0.
func Momentum(prices []float64, days int) float64 {
	if len(prices) < days {
		return 0
	}
	old := prices[len(prices)-days]
	if old == 0 {
		return 0
	}
	return (prices[len(prices)-1] - old) / old * 100
}

// Volatility is the sample standard deviation of successive percent-returns.
// Fewer than two usable returns yields 0.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		sq += (r - mean) * (r - mean)
	}
	return math.Sqrt(sq / float64(len(returns)-1))
}

// MovingAverage is the mean of the trailing period points, or of all points
// when fewer are available. Empty input yields 0.
func MovingAverage(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	window := prices
	if len(prices) >= period {
		window = prices[len(prices)-period:]
	}
	var sum float64
	for _, p := range window {
		sum += p
	}
	return sum / float64(len(window))
}
