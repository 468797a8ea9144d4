package analytics

import "StockScout/internal/domain/models"

const (
	maxPositions = 5
	qualifyScore = 60
)

// SuggestPortfolio allocates a budget equally across up to five qualifying
// results (score >= 60), ranked order preserved. Whole shares only: the
// fractional remainder stays unallocated. With no qualifying results it
// returns nil, which the caller surfaces as "no strong signals".
func SuggestPortfolio(ranked []models.ScoreResult, budget float64) []models.PortfolioAllocation {
	if budget <= 0 {
		return nil
	}

	selected := make([]models.ScoreResult, 0, maxPositions)
	for _, r := range ranked {
		if r.Score >= qualifyScore && r.CurrentPrice > 0 {
			selected = append(selected, r)
			if len(selected) == maxPositions {
				break
			}
		}
	}
	if len(selected) == 0 {
		return nil
	}

	slot := budget / float64(len(selected))
	out := make([]models.PortfolioAllocation, 0, len(selected))
	for _, r := range selected {
		shares := int(slot / r.CurrentPrice)
		cost := float64(shares) * r.CurrentPrice
		out = append(out, models.PortfolioAllocation{
			Symbol:          r.Symbol,
			Name:            r.Name,
			Shares:          shares,
			Price:           r.CurrentPrice,
			Cost:            cost,
			PercentOfBudget: cost / budget * 100,
			Score:           r.Score,
		})
	}
	return out
}
