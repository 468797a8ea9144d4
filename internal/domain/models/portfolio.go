package models

import "time"

// PortfolioAllocation is a whole-share buy suggestion for one symbol.
type PortfolioAllocation struct {
	Symbol          string  `json:"symbol"`
	Name            string  `json:"name"`
	Shares          int     `json:"shares"`
	Price           float64 `json:"price"`
	Cost            float64 `json:"cost"`
	PercentOfBudget float64 `json:"percent_of_budget"`
	Score           int     `json:"score"`
}

// PortfolioSuggestion wraps an allocation set with the unallocated remainder.
type PortfolioSuggestion struct {
	Budget        float64               `json:"budget"`
	Allocations   []PortfolioAllocation `json:"allocations"`
	TotalCost     float64               `json:"total_cost"`
	RemainingCash float64               `json:"remaining_cash"`
	GeneratedAt   time.Time             `json:"generated_at"`
}
