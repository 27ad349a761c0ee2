package dto

import "homebudget/internal/models"

type CategorySpending struct {
	Category        string  `json:"category"`
	Limit           float64 `json:"limit"`
	Spent           float64 `json:"spent"`
	Savings         float64 `json:"savings"`
	PercentageSpent float64 `json:"percentage_spent"`
	Overspent       bool    `json:"overspent"`
}

type SpendingReportResponse struct {
	Budgets []CategorySpending `json:"budgets"`
}

func NewSpendingReportResponse(statuses []models.BudgetStatus) SpendingReportResponse {
	resp := SpendingReportResponse{Budgets: make([]CategorySpending, 0, len(statuses))}
	for _, s := range statuses {
		resp.Budgets = append(resp.Budgets, CategorySpending{
			Category:        s.Category,
			Limit:           s.Limit.InexactFloat64(),
			Spent:           s.Spent.InexactFloat64(),
			Savings:         s.Savings.InexactFloat64(),
			PercentageSpent: s.PercentageSpent().InexactFloat64(),
			Overspent:       s.Overspent(),
		})
	}
	return resp
}

type SavingsSummaryResponse struct {
	TotalLimit   float64 `json:"total_limit"`
	TotalSpent   float64 `json:"total_spent"`
	TotalSavings float64 `json:"total_savings"`
}

func NewSavingsSummaryResponse(s models.SavingsSummary) SavingsSummaryResponse {
	return SavingsSummaryResponse{
		TotalLimit:   s.TotalLimit.InexactFloat64(),
		TotalSpent:   s.TotalSpent.InexactFloat64(),
		TotalSavings: s.TotalSavings.InexactFloat64(),
	}
}
