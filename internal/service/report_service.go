package service

import (
	"context"

	"homebudget/internal/models"

	"github.com/google/uuid"
)

// ReportService summarises budgets against spending.
type ReportService struct {
	budgets *BudgetService
}

func NewReportService(budgets *BudgetService) *ReportService {
	return &ReportService{budgets: budgets}
}

// Spending lists every budget with spent, savings and percentage spent.
func (s *ReportService) Spending(ctx context.Context, userID uuid.UUID) ([]models.BudgetStatus, error) {
	return s.budgets.List(ctx, userID)
}

// Savings totals limits, spend over budgeted categories and floored savings.
func (s *ReportService) Savings(ctx context.Context, userID uuid.UUID) (models.SavingsSummary, error) {
	statuses, err := s.budgets.List(ctx, userID)
	if err != nil {
		return models.SavingsSummary{}, err
	}
	return models.NewSavingsSummary(statuses), nil
}
