package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Category  string          `db:"category"`
	Limit     decimal.Decimal `db:"limit_amount"`
	ImageURL  string          `db:"image_url"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// BudgetStatus is a budget with its derived figures. Spent and Savings are
// computed from the expense ledger on every read and never persisted.
type BudgetStatus struct {
	Budget
	Spent   decimal.Decimal
	Savings decimal.Decimal
}

// NewBudgetStatus derives savings as limit minus spent, floored at zero.
func NewBudgetStatus(b Budget, spent decimal.Decimal) BudgetStatus {
	savings := b.Limit.Sub(spent)
	if savings.IsNegative() {
		savings = decimal.Zero
	}
	return BudgetStatus{Budget: b, Spent: spent, Savings: savings}
}

// Overspent reports whether the expenses exceed the limit.
func (s BudgetStatus) Overspent() bool {
	return s.Spent.GreaterThan(s.Limit)
}

// PercentageSpent is spent as a share of the limit, rounded to two places.
func (s BudgetStatus) PercentageSpent() decimal.Decimal {
	if !s.Limit.IsPositive() {
		return decimal.Zero
	}
	return s.Spent.Div(s.Limit).Mul(decimal.NewFromInt(100)).Round(2)
}

// SavingsSummary totals a user's budgets. TotalSavings adds the floored
// per-budget savings, so an overspent budget does not eat into the others.
type SavingsSummary struct {
	TotalLimit   decimal.Decimal
	TotalSpent   decimal.Decimal
	TotalSavings decimal.Decimal
}

func NewSavingsSummary(statuses []BudgetStatus) SavingsSummary {
	summary := SavingsSummary{
		TotalLimit:   decimal.Zero,
		TotalSpent:   decimal.Zero,
		TotalSavings: decimal.Zero,
	}
	for _, s := range statuses {
		summary.TotalLimit = summary.TotalLimit.Add(s.Limit)
		summary.TotalSpent = summary.TotalSpent.Add(s.Spent)
		summary.TotalSavings = summary.TotalSavings.Add(s.Savings)
	}
	return summary
}
