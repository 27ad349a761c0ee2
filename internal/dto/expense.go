package dto

import (
	"time"

	"homebudget/internal/models"

	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Category string           `json:"category" validate:"required,max=100"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Date     string           `json:"date" validate:"required"`
}

// UpdateExpenseRequest changes only the fields that are present.
type UpdateExpenseRequest struct {
	Category *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Date     *string          `json:"date,omitempty"`
}

// ExpenseQuery holds the optional list filters, dates as YYYY-MM-DD.
type ExpenseQuery struct {
	Category string `query:"category"`
	From     string `query:"from"`
	To       string `query:"to"`
}

type ExpenseResponse struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
	CreatedAt string  `json:"created_at"`
}

func NewExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		Amount:    e.Amount.InexactFloat64(),
		Category:  e.Category,
		Date:      e.Date.String(),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func NewExpenseListResponse(expenses []*models.Expense) []ExpenseResponse {
	resp := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		resp = append(resp, NewExpenseResponse(e))
	}
	return resp
}
