package dto

import (
	"homebudget/internal/models"

	"github.com/shopspring/decimal"
)

type CreateBudgetRequest struct {
	Category string           `json:"category" validate:"required,max=100"`
	Limit    *decimal.Decimal `json:"limit" validate:"required"`
	ImageURL string           `json:"image_url,omitempty" validate:"max=2048"`
}

// UpdateBudgetRequest changes only the fields that are present.
type UpdateBudgetRequest struct {
	Category *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Limit    *decimal.Decimal `json:"limit,omitempty"`
	ImageURL *string          `json:"image_url,omitempty" validate:"omitempty,max=2048"`
}

type BudgetResponse struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Spent    float64 `json:"spent"`
	Savings  float64 `json:"savings"`
	UserID   string  `json:"user_id"`
	ImageURL string  `json:"image_url"`
}

func NewBudgetResponse(s models.BudgetStatus) BudgetResponse {
	return BudgetResponse{
		ID:       s.ID.String(),
		Category: s.Category,
		Limit:    s.Limit.InexactFloat64(),
		Spent:    s.Spent.InexactFloat64(),
		Savings:  s.Savings.InexactFloat64(),
		UserID:   s.UserID.String(),
		ImageURL: s.ImageURL,
	}
}

func NewBudgetListResponse(statuses []models.BudgetStatus) []BudgetResponse {
	resp := make([]BudgetResponse, 0, len(statuses))
	for _, s := range statuses {
		resp = append(resp, NewBudgetResponse(s))
	}
	return resp
}
