package service

import (
	"context"

	"homebudget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store interfaces are satisfied by the repository package. Lookups return
// repository.ErrNotFound for missing rows and *repository.ConflictError for
// unique-index violations.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RevocationStore interface {
	Revoke(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error)
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumByCategory(ctx context.Context, userID uuid.UUID, category string) (decimal.Decimal, error)
	SumsByCategory(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error)
}

type BudgetStore interface {
	Create(ctx context.Context, b *models.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error)
	GetByCategory(ctx context.Context, userID uuid.UUID, category string) (*models.Budget, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	Delete(ctx context.Context, id uuid.UUID) error
}
