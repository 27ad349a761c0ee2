package service

import (
	"context"
	"errors"
	"time"

	"homebudget/internal/dto"
	"homebudget/internal/models"
	"homebudget/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BudgetService owns per-category budgets. Spent and savings are derived
// from the expense ledger on every read.
type BudgetService struct {
	budgets  BudgetStore
	expenses ExpenseStore
	logger   *zap.Logger
}

func NewBudgetService(budgets BudgetStore, expenses ExpenseStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		budgets:  budgets,
		expenses: expenses,
		logger:   logger,
	}
}

func (s *BudgetService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBudgetRequest) (*models.BudgetStatus, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category, err := requireText("category", req.Category)
	if err != nil {
		return nil, err
	}
	limit, err := checkMoney(*req.Limit, ErrInvalidLimit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	budget := &models.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Limit:     limit,
		ImageURL:  cleanText(req.ImageURL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, budgetWriteError("create budget", err)
	}

	s.logger.Info("budget created",
		zap.String("budget_id", budget.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("category", category),
	)
	return s.status(ctx, budget)
}

// List returns every budget of the user with derived figures, computed from
// a single grouped aggregate.
func (s *BudgetService) List(ctx context.Context, userID uuid.UUID) ([]models.BudgetStatus, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError("list budgets", err)
	}

	spent, err := s.expenses.SumsByCategory(ctx, userID)
	if err != nil {
		return nil, storeError("sum expenses", err)
	}

	statuses := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		total, ok := spent[b.Category]
		if !ok {
			total = decimal.Zero
		}
		statuses = append(statuses, models.NewBudgetStatus(*b, total))
	}
	return statuses, nil
}

func (s *BudgetService) Get(ctx context.Context, userID, budgetID uuid.UUID) (*models.BudgetStatus, error) {
	budget, err := s.owned(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, budget)
}

// Update applies the fields present in req. Renaming the category moves the
// budget onto that category's expenses.
func (s *BudgetService) Update(ctx context.Context, userID, budgetID uuid.UUID, req *dto.UpdateBudgetRequest) (*models.BudgetStatus, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	budget, err := s.owned(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		if budget.Category, err = requireText("category", *req.Category); err != nil {
			return nil, err
		}
	}
	if req.Limit != nil {
		if budget.Limit, err = checkMoney(*req.Limit, ErrInvalidLimit); err != nil {
			return nil, err
		}
	}
	if req.ImageURL != nil {
		budget.ImageURL = cleanText(*req.ImageURL)
	}
	budget.UpdatedAt = time.Now()

	if err := s.budgets.Update(ctx, budget); err != nil {
		return nil, budgetWriteError("update budget", err)
	}
	return s.status(ctx, budget)
}

func (s *BudgetService) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, budgetID); err != nil {
		return err
	}

	if err := s.budgets.Delete(ctx, budgetID); err != nil {
		return budgetWriteError("delete budget", err)
	}

	s.logger.Info("budget deleted", zap.String("budget_id", budgetID.String()))
	return nil
}

// owned loads a budget and checks that userID owns it.
func (s *BudgetService) owned(ctx context.Context, userID, budgetID uuid.UUID) (*models.Budget, error) {
	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, storeError("find budget", err)
	}
	if budget.UserID != userID {
		return nil, ErrForbidden
	}
	return budget, nil
}

func (s *BudgetService) status(ctx context.Context, budget *models.Budget) (*models.BudgetStatus, error) {
	spent, err := s.expenses.SumByCategory(ctx, budget.UserID, budget.Category)
	if err != nil {
		return nil, storeError("sum expenses", err)
	}
	status := models.NewBudgetStatus(*budget, spent)
	return &status, nil
}

func budgetWriteError(op string, err error) error {
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		return ErrDuplicateBudget
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBudgetNotFound
	}
	return storeError(op, err)
}
