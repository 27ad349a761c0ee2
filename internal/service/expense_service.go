package service

import (
	"context"
	"errors"
	"time"

	"homebudget/internal/dto"
	"homebudget/internal/models"
	"homebudget/internal/repository"
	"homebudget/pkg/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseService records spending. With an admission policy other than
// config.AdmissionOff, writes are checked against the category's budget.
type ExpenseService struct {
	expenses  ExpenseStore
	budgets   BudgetStore
	admission config.ExpenseAdmission
	logger    *zap.Logger
}

func NewExpenseService(expenses ExpenseStore, budgets BudgetStore, admission config.ExpenseAdmission, logger *zap.Logger) *ExpenseService {
	if admission == "" {
		admission = config.AdmissionOff
	}
	return &ExpenseService{
		expenses:  expenses,
		budgets:   budgets,
		admission: admission,
		logger:    logger,
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*models.Expense, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category, err := requireText("category", req.Category)
	if err != nil {
		return nil, err
	}
	amount, err := checkMoney(*req.Amount, ErrInvalidAmount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if err := s.admit(ctx, userID, category, amount, decimal.Zero); err != nil {
		return nil, err
	}

	now := time.Now()
	expense := &models.Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Amount:    amount,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, storeError("create expense", err)
	}

	s.logger.Info("expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("category", category),
		zap.String("amount", amount.StringFixed(2)),
	)
	return expense, nil
}

// List returns the user's expenses in insertion order. Empty query fields
// do not filter.
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, q dto.ExpenseQuery) ([]*models.Expense, error) {
	filter := models.ExpenseFilter{Category: cleanText(q.Category)}
	if q.From != "" {
		from, err := parseDate(q.From)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := parseDate(q.To)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}

	expenses, err := s.expenses.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, storeError("list expenses", err)
	}
	return expenses, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	return s.owned(ctx, userID, expenseID)
}

// Update applies the fields present in req. The admission policy is checked
// against the spend without the expense being replaced.
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID uuid.UUID, req *dto.UpdateExpenseRequest) (*models.Expense, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	expense, err := s.owned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	previous := *expense

	if req.Category != nil {
		if expense.Category, err = requireText("category", *req.Category); err != nil {
			return nil, err
		}
	}
	if req.Amount != nil {
		if expense.Amount, err = checkMoney(*req.Amount, ErrInvalidAmount); err != nil {
			return nil, err
		}
	}
	if req.Date != nil {
		if expense.Date, err = parseDate(*req.Date); err != nil {
			return nil, err
		}
	}

	replaced := decimal.Zero
	if previous.Category == expense.Category {
		replaced = previous.Amount
	}
	if err := s.admit(ctx, userID, expense.Category, expense.Amount, replaced); err != nil {
		return nil, err
	}

	expense.UpdatedAt = time.Now()
	if err := s.expenses.Update(ctx, expense); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, storeError("update expense", err)
	}
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, expenseID); err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return storeError("delete expense", err)
	}
	return nil
}

func (s *ExpenseService) owned(ctx context.Context, userID, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, storeError("find expense", err)
	}
	if expense.UserID != userID {
		return nil, ErrForbidden
	}
	return expense, nil
}

// admit applies the admission policy. replaced is the part of the current
// spend that the write takes away.
func (s *ExpenseService) admit(ctx context.Context, userID uuid.UUID, category string, amount, replaced decimal.Decimal) error {
	if s.admission == config.AdmissionOff {
		return nil
	}

	budget, err := s.budgets.GetByCategory(ctx, userID, category)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoBudgetForCategory
		}
		return storeError("find budget", err)
	}

	if s.admission != config.AdmissionEnforceLimit {
		return nil
	}

	spent, err := s.expenses.SumByCategory(ctx, userID, category)
	if err != nil {
		return storeError("sum expenses", err)
	}
	if spent.Sub(replaced).Add(amount).GreaterThan(budget.Limit) {
		return ErrBudgetExceeded
	}
	return nil
}
