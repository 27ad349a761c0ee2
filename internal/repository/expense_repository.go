package repository

import (
	"context"

	"homebudget/internal/models"
	"homebudget/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var expenseColumns = []string{"id", "user_id", "category", "amount", "date", "created_at", "updated_at"}

type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := r.db.Builder().Insert("expenses").
		Columns(expenseColumns...).
		Values(e.ID, e.UserID, e.Category, e.Amount, e.Date, e.CreatedAt.UTC(), e.UpdatedAt.UTC())

	q, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q, args...)
	return translateError(err)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := r.db.Builder().Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"id": id})

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var e models.Expense
	err = r.db.QueryRowContext(ctx, q, args...).Scan(
		&e.ID, &e.UserID, &e.Category, &e.Amount, &e.Date,
		database.Time(&e.CreatedAt), database.Time(&e.UpdatedAt),
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &e, nil
}

// ListByUser returns the user's expenses in insertion order.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error) {
	query := r.db.Builder().Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy(r.db.InsertionOrder() + " ASC")

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"date": *filter.To})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Category, &e.Amount, &e.Date,
			database.Time(&e.CreatedAt), database.Time(&e.UpdatedAt),
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}

	return expenses, rows.Err()
}

// Update replaces category, amount and date.
func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	query := r.db.Builder().Update("expenses").
		Set("category", e.Category).
		Set("amount", e.Amount).
		Set("date", e.Date).
		Set("updated_at", e.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": e.ID})

	q, args, err := query.ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return translateError(err)
	}
	return expectAffected(res)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q, args, err := r.db.Builder().Delete("expenses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SumByCategory is the amount the user has spent in one category, all time.
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID uuid.UUID, category string) (decimal.Decimal, error) {
	query := r.db.Builder().Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID, "category": category})

	q, args, err := query.ToSql()
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	// SQLite sums NUMERIC as REAL
	return total.Round(2), nil
}

// SumsByCategory aggregates all of the user's expenses per category in one
// query.
func (r *ExpenseRepository) SumsByCategory(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	query := r.db.Builder().Select("category", "COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("category")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category string
		var total decimal.Decimal
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals[category] = total.Round(2)
	}

	return totals, rows.Err()
}
