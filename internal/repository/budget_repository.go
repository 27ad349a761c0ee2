package repository

import (
	"context"

	"homebudget/internal/models"
	"homebudget/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var budgetColumns = []string{"id", "user_id", "category", "limit_amount", "image_url", "created_at", "updated_at"}

type BudgetRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewBudgetRepository(db *database.DB, logger *zap.Logger) *BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	query := r.db.Builder().Insert("budgets").
		Columns(budgetColumns...).
		Values(b.ID, b.UserID, b.Category, b.Limit, b.ImageURL, b.CreatedAt.UTC(), b.UpdatedAt.UTC())

	q, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q, args...)
	return translateError(err)
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Budget, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByCategory finds the user's budget for a category.
func (r *BudgetRepository) GetByCategory(ctx context.Context, userID uuid.UUID, category string) (*models.Budget, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID, "category": category})
}

func (r *BudgetRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Budget, error) {
	query := r.db.Builder().Select(budgetColumns...).
		From("budgets").
		Where(where)

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	b, err := scanBudget(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return b, nil
}

func (r *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Budget, error) {
	query := r.db.Builder().Select(budgetColumns...).
		From("budgets").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "id ASC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []*models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

func (r *BudgetRepository) Update(ctx context.Context, b *models.Budget) error {
	query := r.db.Builder().Update("budgets").
		Set("category", b.Category).
		Set("limit_amount", b.Limit).
		Set("image_url", b.ImageURL).
		Set("updated_at", b.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": b.ID})

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

func (r *BudgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q, args, err := r.db.Builder().Delete("budgets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBudget(row rowScanner) (*models.Budget, error) {
	var b models.Budget
	err := row.Scan(
		&b.ID, &b.UserID, &b.Category, &b.Limit, &b.ImageURL,
		database.Time(&b.CreatedAt), database.Time(&b.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
