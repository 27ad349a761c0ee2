package repository

import (
	"context"
	"database/sql"

	"homebudget/internal/models"
	"homebudget/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var userColumns = []string{"id", "username", "email", "password", "created_at", "updated_at"}

type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := r.db.Builder().Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Username, user.Email, user.Password, user.CreatedAt.UTC(), user.UpdatedAt.UTC())

	q, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q, args...)
	return translateError(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail expects the email in its stored, lower-cased form.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	query := r.db.Builder().Select(userColumns...).
		From("users").
		Where(where)

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRowContext(ctx, q, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password,
		database.Time(&user.CreatedAt), database.Time(&user.UpdatedAt),
	)
	if err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

// Update replaces username, email and password hash.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := r.db.Builder().Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("password", user.Password).
		Set("updated_at", user.UpdatedAt.UTC()).
		Where(squirrel.Eq{"id": user.ID})

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

// Delete removes the user together with every budget and expense they own,
// in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"expenses", "budgets"} {
			q, args, err := r.db.Builder().Delete(table).Where(squirrel.Eq{"user_id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return err
			}
		}

		q, args, err := r.db.Builder().Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
}
