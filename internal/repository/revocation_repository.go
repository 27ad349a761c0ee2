package repository

import (
	"context"

	"homebudget/internal/models"
	"homebudget/pkg/database"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

// RevocationRepository is the token blocklist.
type RevocationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewRevocationRepository(db *database.DB, logger *zap.Logger) *RevocationRepository {
	return &RevocationRepository{
		db:     db,
		logger: logger,
	}
}

// Revoke records the jti. Revoking an already revoked token is a no-op.
func (r *RevocationRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	query := r.db.Builder().Insert("revoked_tokens").
		Columns("jti", "user_id", "revoked_at", "expires_at").
		Values(token.JTI, token.UserID, token.RevokedAt.UTC(), token.ExpiresAt.UTC()).
		Suffix("ON CONFLICT (jti) DO NOTHING")

	q, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := r.db.Builder().Select("COUNT(*)").
		From("revoked_tokens").
		Where(squirrel.Eq{"jti": jti})

	q, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
