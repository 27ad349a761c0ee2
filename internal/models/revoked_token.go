package models

import (
	"time"

	"github.com/google/uuid"
)

// RevokedToken is an entry of the token blocklist. Rows are never updated.
type RevokedToken struct {
	JTI       string    `db:"jti"`
	UserID    uuid.UUID `db:"user_id"`
	RevokedAt time.Time `db:"revoked_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
