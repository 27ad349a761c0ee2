package repository

import (
	"database/sql"
	"errors"
	"strings"

	"homebudget/pkg/database"
)

var ErrNotFound = errors.New("record not found")

// ConflictError is returned when a write violates a unique index.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return "unique constraint violated: " + e.Constraint
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Involves reports whether the violated constraint covers the column.
func (e *ConflictError) Involves(column string) bool {
	return strings.Contains(e.Constraint, column)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if constraint, ok := database.UniqueViolation(err); ok {
		return &ConflictError{Constraint: constraint, Err: err}
	}
	return err
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
