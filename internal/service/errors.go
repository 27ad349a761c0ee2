package service

import (
	"errors"

	"homebudget/pkg/auth"
)

// Kind classifies service errors for the transport layer.
type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDomain:
		return "domain"
	default:
		return "store"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrMissingField  = newError(KindValidation, "missing required field")
	ErrInvalidInput  = newError(KindValidation, "invalid input")
	ErrInvalidEmail  = newError(KindValidation, "invalid email address")
	ErrWeakPassword  = newError(KindValidation, "password must be between 8 and 72 characters")
	ErrInvalidAmount = newError(KindValidation, "amount must be a positive number")
	ErrInvalidLimit  = newError(KindValidation, "limit must be a positive number")
	ErrInvalidDate   = newError(KindValidation, "date must be a calendar date in YYYY-MM-DD format")

	ErrDuplicateUsername = newError(KindConflict, "username already taken")
	ErrDuplicateEmail    = newError(KindConflict, "email already registered")
	ErrDuplicateBudget   = newError(KindConflict, "a budget for this category already exists")

	ErrInvalidCredentials = newError(KindAuth, "invalid credentials")
	ErrIncorrectPassword  = newError(KindAuth, "current password is incorrect")

	ErrForbidden = newError(KindForbidden, "forbidden")

	ErrUserNotFound    = newError(KindNotFound, "user not found")
	ErrBudgetNotFound  = newError(KindNotFound, "budget not found")
	ErrExpenseNotFound = newError(KindNotFound, "expense not found")

	ErrNoBudgetForCategory = newError(KindDomain, "no budget exists for this category")
	ErrBudgetExceeded      = newError(KindDomain, "expense would exceed the category budget")
)

// KindOf classifies err. Anything unrecognised is a store failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
		return KindAuth
	}
	return KindStore
}

func storeError(op string, err error) error {
	return &Error{Kind: KindStore, Msg: op, Err: err}
}

