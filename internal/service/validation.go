package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"homebudget/internal/models"
	"homebudget/pkg/auth"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const MinPasswordLength = 8

// numeric(14,2) holds values below 10^12
var maxMoney = decimal.New(1, 12)

// Exponent bounds for money input. Rounding rescales the coefficient, so
// an exponent like 1e900000000 would expand to a billion digits.
const (
	maxMoneyExponent = 12
	minMoneyExponent = -20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks struct tags and maps the first failure onto the
// service error vocabulary.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s", ErrMissingField, fe.Field())
	case "email":
		return ErrInvalidEmail
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", ErrInvalidInput, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s", ErrInvalidInput, fe.Field())
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(cleanText(email))
}

func checkPassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > auth.MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// checkMoney rounds to cents and rejects non-positive or oversized values.
func checkMoney(v decimal.Decimal, sentinel error) (decimal.Decimal, error) {
	if exp := v.Exponent(); exp > maxMoneyExponent || exp < minMoneyExponent {
		return decimal.Zero, sentinel
	}
	v = v.Round(2)
	if !v.IsPositive() || v.GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, sentinel
	}
	return v, nil
}

func parseDate(s string) (models.Date, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, ErrInvalidDate
	}
	return d, nil
}

// requireText trims s and fails with MissingField when nothing is left.
func requireText(field, s string) (string, error) {
	s = cleanText(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return s, nil
}
