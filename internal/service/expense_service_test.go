package service

import (
	"context"
	"testing"

	"homebudget/internal/dto"
	"homebudget/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseCreateValidation(t *testing.T) {
	e := newEnv(config.AdmissionOff)
	ctx := context.Background()
	alice, _ := e.register(t, "alice")

	tests := []struct {
		name string
		req  dto.CreateExpenseRequest
		want error
	}{
		{"missing category", dto.CreateExpenseRequest{Amount: decPtr("1"), Date: "2024-01-01"}, ErrMissingField},
		{"missing amount", dto.CreateExpenseRequest{Category: "food", Date: "2024-01-01"}, ErrMissingField},
		{"missing date", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("1")}, ErrMissingField},
		{"zero amount", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("0"), Date: "2024-01-01"}, ErrInvalidAmount},
		{"negative amount", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("-3"), Date: "2024-01-01"}, ErrInvalidAmount},
		{"huge exponent", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("1e900000000"), Date: "2024-01-01"}, ErrInvalidAmount},
		{"tiny exponent", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("1e-900000000"), Date: "2024-01-01"}, ErrInvalidAmount},
		{"impossible date", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("1"), Date: "2024-02-30"}, ErrInvalidDate},
		{"wrong format", dto.CreateExpenseRequest{Category: "food", Amount: decPtr("1"), Date: "01/02/2024"}, ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.expenses.Create(ctx, alice, &tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	list, err := e.expenses.List(ctx, alice, dto.ExpenseQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExpenseCRUD(t *testing.T) {
	e := newEnv(config.AdmissionOff)
	ctx := context.Background()
	alice, _ := e.register(t, "alice")
	bob, _ := e.register(t, "bob")

	created, err := e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: " food ", Amount: decPtr("12.345"), Date: "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, "food", created.Category)
	assertMoney(t, "12.35", created.Amount)
	assert.Equal(t, "2024-02-29", created.Date.String())

	got, err := e.expenses.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = e.expenses.Get(ctx, bob, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.expenses.Get(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	updated, err := e.expenses.Update(ctx, alice, created.ID, &dto.UpdateExpenseRequest{Amount: decPtr("20")})
	require.NoError(t, err)
	assertMoney(t, "20", updated.Amount)
	assert.Equal(t, "food", updated.Category, "absent fields are kept")

	_, err = e.expenses.Update(ctx, alice, created.ID, &dto.UpdateExpenseRequest{Date: strPtr("2023-02-29")})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = e.expenses.Update(ctx, alice, created.ID, &dto.UpdateExpenseRequest{Amount: decPtr("0")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = e.expenses.Update(ctx, alice, created.ID, &dto.UpdateExpenseRequest{Amount: decPtr("5e900000000")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = e.expenses.Update(ctx, bob, created.ID, &dto.UpdateExpenseRequest{Amount: decPtr("1")})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, e.expenses.Delete(ctx, bob, created.ID), ErrForbidden)
	require.NoError(t, e.expenses.Delete(ctx, alice, created.ID))
	assert.ErrorIs(t, e.expenses.Delete(ctx, alice, created.ID), ErrExpenseNotFound)
}

func TestExpenseListFilters(t *testing.T) {
	e := newEnv(config.AdmissionOff)
	ctx := context.Background()
	alice, _ := e.register(t, "alice")
	bob, _ := e.register(t, "bob")

	for _, exp := range []struct{ category, date string }{
		{"food", "2024-01-01"}, {"rent", "2024-01-15"}, {"food", "2024-02-01"},
	} {
		_, err := e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: exp.category, Amount: decPtr("5"), Date: exp.date})
		require.NoError(t, err)
	}
	_, err := e.expenses.Create(ctx, bob, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("5"), Date: "2024-01-01"})
	require.NoError(t, err)

	all, err := e.expenses.List(ctx, alice, dto.ExpenseQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-01", all[0].Date.String(), "insertion order")

	food, err := e.expenses.List(ctx, alice, dto.ExpenseQuery{Category: "food"})
	require.NoError(t, err)
	assert.Len(t, food, 2)

	padded, err := e.expenses.List(ctx, alice, dto.ExpenseQuery{Category: " food "})
	require.NoError(t, err)
	assert.Len(t, padded, 2, "filter is normalised like stored categories")

	january, err := e.expenses.List(ctx, alice, dto.ExpenseQuery{From: "2024-01-01", To: "2024-01-31"})
	require.NoError(t, err)
	assert.Len(t, january, 2)

	_, err = e.expenses.List(ctx, alice, dto.ExpenseQuery{From: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExpenseAdmissionRequireBudget(t *testing.T) {
	e := newEnv(config.AdmissionRequireBudget)
	ctx := context.Background()
	alice, _ := e.register(t, "alice")

	_, err := e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("10"), Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNoBudgetForCategory)
	assert.Equal(t, KindDomain, KindOf(err))

	_, err = e.budgets.Create(ctx, alice, &dto.CreateBudgetRequest{Category: "food", Limit: decPtr("5")})
	require.NoError(t, err)

	_, err = e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("10"), Date: "2024-01-01"})
	assert.NoError(t, err, "limit is not enforced under require_budget")
}

func TestExpenseAdmissionEnforceLimit(t *testing.T) {
	e := newEnv(config.AdmissionEnforceLimit)
	ctx := context.Background()
	alice, _ := e.register(t, "alice")

	_, err := e.budgets.Create(ctx, alice, &dto.CreateBudgetRequest{Category: "food", Limit: decPtr("100")})
	require.NoError(t, err)

	first, err := e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("70"), Date: "2024-01-01"})
	require.NoError(t, err)

	_, err = e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("30.01"), Date: "2024-01-02"})
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	_, err = e.expenses.Create(ctx, alice, &dto.CreateExpenseRequest{Category: "food", Amount: decPtr("30"), Date: "2024-01-02"})
	require.NoError(t, err, "reaching the limit exactly is allowed")

	_, err = e.expenses.Update(ctx, alice, first.ID, &dto.UpdateExpenseRequest{Amount: decPtr("60")})
	assert.NoError(t, err, "the replaced amount is not counted twice")

	_, err = e.expenses.Update(ctx, alice, first.ID, &dto.UpdateExpenseRequest{Amount: decPtr("71")})
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	_, err = e.expenses.Update(ctx, alice, first.ID, &dto.UpdateExpenseRequest{Category: strPtr("travel")})
	assert.ErrorIs(t, err, ErrNoBudgetForCategory)
}
