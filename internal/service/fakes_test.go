package service

import (
	"context"
	"errors"
	"sync"

	"homebudget/internal/models"
	"homebudget/internal/notify"
	"homebudget/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore implements every store interface in memory with the same error
// contract as the repository package.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	budgets  map[uuid.UUID]models.Budget
	expenses []models.Expense
	revoked  map[string]models.RevokedToken
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uuid.UUID]models.User),
		budgets: make(map[uuid.UUID]models.Budget),
		revoked: make(map[string]models.RevokedToken),
	}
}

type memUsers struct{ *memStore }
type memBudgets struct{ *memStore }
type memExpenses struct{ *memStore }
type memRevocations struct{ *memStore }

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return &repository.ConflictError{Constraint: "users_username_key"}
		}
		if u.Email == user.Email {
			return &repository.ConflictError{Constraint: "users_email_key"}
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s memUsers) find(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email == email })
}

func (s memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Username == username })
}

func (s memUsers) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return &repository.ConflictError{Constraint: "users_username_key"}
		}
		if u.Email == user.Email {
			return &repository.ConflictError{Constraint: "users_email_key"}
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s memUsers) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	for bid, b := range s.budgets {
		if b.UserID == id {
			delete(s.budgets, bid)
		}
	}
	kept := s.expenses[:0]
	for _, e := range s.expenses {
		if e.UserID != id {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	return nil
}

func (s memBudgets) Create(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.UserID == b.UserID && existing.Category == b.Category {
			return &repository.ConflictError{Constraint: "budgets_user_category_key"}
		}
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s memBudgets) GetByID(_ context.Context, id uuid.UUID) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s memBudgets) GetByCategory(_ context.Context, userID uuid.UUID, category string) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.UserID == userID && b.Category == category {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memBudgets) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*models.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			b := b
			list = append(list, &b)
		}
	}
	return list, nil
}

func (s memBudgets) Update(_ context.Context, b *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[b.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range s.budgets {
		if id != b.ID && existing.UserID == b.UserID && existing.Category == b.Category {
			return &repository.ConflictError{Constraint: "budgets_user_category_key"}
		}
	}
	s.budgets[b.ID] = *b
	return nil
}

func (s memBudgets) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s memExpenses) Create(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, *e)
	return nil
}

func (s memExpenses) GetByID(_ context.Context, id uuid.UUID) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s memExpenses) ListByUser(_ context.Context, userID uuid.UUID, filter models.ExpenseFilter) ([]*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*models.Expense{}
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.From != nil && e.Date.Before(filter.From.Time) {
			continue
		}
		if filter.To != nil && e.Date.After(filter.To.Time) {
			continue
		}
		e := e
		list = append(list, &e)
	}
	return list, nil
}

func (s memExpenses) Update(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s memExpenses) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s memExpenses) SumByCategory(_ context.Context, userID uuid.UUID, category string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, e := range s.expenses {
		if e.UserID == userID && e.Category == category {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s memExpenses) SumsByCategory(_ context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, e := range s.expenses {
		if e.UserID == userID {
			totals[e.Category] = totals[e.Category].Add(e.Amount)
		}
	}
	return totals, nil
}

func (s memRevocations) Revoke(_ context.Context, token *models.RevokedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[token.JTI]; !ok {
		s.revoked[token.JTI] = *token
	}
	return nil
}

func (s memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

// recordingNotifier captures welcome messages and optionally fails.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.WelcomeMessage
	err  error
}

func (n *recordingNotifier) Welcome(_ context.Context, msg notify.WelcomeMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

var errBrokerDown = errors.New("broker unreachable")
