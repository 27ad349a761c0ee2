package service

import (
	"context"
	"testing"
	"time"

	"homebudget/internal/dto"
	"homebudget/pkg/auth"
	"homebudget/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// env wires every service over one in-memory store.
type env struct {
	store    *memStore
	jwt      *auth.JWTManager
	notifier *recordingNotifier
	logs     *observer.ObservedLogs
	auth     *AuthService
	users    *UserService
	budgets  *BudgetService
	expenses *ExpenseService
	reports  *ReportService
}

func newEnv(admission config.ExpenseAdmission) *env {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	store := newMemStore()
	e := &env{
		store:    store,
		jwt:      auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour, "homebudget-test"),
		notifier: &recordingNotifier{},
		logs:     logs,
	}
	e.auth = NewAuthService(memUsers{store}, memRevocations{store}, e.jwt, e.notifier, logger)
	e.users = NewUserService(memUsers{store}, memRevocations{store}, logger)
	e.budgets = NewBudgetService(memBudgets{store}, memExpenses{store}, logger)
	e.expenses = NewExpenseService(memExpenses{store}, memBudgets{store}, admission, logger)
	e.reports = NewReportService(e.budgets)
	return e
}

// register creates a user and returns its id together with the token pair.
func (e *env) register(t *testing.T, username string) (uuid.UUID, *dto.AuthResponse) {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), &dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.User.ID), resp
}

type AuthServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	env *env
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newEnv(config.AdmissionOff)
}

func (s *AuthServiceTestSuite) TestRegister() {
	resp, err := s.env.auth.Register(s.ctx, &dto.RegisterRequest{
		Username: " alice ",
		Email:    " Alice@Example.COM ",
		Password: "password123",
	})
	s.Require().NoError(err)

	s.Equal("alice", resp.User.Username)
	s.Equal("alice@example.com", resp.User.Email)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(int64(3600), resp.ExpiresIn)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)

	stored, err := memUsers{s.env.store}.GetByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.NotEqual("password123", stored.Password, "password must be hashed")
	s.True(auth.CheckPasswordHash("password123", stored.Password))

	s.Require().Len(s.env.notifier.sent, 1)
	s.Equal("alice@example.com", s.env.notifier.sent[0].Email)
}

func (s *AuthServiceTestSuite) TestRegisterValidation() {
	tests := []struct {
		name string
		req  dto.RegisterRequest
		want error
	}{
		{"missing username", dto.RegisterRequest{Email: "a@example.com", Password: "password123"}, ErrMissingField},
		{"blank username", dto.RegisterRequest{Username: "   ", Email: "a@example.com", Password: "password123"}, ErrMissingField},
		{"missing email", dto.RegisterRequest{Username: "a", Password: "password123"}, ErrMissingField},
		{"missing password", dto.RegisterRequest{Username: "a", Email: "a@example.com"}, ErrMissingField},
		{"malformed email", dto.RegisterRequest{Username: "a", Email: "not-an-email", Password: "password123"}, ErrInvalidEmail},
		{"short password", dto.RegisterRequest{Username: "a", Email: "a@example.com", Password: "1234567"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.env.auth.Register(s.ctx, &tt.req)
			s.ErrorIs(err, tt.want)
			s.Equal(KindValidation, KindOf(err))
		})
	}
	s.Zero(s.env.store.userCount())
}

func (s *AuthServiceTestSuite) TestRegisterDuplicates() {
	s.env.register(s.T(), "alice")

	_, err := s.env.auth.Register(s.ctx, &dto.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "password123",
	})
	s.ErrorIs(err, ErrDuplicateUsername)

	_, err = s.env.auth.Register(s.ctx, &dto.RegisterRequest{
		Username: "bob", Email: "ALICE@example.com", Password: "password123",
	})
	s.ErrorIs(err, ErrDuplicateEmail)
	s.Equal(KindConflict, KindOf(err))

	s.Equal(1, s.env.store.userCount(), "no duplicate row")
}

func (s *AuthServiceTestSuite) TestRegisterSurvivesNotifierFailure() {
	s.env.notifier.err = errBrokerDown

	resp, err := s.env.auth.Register(s.ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.Equal(1, s.env.store.userCount())

	failures := s.env.logs.FilterMessage("welcome notification failed").All()
	s.Require().Len(failures, 1)
	s.Equal(zapcore.WarnLevel, failures[0].Level)
}

func (s *AuthServiceTestSuite) TestLogin() {
	s.env.register(s.T(), "alice")

	resp, err := s.env.auth.Login(s.ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	s.Require().NoError(err)
	s.Equal("alice", resp.User.Username)

	claims, err := s.env.jwt.ValidateToken(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, claims.UserID)
	s.NotEmpty(claims.ID)
}

func (s *AuthServiceTestSuite) TestLoginFailuresAreGenericAndDoNotLock() {
	s.env.register(s.T(), "alice")

	for i := 0; i < 2; i++ {
		_, err := s.env.auth.Login(s.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
		s.ErrorIs(err, ErrInvalidCredentials)
		s.Equal(KindAuth, KindOf(err))
	}

	_, err := s.env.auth.Login(s.ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.env.auth.Login(s.ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	s.NoError(err, "no lockout after failed attempts")
}

func (s *AuthServiceTestSuite) TestAuthenticateRequest() {
	id, tokens := s.env.register(s.T(), "alice")

	claims, err := s.env.auth.AuthenticateRequest(s.ctx, tokens.AccessToken)
	s.Require().NoError(err)
	s.Equal(id.String(), claims.UserID)

	_, err = s.env.auth.AuthenticateRequest(s.ctx, tokens.RefreshToken)
	s.ErrorIs(err, auth.ErrInvalidToken, "refresh token is not an access token")

	_, err = s.env.auth.AuthenticateRequest(s.ctx, "garbage")
	s.ErrorIs(err, auth.ErrInvalidToken)
	s.Equal(KindAuth, KindOf(err))

	expired := auth.NewJWTManager("test-secret", -time.Minute, time.Hour, "homebudget-test")
	stale, err := expired.GenerateToken(id.String(), "alice", "alice@example.com")
	s.Require().NoError(err)
	_, err = s.env.auth.AuthenticateRequest(s.ctx, stale)
	s.ErrorIs(err, auth.ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestLogoutRevokesToken() {
	_, tokens := s.env.register(s.T(), "alice")

	claims, err := s.env.auth.AuthenticateRequest(s.ctx, tokens.AccessToken)
	s.Require().NoError(err)

	s.Require().NoError(s.env.auth.Logout(s.ctx, claims, &dto.LogoutRequest{RefreshToken: tokens.RefreshToken}))

	_, err = s.env.auth.AuthenticateRequest(s.ctx, tokens.AccessToken)
	s.ErrorIs(err, auth.ErrTokenRevoked)
	s.Equal(KindAuth, KindOf(err))

	_, err = s.env.auth.RefreshToken(s.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	s.ErrorIs(err, auth.ErrTokenRevoked)

	s.NoError(s.env.auth.Logout(s.ctx, claims, nil), "revoking twice is a no-op")
}

func (s *AuthServiceTestSuite) TestLogoutRejectsForeignRefreshToken() {
	_, alice := s.env.register(s.T(), "alice")
	_, bob := s.env.register(s.T(), "bob")

	claims, err := s.env.auth.AuthenticateRequest(s.ctx, alice.AccessToken)
	s.Require().NoError(err)

	err = s.env.auth.Logout(s.ctx, claims, &dto.LogoutRequest{RefreshToken: bob.RefreshToken})
	s.ErrorIs(err, auth.ErrInvalidToken)

	_, err = s.env.auth.AuthenticateRequest(s.ctx, alice.AccessToken)
	s.NoError(err, "nothing revoked on a rejected logout")
}

func (s *AuthServiceTestSuite) TestRefreshRotates() {
	_, tokens := s.env.register(s.T(), "alice")

	fresh, err := s.env.auth.RefreshToken(s.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	s.Require().NoError(err)
	s.NotEqual(tokens.RefreshToken, fresh.RefreshToken)

	_, err = s.env.auth.AuthenticateRequest(s.ctx, fresh.AccessToken)
	s.NoError(err)

	_, err = s.env.auth.RefreshToken(s.ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	s.ErrorIs(err, auth.ErrTokenRevoked, "a refresh token works once")

	_, err = s.env.auth.RefreshToken(s.ctx, &dto.RefreshTokenRequest{RefreshToken: fresh.AccessToken})
	s.ErrorIs(err, auth.ErrInvalidToken, "access tokens cannot refresh")

	_, err = s.env.auth.RefreshToken(s.ctx, &dto.RefreshTokenRequest{})
	s.ErrorIs(err, ErrMissingField)
}

func (s *AuthServiceTestSuite) TestStoreFailureIsStoreKind() {
	s.env.store.failWith = assert.AnError

	_, err := s.env.auth.Register(s.ctx, &dto.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "password123",
	})
	s.Require().Error(err)
	s.Equal(KindStore, KindOf(err))
	s.ErrorIs(err, assert.AnError)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, "store", KindStore.String())
	assert.Equal(t, KindStore, KindOf(assert.AnError))
}
