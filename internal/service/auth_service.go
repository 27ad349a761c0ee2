package service

import (
	"context"
	"errors"
	"time"

	"homebudget/internal/dto"
	"homebudget/internal/models"
	"homebudget/internal/notify"
	"homebudget/internal/repository"
	"homebudget/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const welcomeTimeout = 5 * time.Second

type AuthService struct {
	users      UserStore
	revoked    RevocationStore
	jwtManager *auth.JWTManager
	notifier   notify.Notifier
	logger     *zap.Logger
}

func NewAuthService(users UserStore, revoked RevocationStore, jwtManager *auth.JWTManager, notifier notify.Notifier, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		revoked:    revoked,
		jwtManager: jwtManager,
		notifier:   notifier,
		logger:     logger,
	}
}

// Register creates the account, sends a best-effort welcome notification
// and logs the new user in.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	in := dto.RegisterRequest{
		Username: cleanText(req.Username),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}
	if err := validateRequest(&in); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	if err := checkAvailable(ctx, s.users, uuid.Nil, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, storeError("hash password", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, userWriteError("create user", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	s.sendWelcome(ctx, user)

	return s.issueTokens(user)
}

func (s *AuthService) sendWelcome(ctx context.Context, user *models.User) {
	// the account is committed, a cancelled request must not skip the send
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeTimeout)
	defer cancel()

	err := s.notifier.Welcome(ctx, notify.WelcomeMessage{
		UserID:       user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt.UTC(),
	})
	if err != nil {
		s.logger.Warn("welcome notification failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}

	if !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshToken exchanges a refresh token for a new pair. The presented
// refresh token is revoked, so each one works once.
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	claims, err := s.checkToken(ctx, req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.tokenOwner(ctx, claims)
	if err != nil {
		return nil, err
	}

	if err := revokeClaims(ctx, s.revoked, claims); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// AuthenticateRequest is the gate in front of every protected operation:
// signature, expiry, token type, revocation and account existence.
func (s *AuthService) AuthenticateRequest(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.checkToken(ctx, token, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokenOwner(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the access token and, when supplied, the refresh token
// issued with it.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, req *dto.LogoutRequest) error {
	var refresh *auth.Claims
	if req != nil && req.RefreshToken != "" {
		rc, err := s.jwtManager.ValidateTokenType(req.RefreshToken, auth.TokenTypeRefresh)
		if err != nil {
			return err
		}
		if rc.UserID != claims.UserID {
			return auth.ErrInvalidToken
		}
		refresh = rc
	}

	if err := revokeClaims(ctx, s.revoked, claims); err != nil {
		return err
	}
	if refresh != nil {
		if err := revokeClaims(ctx, s.revoked, refresh); err != nil {
			return err
		}
	}

	s.logger.Info("user logged out", zap.String("user_id", claims.UserID))
	return nil
}

func (s *AuthService) checkToken(ctx context.Context, token string, want auth.TokenType) (*auth.Claims, error) {
	claims, err := s.jwtManager.ValidateTokenType(token, want)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, storeError("check revocation", err)
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// tokenOwner loads the user a token was issued to. Tokens of deleted
// accounts are invalid.
func (s *AuthService) tokenOwner(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, storeError("find user", err)
	}
	return user, nil
}

func revokeClaims(ctx context.Context, store RevocationStore, claims *auth.Claims) error {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return auth.ErrInvalidToken
	}

	token := &models.RevokedToken{
		JTI:       claims.ID,
		UserID:    userID,
		RevokedAt: time.Now(),
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := store.Revoke(ctx, token); err != nil {
		return storeError("revoke token", err)
	}
	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Username, user.Email)
	if err != nil {
		return nil, storeError("issue token", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, storeError("issue token", err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		User:         dto.NewUserResponse(user),
	}, nil
}

// checkAvailable reports a Duplicate* error when username or email belongs
// to a user other than self.
func checkAvailable(ctx context.Context, users UserStore, self uuid.UUID, username, email string) error {
	if username != "" {
		existing, err := users.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != self:
			return ErrDuplicateUsername
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeError("find user", err)
		}
	}
	if email != "" {
		existing, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != self:
			return ErrDuplicateEmail
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return storeError("find user", err)
		}
	}
	return nil
}

// userWriteError maps a unique-index violation that slipped past the
// availability check onto the matching Duplicate* error.
func userWriteError(op string, err error) error {
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		if conflict.Involves("email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateUsername
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return storeError(op, err)
}
