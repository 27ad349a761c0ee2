package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homebudget/internal/dto"
	"homebudget/internal/models"
	"homebudget/internal/repository"
	"homebudget/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages the authenticated user's own account.
type UserService struct {
	users   UserStore
	revoked RevocationStore
	logger  *zap.Logger
}

func NewUserService(users UserStore, revoked RevocationStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:   users,
		revoked: revoked,
		logger:  logger,
	}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("find user", err)
	}
	return user, nil
}

// UpdateProfile changes username and/or email. Keeping one's own current
// value is not a collision.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	var username, email string
	in := dto.UpdateProfileRequest{}
	if req.Username != nil {
		username = cleanText(*req.Username)
		in.Username = &username
	}
	if req.Email != nil {
		email = normalizeEmail(*req.Email)
		in.Email = &email
	}
	if err := validateRequest(&in); err != nil {
		return nil, err
	}
	if in.Username != nil && username == "" {
		return nil, fmt.Errorf("%w: username", ErrMissingField)
	}
	if in.Email != nil && email == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingField)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := checkAvailable(ctx, s.users, user.ID, username, email); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, userWriteError("update user", err)
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return ErrIncorrectPassword
	}
	if err := checkPassword(req.NewPassword); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return storeError("hash password", err)
	}

	user.Password = hashed
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return userWriteError("update user", err)
	}

	s.logger.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

// Delete removes the account with all of its budgets and expenses and
// revokes the token used for the request.
func (s *UserService) Delete(ctx context.Context, claims *auth.Claims) error {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return auth.ErrInvalidToken
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return storeError("delete user", err)
	}

	if err := revokeClaims(ctx, s.revoked, claims); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	return nil
}
