package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/smart-hospital-client/internal/auth"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/repository"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// AuthService coordinates registration and login on the development server.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.DevServerConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Tokens exposes the token manager for the auth middleware.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterUser creates a new account.
func (s *AuthService) RegisterUser(ctx context.Context, fullName, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" || password == "" || role == "" {
		return nil, apperrors.NewValidationError("Missing required fields.", nil)
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role.", map[string]any{"role": role})
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("User with this email already exists.", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// LoginUser authenticates an account and issues a signed token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Missing email or password.", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}
