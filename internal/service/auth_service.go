package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colocash/backend/internal/auth"
	"github.com/colocash/backend/internal/models"
)

// AuthService handles registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Register creates a new user account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*models.User, string, error) {
	if email == "" {
		return nil, "", fmt.Errorf("%w: email required", ErrValidation)
	}
	if displayName == "" {
		return nil, "", fmt.Errorf("%w: display name required", ErrValidation)
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user and returns it with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("failed to generate token", "user_id", user.ID, "error", err)
		return nil, "", err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}
