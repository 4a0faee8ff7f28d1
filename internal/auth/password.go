package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/colocash/backend/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be between 8 and 72 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage is the slice of the store the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// dummyHash keeps the failure path of Authenticate doing real bcrypt work.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing equalizer"), bcrypt.DefaultCost)

// PasswordAuthenticator implements email+password auth with bcrypt hashes.
type PasswordAuthenticator struct {
	users UserStorage
}

func NewPasswordAuthenticator(users UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// bcrypt truncates input past 72 bytes, so longer passwords are rejected
// rather than silently weakened.
func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrWeakPassword
	}
	return nil
}

func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, displayName, string(hash))
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil || user == nil {
		// Burn a comparison anyway so the timing does not reveal whether
		// the account exists.
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
