package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colocash/backend/internal/models"
)

type memoryUserStorage struct {
	byEmail map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUserStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUserStorage())

	t.Run("register and authenticate", func(t *testing.T) {
		user, err := a.Register(ctx, "alice@example.com", "Alice", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, "correct horse", user.PasswordHash)

		got, err := a.Authenticate(ctx, "alice@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "alice@example.com", "battery staple")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "nobody@example.com", "whatever pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "alice@example.com", "Alice Again", "another pass")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "bob@example.com", "Bob", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("password beyond bcrypt limit rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "bob@example.com", "Bob", strings.Repeat("x", 73))
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}

func TestJWTManager(t *testing.T) {
	user := models.NewUser("alice@example.com", "Alice", "hash")

	t.Run("round trip", func(t *testing.T) {
		m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
		token, err := m.Generate(user)
		require.NoError(t, err)

		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		m := NewJWTManager("secret-one", time.Hour)
		token, err := m.Generate(user)
		require.NoError(t, err)

		other := NewJWTManager("secret-two", time.Hour)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		m := NewJWTManager("test-secret", -time.Minute)
		token, err := m.Generate(user)
		require.NoError(t, err)

		_, err = m.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
