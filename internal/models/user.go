package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered member account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	// It doubles as the stable sort key for deterministic tie-breaking in
	// the balance engine.
	ID string `json:"id"`

	// Email is the user's email address (unique). Used for login.
	Email string `json:"email"`

	// DisplayName is shown to other members of the colocation.
	DisplayName string `json:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
