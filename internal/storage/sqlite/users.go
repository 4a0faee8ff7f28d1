package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/colocash/backend/internal/models"
)

const userColumns = "id, email, display_name, password_hash, created_at, updated_at"

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns (nil, nil) when no account uses the address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID returns (nil, nil) when the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user               models.User
		createdAt, updated int64
	)
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &createdAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.UpdatedAt = time.Unix(updated, 0).UTC()
	return &user, nil
}
