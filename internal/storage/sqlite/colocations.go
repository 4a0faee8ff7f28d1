package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

// CreateColocation persists a colocation, seeds its categories and adds the
// creator as first member, all in one transaction.
func (s *Store) CreateColocation(ctx context.Context, c *models.Colocation, categories []models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO colocations (id, name, currency, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Currency, c.CreatedBy, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert colocation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO colocation_members (colocation_id, user_id, joined_at) VALUES (?, ?, ?)",
		c.ID, c.CreatedBy, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership: %w", err)
	}

	for _, cat := range categories {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO categories (id, colocation_id, name) VALUES (?, ?, ?)",
			cat.ID, c.ID, cat.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetColocation retrieves a colocation by ID.
func (s *Store) GetColocation(ctx context.Context, id string) (*models.Colocation, error) {
	c := &models.Colocation{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, created_by, created_at FROM colocations WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.Currency, &c.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("colocation %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get colocation: %w", err)
	}

	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	return c, nil
}

// AddMember adds a user to a colocation.
func (s *Store) AddMember(ctx context.Context, colocationID, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO colocation_members (colocation_id, user_id, joined_at) VALUES (?, ?, ?)",
		colocationID, userID, at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListMembers returns the members of a colocation ordered by join date.
func (s *Store) ListMembers(ctx context.Context, colocationID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT colocation_id, user_id, joined_at FROM colocation_members WHERE colocation_id = ? ORDER BY joined_at, user_id",
		colocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var joinedAt int64
		if err := rows.Scan(&m.ColocationID, &m.UserID, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.JoinedAt = time.Unix(joinedAt, 0).UTC()
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// IsMember reports whether the user belongs to the colocation.
func (s *Store) IsMember(ctx context.Context, colocationID, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM colocation_members WHERE colocation_id = ? AND user_id = ?",
		colocationID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// ListCategories returns the categories of a colocation ordered by name.
func (s *Store) ListCategories(ctx context.Context, colocationID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, colocation_id, name FROM categories WHERE colocation_id = ? ORDER BY name",
		colocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.ColocationID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// CategoryBelongs reports whether the category exists in the colocation.
func (s *Store) CategoryBelongs(ctx context.Context, categoryID, colocationID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM categories WHERE id = ? AND colocation_id = ?",
		categoryID, colocationID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return true, nil
}
