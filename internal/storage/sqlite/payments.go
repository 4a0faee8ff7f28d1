package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

// CreatePayment inserts a new payment.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, colocation_id, from_user_id, to_user_id, amount_cents, currency, status, note, created_at, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		payment.ID, payment.ColocationID, payment.FromUserID, payment.ToUserID,
		payment.Amount.Cents, payment.Amount.Currency, string(payment.Status),
		payment.Note, payment.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, colocation_id, from_user_id, to_user_id, amount_cents, currency, status, note, created_at, resolved_at
		 FROM payments WHERE id = ?`,
		id,
	)
	payment, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// ListPayments returns the payments of a colocation, newest first. A non-nil
// status restricts the result to that status.
func (s *Store) ListPayments(ctx context.Context, colocationID string, status *models.PaymentStatus) ([]models.Payment, error) {
	query := `SELECT id, colocation_id, from_user_id, to_user_id, amount_cents, currency, status, note, created_at, resolved_at
	          FROM payments WHERE colocation_id = ?`
	args := []any{colocationID}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ResolvePayment persists a terminal transition. The update is guarded so a
// payment that has already been resolved by a concurrent request is left
// untouched; the caller gets ErrInvalidTransition in that case.
func (s *Store) ResolvePayment(ctx context.Context, payment *models.Payment) error {
	var resolvedAt any
	if payment.ResolvedAt != nil {
		resolvedAt = payment.ResolvedAt.Unix()
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE payments SET status = ?, resolved_at = ? WHERE id = ? AND status = 'pending'",
		string(payment.Status), resolvedAt, payment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment %s is no longer pending: %w", payment.ID, models.ErrInvalidTransition)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	var note sql.NullString
	var createdAt int64
	var resolvedAt sql.NullInt64
	err := row.Scan(
		&p.ID, &p.ColocationID, &p.FromUserID, &p.ToUserID,
		&p.Amount.Cents, &p.Amount.Currency, (*string)(&p.Status),
		&note, &createdAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if note.Valid {
		p.Note = &note.String
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	if resolvedAt.Valid {
		t := time.Unix(resolvedAt.Int64, 0).UTC()
		p.ResolvedAt = &t
	}
	return p, nil
}

func collectPayments(rows *sql.Rows) ([]models.Payment, error) {
	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
