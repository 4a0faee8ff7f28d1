package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/colocash/backend/internal/models"
)

// LedgerSnapshot reads every expense (with splits) and every confirmed payment
// of a colocation inside a single read transaction, so the balance fold never
// observes a half-written expense.
func (s *Store) LedgerSnapshot(ctx context.Context, colocationID string) (*models.LedgerSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	expenses, err := queryExpenses(ctx, tx, "WHERE e.colocation_id = ? ORDER BY e.created_at, e.id", colocationID)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, colocation_id, from_user_id, to_user_id, amount_cents, currency, status, note, created_at, resolved_at
		 FROM payments WHERE colocation_id = ? AND status = 'confirmed' ORDER BY created_at, id`,
		colocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments, err := collectPayments(rows)
	if err != nil {
		return nil, err
	}

	return &models.LedgerSnapshot{
		ColocationID: colocationID,
		Expenses:     expenses,
		Payments:     payments,
	}, nil
}
