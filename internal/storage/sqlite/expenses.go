package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx so expense reads can run
// inside a snapshot transaction or standalone.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateExpense persists an expense together with its splits in one
// transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, colocation_id, paid_by, category_id, title, description, amount_cents, currency, split_type, expense_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.ColocationID, expense.PaidBy, expense.CategoryID,
		expense.Title, expense.Description, expense.Amount.Cents, expense.Amount.Currency,
		string(expense.SplitType), expense.ExpenseDate.Unix(), expense.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateExpense rewrites an expense and regenerates its splits atomically.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET paid_by = ?, category_id = ?, title = ?, description = ?, amount_cents = ?, currency = ?, split_type = ?, expense_date = ?
		 WHERE id = ? AND colocation_id = ?`,
		expense.PaidBy, expense.CategoryID, expense.Title, expense.Description,
		expense.Amount.Cents, expense.Amount.Currency, string(expense.SplitType),
		expense.ExpenseDate.Unix(), expense.ID, expense.ColocationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for _, split := range expense.Splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, share_cents) VALUES (?, ?, ?)",
			expense.ID, split.UserID, split.Share.Cents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// DeleteExpense removes an expense; splits go with it via ON DELETE CASCADE.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db, "WHERE e.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", id, storage.ErrNotFound)
	}
	return &expenses[0], nil
}

// ListExpenses returns all expenses of a colocation, newest first, with
// splits attached.
func (s *Store) ListExpenses(ctx context.Context, colocationID string) ([]models.Expense, error) {
	return queryExpenses(ctx, s.db, "WHERE e.colocation_id = ? ORDER BY e.expense_date DESC, e.created_at DESC", colocationID)
}

func queryExpenses(ctx context.Context, q querier, where string, args ...any) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT e.id, e.colocation_id, e.paid_by, e.category_id, e.title, e.description,
		        e.amount_cents, e.currency, e.split_type, e.expense_date, e.created_at
		 FROM expenses e `+where,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var description sql.NullString
		var expenseDate, createdAt int64
		if err := rows.Scan(
			&e.ID, &e.ColocationID, &e.PaidBy, &e.CategoryID, &e.Title, &description,
			&e.Amount.Cents, &e.Amount.Currency, (*string)(&e.SplitType), &expenseDate, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if description.Valid {
			e.Description = &description.String
		}
		e.ExpenseDate = time.Unix(expenseDate, 0).UTC()
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		if err := loadSplits(ctx, q, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func loadSplits(ctx context.Context, q querier, expense *models.Expense) error {
	rows, err := q.QueryContext(ctx,
		"SELECT expense_id, user_id, share_cents FROM expense_splits WHERE expense_id = ? ORDER BY user_id",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.ExpenseSplit
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.Share.Cents); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		split.Share.Currency = expense.Amount.Currency
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}
