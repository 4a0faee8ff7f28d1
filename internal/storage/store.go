// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/colocash/backend/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, ...) without changing
// the service layer.
//
// The balance engine itself never touches the store; it consumes the
// LedgerSnapshot the store produces. Snapshot reads happen inside a single
// read transaction so the fold never observes a half-written expense.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user has the given email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns (nil, nil) when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Colocations. CreateColocation also seeds the given categories and adds
	// the creator as first member, atomically.
	CreateColocation(ctx context.Context, c *models.Colocation, categories []models.Category) error
	GetColocation(ctx context.Context, id string) (*models.Colocation, error)
	AddMember(ctx context.Context, colocationID, userID string, at time.Time) error
	ListMembers(ctx context.Context, colocationID string) ([]models.Member, error)
	IsMember(ctx context.Context, colocationID, userID string) (bool, error)

	// Categories
	ListCategories(ctx context.Context, colocationID string) ([]models.Category, error)
	CategoryBelongs(ctx context.Context, categoryID, colocationID string) (bool, error)

	// Expenses. Create and Update persist the expense together with its
	// splits in one transaction; Update replaces all splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpenses(ctx context.Context, colocationID string) ([]models.Expense, error)

	// Payments. ResolvePayment persists a terminal transition and is guarded
	// against races: the row is only updated if it is still pending.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, colocationID string, status *models.PaymentStatus) ([]models.Payment, error)
	ResolvePayment(ctx context.Context, payment *models.Payment) error

	// LedgerSnapshot reads all expenses (with splits) and all confirmed
	// payments of a colocation in one consistent transaction.
	LedgerSnapshot(ctx context.Context, colocationID string) (*models.LedgerSnapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
