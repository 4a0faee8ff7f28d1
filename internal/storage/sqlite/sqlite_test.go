package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "colocash-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedUser(t *testing.T, store *Store, email string) *models.User {
	t.Helper()

	user := models.NewUser(email, email, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

// seedColocation creates a colocation with default categories and the given
// extra members, returning the colocation and its category list.
func seedColocation(t *testing.T, store *Store, creator *models.User, members ...*models.User) (*models.Colocation, []models.Category) {
	t.Helper()
	ctx := context.Background()

	c := &models.Colocation{
		ID:        uuid.New().String(),
		Name:      "Rue des Lilas",
		Currency:  models.DefaultCurrency,
		CreatedBy: creator.ID,
		CreatedAt: time.Now().UTC(),
	}
	var categories []models.Category
	for _, name := range models.DefaultCategories {
		categories = append(categories, models.Category{
			ID:           uuid.New().String(),
			ColocationID: c.ID,
			Name:         name,
		})
	}
	if err := store.CreateColocation(ctx, c, categories); err != nil {
		t.Fatalf("CreateColocation failed: %v", err)
	}
	for _, m := range members {
		if err := store.AddMember(ctx, c.ID, m.ID, time.Now().UTC()); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	return c, categories
}

func TestStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create and retrieve by email and ID", func(t *testing.T) {
		user := seedUser(t, store, "alice@example.com")

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Errorf("GetUserByEmail returned %+v, want ID %s", byEmail, user.ID)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID == nil || byID.Email != "alice@example.com" {
			t.Errorf("GetUserByID returned %+v", byID)
		}
	})

	t.Run("missing user yields nil, nil", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected nil user, got %+v", user)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		seedUser(t, store, "dup@example.com")
		err := store.CreateUser(ctx, models.NewUser("dup@example.com", "Dup", "hash"))
		if err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})
}

func TestStoreColocations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")

	t.Run("create seeds creator membership and categories", func(t *testing.T) {
		c, categories := seedColocation(t, store, alice)

		got, err := store.GetColocation(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetColocation failed: %v", err)
		}
		if got.Name != c.Name || got.Currency != c.Currency {
			t.Errorf("GetColocation returned %+v, want %+v", got, c)
		}

		isMember, err := store.IsMember(ctx, c.ID, alice.ID)
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if !isMember {
			t.Error("Expected creator to be a member")
		}

		listed, err := store.ListCategories(ctx, c.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(listed) != len(categories) {
			t.Errorf("Expected %d categories, got %d", len(categories), len(listed))
		}
	})

	t.Run("membership", func(t *testing.T) {
		c, _ := seedColocation(t, store, alice, bob)

		members, err := store.ListMembers(ctx, c.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(members))
		}

		isMember, err := store.IsMember(ctx, c.ID, "stranger")
		if err != nil {
			t.Fatalf("IsMember failed: %v", err)
		}
		if isMember {
			t.Error("Expected stranger not to be a member")
		}
	})

	t.Run("missing colocation yields ErrNotFound", func(t *testing.T) {
		_, err := store.GetColocation(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("category scoping", func(t *testing.T) {
		c1, cats1 := seedColocation(t, store, alice)
		c2, _ := seedColocation(t, store, bob)

		ok, err := store.CategoryBelongs(ctx, cats1[0].ID, c1.ID)
		if err != nil {
			t.Fatalf("CategoryBelongs failed: %v", err)
		}
		if !ok {
			t.Error("Expected category to belong to its colocation")
		}

		ok, err = store.CategoryBelongs(ctx, cats1[0].ID, c2.ID)
		if err != nil {
			t.Fatalf("CategoryBelongs failed: %v", err)
		}
		if ok {
			t.Error("Expected category not to belong to another colocation")
		}
	})
}

func testExpense(c *models.Colocation, cat models.Category, paidBy string, cents int64) *models.Expense {
	return &models.Expense{
		ID:           uuid.New().String(),
		ColocationID: c.ID,
		PaidBy:       paidBy,
		CategoryID:   cat.ID,
		Title:        "Groceries run",
		Amount:       models.NewMoney(cents, c.Currency),
		SplitType:    models.SplitTypeEqual,
		ExpenseDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CreatedAt:    time.Now().UTC(),
	}
}

func TestStoreExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	c, cats := seedColocation(t, store, alice, bob)

	t.Run("create and retrieve with splits", func(t *testing.T) {
		expense := testExpense(c, cats[0], alice.ID, 3000)
		expense.Splits = []models.ExpenseSplit{
			{ExpenseID: expense.ID, UserID: alice.ID, Share: models.NewMoney(1500, c.Currency)},
			{ExpenseID: expense.ID, UserID: bob.ID, Share: models.NewMoney(1500, c.Currency)},
		}

		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount.Cents != 3000 {
			t.Errorf("Amount mismatch: got %d, want 3000", got.Amount.Cents)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("Expected 2 splits, got %d", len(got.Splits))
		}
		if got.SplitsTotal().Cents != got.Amount.Cents {
			t.Errorf("Splits sum %d does not match amount %d", got.SplitsTotal().Cents, got.Amount.Cents)
		}
	})

	t.Run("update replaces splits", func(t *testing.T) {
		expense := testExpense(c, cats[0], alice.ID, 1000)
		expense.Splits = []models.ExpenseSplit{
			{ExpenseID: expense.ID, UserID: alice.ID, Share: models.NewMoney(500, c.Currency)},
			{ExpenseID: expense.ID, UserID: bob.ID, Share: models.NewMoney(500, c.Currency)},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Amount = models.NewMoney(900, c.Currency)
		expense.Splits = []models.ExpenseSplit{
			{ExpenseID: expense.ID, UserID: bob.ID, Share: models.NewMoney(900, c.Currency)},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount.Cents != 900 {
			t.Errorf("Amount mismatch after update: got %d, want 900", got.Amount.Cents)
		}
		if len(got.Splits) != 1 || got.Splits[0].UserID != bob.ID {
			t.Errorf("Splits not replaced: %+v", got.Splits)
		}
	})

	t.Run("delete cascades splits", func(t *testing.T) {
		expense := testExpense(c, cats[0], alice.ID, 500)
		expense.Splits = []models.ExpenseSplit{
			{ExpenseID: expense.ID, UserID: alice.ID, Share: models.NewMoney(500, c.Currency)},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		_, err := store.GetExpense(ctx, expense.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("update of missing expense yields ErrNotFound", func(t *testing.T) {
		expense := testExpense(c, cats[0], alice.ID, 500)
		err := store.UpdateExpense(ctx, expense)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestStorePayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	c, _ := seedColocation(t, store, alice, bob)

	newPayment := func(t *testing.T, cents int64) *models.Payment {
		t.Helper()
		p, err := models.NewPayment(c.ID, bob.ID, alice.ID, models.NewMoney(cents, c.Currency), nil)
		if err != nil {
			t.Fatalf("NewPayment failed: %v", err)
		}
		if err := store.CreatePayment(ctx, p); err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}
		return p
	}

	t.Run("create and retrieve", func(t *testing.T) {
		p := newPayment(t, 1500)

		got, err := store.GetPayment(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.Status != models.PaymentStatusPending {
			t.Errorf("Expected pending status, got %s", got.Status)
		}
		if got.ResolvedAt != nil {
			t.Errorf("Expected nil ResolvedAt, got %v", got.ResolvedAt)
		}
	})

	t.Run("resolve persists terminal state", func(t *testing.T) {
		p := newPayment(t, 2000)
		if err := p.Confirm(alice.ID, time.Now()); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		if err := store.ResolvePayment(ctx, p); err != nil {
			t.Fatalf("ResolvePayment failed: %v", err)
		}

		got, err := store.GetPayment(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.Status != models.PaymentStatusConfirmed {
			t.Errorf("Expected confirmed status, got %s", got.Status)
		}
		if got.ResolvedAt == nil {
			t.Error("Expected ResolvedAt to be set")
		}
	})

	t.Run("resolve guard refuses already-resolved payment", func(t *testing.T) {
		p := newPayment(t, 2000)
		if err := p.Confirm(alice.ID, time.Now()); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		if err := store.ResolvePayment(ctx, p); err != nil {
			t.Fatalf("ResolvePayment failed: %v", err)
		}

		// Second resolve, as if a concurrent request raced the first.
		p.Status = models.PaymentStatusRejected
		err := store.ResolvePayment(ctx, p)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("Expected ErrInvalidTransition, got %v", err)
		}

		got, err := store.GetPayment(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPayment failed: %v", err)
		}
		if got.Status != models.PaymentStatusConfirmed {
			t.Errorf("Guard did not hold: status is %s", got.Status)
		}
	})

	t.Run("list with status filter", func(t *testing.T) {
		status := models.PaymentStatusPending
		pending, err := store.ListPayments(ctx, c.ID, &status)
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		for _, p := range pending {
			if p.Status != models.PaymentStatusPending {
				t.Errorf("Filter leaked status %s", p.Status)
			}
		}

		all, err := store.ListPayments(ctx, c.ID, nil)
		if err != nil {
			t.Fatalf("ListPayments failed: %v", err)
		}
		if len(all) <= len(pending) {
			t.Errorf("Expected more payments overall (%d) than pending (%d)", len(all), len(pending))
		}
	})

	t.Run("missing payment yields ErrNotFound", func(t *testing.T) {
		_, err := store.GetPayment(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreLedgerSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	c, cats := seedColocation(t, store, alice, bob)

	expense := testExpense(c, cats[0], alice.ID, 3000)
	expense.Splits = []models.ExpenseSplit{
		{ExpenseID: expense.ID, UserID: alice.ID, Share: models.NewMoney(1500, c.Currency)},
		{ExpenseID: expense.ID, UserID: bob.ID, Share: models.NewMoney(1500, c.Currency)},
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	confirmed, err := models.NewPayment(c.ID, bob.ID, alice.ID, models.NewMoney(1500, c.Currency), nil)
	if err != nil {
		t.Fatalf("NewPayment failed: %v", err)
	}
	if err := store.CreatePayment(ctx, confirmed); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if err := confirmed.Confirm(alice.ID, time.Now()); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if err := store.ResolvePayment(ctx, confirmed); err != nil {
		t.Fatalf("ResolvePayment failed: %v", err)
	}

	pending, err := models.NewPayment(c.ID, bob.ID, alice.ID, models.NewMoney(100, c.Currency), nil)
	if err != nil {
		t.Fatalf("NewPayment failed: %v", err)
	}
	if err := store.CreatePayment(ctx, pending); err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	snapshot, err := store.LedgerSnapshot(ctx, c.ID)
	if err != nil {
		t.Fatalf("LedgerSnapshot failed: %v", err)
	}

	if len(snapshot.Expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d", len(snapshot.Expenses))
	}
	if len(snapshot.Expenses[0].Splits) != 2 {
		t.Errorf("Expected expense splits in snapshot, got %d", len(snapshot.Expenses[0].Splits))
	}
	if len(snapshot.Payments) != 1 {
		t.Fatalf("Expected only the confirmed payment, got %d", len(snapshot.Payments))
	}
	if snapshot.Payments[0].ID != confirmed.ID {
		t.Errorf("Snapshot holds wrong payment: %s", snapshot.Payments[0].ID)
	}
}
