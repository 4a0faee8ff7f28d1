package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/colocash/backend/internal/calculator"
	"github.com/colocash/backend/internal/metrics"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/notify"
	"github.com/colocash/backend/internal/storage"
)

// ExpenseInput carries everything needed to record or rewrite an expense.
// Exactly one split description applies depending on SplitType: Weights for
// percentage, AmountCents for custom; equal needs neither.
type ExpenseInput struct {
	PaidBy      string
	CategoryID  string
	Title       string
	Description *string
	AmountCents int64
	SplitType   models.SplitType

	// Participants are the members the expense is split across.
	Participants []string

	// Weights maps participant to integer percentage (percentage split).
	Weights map[string]int64

	// Amounts maps participant to exact share in cents (custom split).
	Amounts map[string]int64

	ExpenseDate time.Time
}

// ExpenseService records expenses and materializes their splits.
type ExpenseService struct {
	store      storage.Store
	locks      *LedgerLocks
	dispatcher notify.Dispatcher
}

// NewExpenseService creates a new expense service.
func NewExpenseService(store storage.Store, locks *LedgerLocks, dispatcher notify.Dispatcher) *ExpenseService {
	return &ExpenseService{store: store, locks: locks, dispatcher: dispatcher}
}

// Create validates the input, allocates the splits and persists the expense.
func (s *ExpenseService) Create(ctx context.Context, colocationID, actorID string, input ExpenseInput) (*models.Expense, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(ctx, colocationID, input)
	if err != nil {
		return nil, err
	}
	expense.ID = uuid.New().String()
	expense.CreatedAt = time.Now().UTC()
	for i := range expense.Splits {
		expense.Splits[i].ExpenseID = expense.ID
	}

	unlock := s.locks.Lock(colocationID)
	defer unlock()

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("failed to create expense", "colocation_id", colocationID, "error", err)
		return nil, err
	}

	metrics.ExpenseRecorded()
	s.publish(ctx, notify.EventExpenseCreated, colocationID, expense.ID, actorID)
	slog.Info("expense recorded",
		"expense_id", expense.ID,
		"colocation_id", colocationID,
		"amount", expense.Amount.String(),
		"split_type", expense.SplitType)
	return expense, nil
}

// Update rewrites an expense, reallocating its splits from the new input.
func (s *ExpenseService) Update(ctx context.Context, colocationID, expenseID, actorID string, input ExpenseInput) (*models.Expense, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if existing.ColocationID != colocationID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	expense, err := s.buildExpense(ctx, colocationID, input)
	if err != nil {
		return nil, err
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt
	for i := range expense.Splits {
		expense.Splits[i].ExpenseID = expense.ID
	}

	unlock := s.locks.Lock(colocationID)
	defer unlock()

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("failed to update expense", "expense_id", expenseID, "error", err)
		return nil, err
	}

	s.publish(ctx, notify.EventExpenseUpdated, colocationID, expense.ID, actorID)
	slog.Info("expense updated", "expense_id", expense.ID, "colocation_id", colocationID)
	return expense, nil
}

// Delete removes an expense from the ledger.
func (s *ExpenseService) Delete(ctx context.Context, colocationID, expenseID, actorID string) error {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return err
	}

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if existing.ColocationID != colocationID {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	unlock := s.locks.Lock(colocationID)
	defer unlock()

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("failed to delete expense", "expense_id", expenseID, "error", err)
		return err
	}

	s.publish(ctx, notify.EventExpenseDeleted, colocationID, expenseID, actorID)
	slog.Info("expense deleted", "expense_id", expenseID, "colocation_id", colocationID)
	return nil
}

// Get returns one expense with its splits.
func (s *ExpenseService) Get(ctx context.Context, colocationID, expenseID, actorID string) (*models.Expense, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.ColocationID != colocationID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expense, nil
}

// List returns all expenses of a colocation, newest first.
func (s *ExpenseService) List(ctx context.Context, colocationID, actorID string) ([]models.Expense, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, colocationID)
}

// buildExpense validates the input against the colocation and allocates the
// splits. The returned expense has no ID or CreatedAt yet.
func (s *ExpenseService) buildExpense(ctx context.Context, colocationID string, input ExpenseInput) (*models.Expense, error) {
	c, err := s.store.GetColocation(ctx, colocationID)
	if err != nil {
		return nil, err
	}

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if !input.SplitType.Valid() {
		return nil, fmt.Errorf("%w: unknown split type %q", ErrValidation, input.SplitType)
	}

	amount := models.NewMoney(input.AmountCents, c.Currency)
	if err := amount.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ok, err := s.store.CategoryBelongs(ctx, input.CategoryID, colocationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: category does not belong to this colocation", ErrValidation)
	}

	// Payer and every participant must be members.
	for _, userID := range append([]string{input.PaidBy}, input.Participants...) {
		isMember, err := s.store.IsMember(ctx, colocationID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("%w: user %s is not a member", ErrValidation, userID)
		}
	}

	policy, err := buildPolicy(input, c.Currency)
	if err != nil {
		return nil, err
	}

	shares, err := calculator.Allocate(amount, policy, input.Participants)
	if err != nil {
		return nil, err
	}

	if input.ExpenseDate.IsZero() {
		input.ExpenseDate = time.Now().UTC()
	}

	expense := &models.Expense{
		ColocationID: colocationID,
		PaidBy:       input.PaidBy,
		CategoryID:   input.CategoryID,
		Title:        input.Title,
		Description:  input.Description,
		Amount:       amount,
		SplitType:    input.SplitType,
		ExpenseDate:  input.ExpenseDate.UTC(),
	}
	for _, share := range shares {
		expense.Splits = append(expense.Splits, models.ExpenseSplit{
			UserID: share.UserID,
			Share:  share.Amount,
		})
	}
	sort.Slice(expense.Splits, func(i, j int) bool {
		return expense.Splits[i].UserID < expense.Splits[j].UserID
	})

	if err := calculator.VerifyExpense(expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func buildPolicy(input ExpenseInput, currency string) (calculator.Policy, error) {
	switch input.SplitType {
	case models.SplitTypeEqual:
		return calculator.Equal{}, nil
	case models.SplitTypePercentage:
		if len(input.Weights) == 0 {
			return nil, fmt.Errorf("%w: percentage split requires weights", ErrValidation)
		}
		return calculator.Percentage{Weights: input.Weights}, nil
	case models.SplitTypeCustom:
		if len(input.Amounts) == 0 {
			return nil, fmt.Errorf("%w: custom split requires amounts", ErrValidation)
		}
		amounts := make(map[string]models.Money, len(input.Amounts))
		for userID, cents := range input.Amounts {
			amounts[userID] = models.NewMoney(cents, currency)
		}
		return calculator.Custom{Amounts: amounts}, nil
	}
	return nil, fmt.Errorf("%w: unknown split type %q", ErrValidation, input.SplitType)
}

func (s *ExpenseService) publish(ctx context.Context, eventType notify.EventType, colocationID, entityID, actorID string) {
	event := notify.NewEvent(eventType, colocationID, entityID, actorID)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish event", "type", eventType, "entity_id", entityID, "error", err)
	}
}
