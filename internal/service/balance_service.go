package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/colocash/backend/internal/calculator"
	"github.com/colocash/backend/internal/metrics"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

// BalanceService derives balance views from the ledger. It holds no state of
// its own: every call reads a fresh snapshot and folds it.
type BalanceService struct {
	store storage.Store
}

// NewBalanceService creates a new balance service.
func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

// Balances returns the net balance vector of a colocation.
func (s *BalanceService) Balances(ctx context.Context, colocationID, actorID string) ([]models.MemberBalance, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	snapshot, err := s.store.LedgerSnapshot(ctx, colocationID)
	if err != nil {
		return nil, err
	}

	metrics.BalanceComputed()
	return calculator.Aggregate(snapshot.Expenses, snapshot.Payments), nil
}

// Simplified returns a minimal settlement plan for the colocation. If the
// balance vector does not sum to zero the ledger is corrupt and the request
// fails rather than producing a wrong plan.
func (s *BalanceService) Simplified(ctx context.Context, colocationID, actorID string) ([]models.SimplifiedDebt, error) {
	balances, err := s.Balances(ctx, colocationID, actorID)
	if err != nil {
		return nil, err
	}

	debts, err := calculator.Simplify(balances)
	if err != nil {
		metrics.UnbalancedLedger()
		slog.Error("refusing to simplify unbalanced ledger", "colocation_id", colocationID, "error", err)
		return nil, err
	}

	metrics.SimplifiedPlan(len(debts))
	return debts, nil
}

// History returns a member's balance timeline: one signed event per expense
// or confirmed payment that touches them, with a running balance. The final
// running balance equals the member's net balance.
func (s *BalanceService) History(ctx context.Context, colocationID, userID, actorID string) ([]models.BalanceEvent, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	isMember, err := s.store.IsMember(ctx, colocationID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	snapshot, err := s.store.LedgerSnapshot(ctx, colocationID)
	if err != nil {
		return nil, err
	}

	var events []models.BalanceEvent
	for _, e := range snapshot.Expenses {
		delta := int64(0)
		if e.PaidBy == userID {
			delta += e.Amount.Cents
		}
		for _, split := range e.Splits {
			if split.UserID == userID {
				delta -= split.Share.Cents
			}
		}
		if delta == 0 && e.PaidBy != userID {
			continue
		}
		events = append(events, models.BalanceEvent{
			Date:        e.ExpenseDate,
			EventType:   models.BalanceEventExpense,
			EventID:     e.ID,
			Description: e.Title,
			Amount:      models.NewMoney(delta, e.Amount.Currency),
		})
	}

	for _, p := range snapshot.Payments {
		delta := int64(0)
		switch userID {
		case p.FromUserID:
			delta = p.Amount.Cents
		case p.ToUserID:
			delta = -p.Amount.Cents
		default:
			continue
		}
		date := p.CreatedAt
		if p.ResolvedAt != nil {
			date = *p.ResolvedAt
		}
		events = append(events, models.BalanceEvent{
			Date:        date,
			EventType:   models.BalanceEventPayment,
			EventID:     p.ID,
			Description: paymentDescription(p, userID),
			Amount:      models.NewMoney(delta, p.Amount.Currency),
		})
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].EventID < events[j].EventID
	})

	var running models.Money
	for i := range events {
		running = running.Add(events[i].Amount)
		events[i].Running = running
	}

	return events, nil
}

func paymentDescription(p models.Payment, userID string) string {
	if userID == p.FromUserID {
		return "Payment sent"
	}
	return "Payment received"
}
