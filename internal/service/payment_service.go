package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/colocash/backend/internal/metrics"
	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/notify"
	"github.com/colocash/backend/internal/storage"
)

// PaymentService manages reimbursements and their state machine. Transitions
// run under the colocation's ledger lock and the store's pending-only update
// guard, so a payment can reach exactly one terminal state.
type PaymentService struct {
	store      storage.Store
	locks      *LedgerLocks
	dispatcher notify.Dispatcher
}

// NewPaymentService creates a new payment service.
func NewPaymentService(store storage.Store, locks *LedgerLocks, dispatcher notify.Dispatcher) *PaymentService {
	return &PaymentService{store: store, locks: locks, dispatcher: dispatcher}
}

// Create raises a pending payment from the actor towards another member.
func (s *PaymentService) Create(ctx context.Context, colocationID, actorID, toUserID string, amountCents int64, note *string) (*models.Payment, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	c, err := s.store.GetColocation(ctx, colocationID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.store.IsMember(ctx, colocationID, toUserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: receiver is not a member", ErrValidation)
	}

	payment, err := models.NewPayment(colocationID, actorID, toUserID, models.NewMoney(amountCents, c.Currency), note)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	unlock := s.locks.Lock(colocationID)
	defer unlock()

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		slog.Error("failed to create payment", "colocation_id", colocationID, "error", err)
		return nil, err
	}

	s.publish(ctx, notify.EventPaymentCreated, colocationID, payment.ID, actorID)
	slog.Info("payment raised",
		"payment_id", payment.ID,
		"from", payment.FromUserID,
		"to", payment.ToUserID,
		"amount", payment.Amount.String())
	return payment, nil
}

// Confirm moves a pending payment to confirmed. Receiver only.
func (s *PaymentService) Confirm(ctx context.Context, colocationID, paymentID, actorID string) (*models.Payment, error) {
	return s.resolve(ctx, colocationID, paymentID, actorID, models.PaymentStatusConfirmed)
}

// Reject moves a pending payment to rejected. Receiver only.
func (s *PaymentService) Reject(ctx context.Context, colocationID, paymentID, actorID string) (*models.Payment, error) {
	return s.resolve(ctx, colocationID, paymentID, actorID, models.PaymentStatusRejected)
}

// Cancel moves a pending payment to cancelled. Sender only.
func (s *PaymentService) Cancel(ctx context.Context, colocationID, paymentID, actorID string) (*models.Payment, error) {
	return s.resolve(ctx, colocationID, paymentID, actorID, models.PaymentStatusCancelled)
}

func (s *PaymentService) resolve(ctx context.Context, colocationID, paymentID, actorID string, target models.PaymentStatus) (*models.Payment, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(colocationID)
	defer unlock()

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ColocationID != colocationID {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}

	now := time.Now().UTC()
	switch target {
	case models.PaymentStatusConfirmed:
		err = payment.Confirm(actorID, now)
	case models.PaymentStatusRejected:
		err = payment.Reject(actorID, now)
	case models.PaymentStatusCancelled:
		err = payment.Cancel(actorID, now)
	default:
		err = fmt.Errorf("%w: %s is not a terminal status", models.ErrInvalidTransition, target)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.ResolvePayment(ctx, payment); err != nil {
		slog.Error("failed to resolve payment", "payment_id", paymentID, "target", target, "error", err)
		return nil, err
	}

	metrics.PaymentResolved(string(target))
	s.publish(ctx, eventForStatus(target), colocationID, payment.ID, actorID)
	slog.Info("payment resolved", "payment_id", payment.ID, "status", payment.Status, "by", actorID)
	return payment, nil
}

// Get returns one payment.
func (s *PaymentService) Get(ctx context.Context, colocationID, paymentID, actorID string) (*models.Payment, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}

	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.ColocationID != colocationID {
		return nil, fmt.Errorf("payment %s: %w", paymentID, storage.ErrNotFound)
	}
	return payment, nil
}

// List returns the payments of a colocation, optionally filtered by status.
func (s *PaymentService) List(ctx context.Context, colocationID, actorID string, status *models.PaymentStatus) ([]models.Payment, error) {
	if err := requireMember(ctx, s.store, colocationID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, colocationID, status)
}

func eventForStatus(status models.PaymentStatus) notify.EventType {
	switch status {
	case models.PaymentStatusConfirmed:
		return notify.EventPaymentConfirmed
	case models.PaymentStatusRejected:
		return notify.EventPaymentRejected
	default:
		return notify.EventPaymentCancelled
	}
}

func (s *PaymentService) publish(ctx context.Context, eventType notify.EventType, colocationID, entityID, actorID string) {
	event := notify.NewEvent(eventType, colocationID, entityID, actorID)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish event", "type", eventType, "entity_id", entityID, "error", err)
	}
}
