package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Terminal reports whether the status is final. Terminal payments are
// immutable.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusConfirmed, PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

var (
	// ErrInvalidTransition is returned when a payment transition is attempted
	// from a state that does not allow it.
	ErrInvalidTransition = errors.New("invalid payment transition")

	// ErrForbidden is returned when the acting member is not allowed to
	// perform the requested operation.
	ErrForbidden = errors.New("forbidden")
)

// Payment represents a reimbursement raised by one member towards another.
// Only confirmed payments affect balances. Mutation goes exclusively through
// the transition methods below; once a payment reaches a terminal state every
// further transition fails with ErrInvalidTransition.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	ColocationID string `json:"colocation_id"`

	// FromUserID is the sender (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the receiver (creditor being paid).
	ToUserID string `json:"to_user_id"`

	Amount Money         `json:"amount"`
	Status PaymentStatus `json:"status"`
	Note   *string       `json:"note,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewPayment creates a pending payment. The amount must be strictly positive
// and sender and receiver must differ.
func NewPayment(colocationID, from, to string, amount Money, note *string) (*Payment, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if from == to {
		return nil, fmt.Errorf("%w: a member cannot pay themselves", ErrInvalidTransition)
	}
	return &Payment{
		ID:           uuid.New().String(),
		ColocationID: colocationID,
		FromUserID:   from,
		ToUserID:     to,
		Amount:       amount,
		Status:       PaymentStatusPending,
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Confirm moves a pending payment to confirmed. Only the receiver may confirm.
func (p *Payment) Confirm(actorID string, at time.Time) error {
	if actorID != p.ToUserID {
		return fmt.Errorf("%w: only the receiver can confirm this payment", ErrForbidden)
	}
	return p.resolve(PaymentStatusConfirmed, at)
}

// Reject moves a pending payment to rejected. Only the receiver may reject.
func (p *Payment) Reject(actorID string, at time.Time) error {
	if actorID != p.ToUserID {
		return fmt.Errorf("%w: only the receiver can reject this payment", ErrForbidden)
	}
	return p.resolve(PaymentStatusRejected, at)
}

// Cancel moves a pending payment to cancelled. Only the sender may cancel.
func (p *Payment) Cancel(actorID string, at time.Time) error {
	if actorID != p.FromUserID {
		return fmt.Errorf("%w: only the sender can cancel this payment", ErrForbidden)
	}
	return p.resolve(PaymentStatusCancelled, at)
}

func (p *Payment) resolve(target PaymentStatus, at time.Time) error {
	if p.Status != PaymentStatusPending {
		return fmt.Errorf("%w: payment is %s, not pending", ErrInvalidTransition, p.Status)
	}
	p.Status = target
	resolved := at.UTC()
	p.ResolvedAt = &resolved
	return nil
}
