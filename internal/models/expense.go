package models

import "time"

// SplitType defines how an expense is allocated among participants.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypePercentage SplitType = "percentage"
	SplitTypeCustom     SplitType = "custom"
)

// Valid reports whether t is one of the known split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeCustom:
		return true
	}
	return false
}

// Expense represents an expense recorded in a colocation. An expense owns its
// splits: they are created and replaced together with it, atomically, and the
// sum of split shares always equals Amount cent-exactly.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	ColocationID string `json:"colocation_id"`

	// PaidBy is the member who advanced the money.
	PaidBy string `json:"paid_by"`

	CategoryID  string  `json:"category_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`

	// Amount is the full expense total.
	Amount Money `json:"amount"`

	SplitType   SplitType `json:"split_type"`
	ExpenseDate time.Time `json:"expense_date"`
	CreatedAt   time.Time `json:"created_at"`

	// Splits is the materialized allocation of Amount across participants,
	// ordered by user ID.
	Splits []ExpenseSplit `json:"splits,omitempty"`
}

// ExpenseSplit is one member's allocated share of an expense.
type ExpenseSplit struct {
	ExpenseID string `json:"expense_id"`
	UserID    string `json:"user_id"`
	Share     Money  `json:"share"`
}

// SplitsTotal returns the cent-exact sum of the expense's split shares.
func (e *Expense) SplitsTotal() Money {
	var sum Money
	for _, s := range e.Splits {
		sum = sum.Add(s.Share)
	}
	return sum
}
