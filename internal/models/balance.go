package models

import "time"

// MemberBalance is one member's entry in a balance vector. It is derived from
// expenses and confirmed payments and never persisted as a source of truth.
type MemberBalance struct {
	UserID string `json:"user_id"`

	// TotalPaid is the sum of expense totals this member advanced.
	TotalPaid Money `json:"total_paid"`

	// TotalOwed is the sum of expense shares allocated to this member.
	TotalOwed Money `json:"total_owed"`

	// Net is TotalPaid - TotalOwed adjusted for confirmed payments.
	// Positive means the member is owed money, negative means they owe.
	// Across a colocation the Net values always sum to exactly zero.
	Net Money `json:"net_balance"`
}

// SimplifiedDebt is one transfer in a minimal settlement plan. Applying every
// transfer of a plan to the balance vector it was computed from zeroes all
// net balances.
type SimplifiedDebt struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     Money  `json:"amount"`
}

// BalanceEventType distinguishes the two kinds of balance-affecting events.
type BalanceEventType string

const (
	BalanceEventExpense BalanceEventType = "expense"
	BalanceEventPayment BalanceEventType = "payment"
)

// BalanceEvent is one entry of a member's balance history: a signed amount
// from the member's point of view plus the running balance after the event.
type BalanceEvent struct {
	Date        time.Time        `json:"date"`
	EventType   BalanceEventType `json:"event_type"`
	EventID     string           `json:"event_id"`
	Description string           `json:"description"`
	Amount      Money            `json:"amount"`
	Running     Money            `json:"running_balance"`
}

// LedgerSnapshot is a consistent view of everything that affects balances in
// one colocation: all expenses with their splits and all confirmed payments,
// read inside a single transaction.
type LedgerSnapshot struct {
	ColocationID string
	Expenses     []Expense
	Payments     []Payment
}
