package calculator

import (
	"container/heap"
	"fmt"

	"github.com/colocash/backend/internal/models"
)

// party is one side of the settlement matching: a member together with the
// (positive) number of cents still to receive or to pay.
type party struct {
	userID   string
	cents    int64
	currency string
}

// partyHeap is a max-heap ordered by amount, ties broken by ascending user ID
// so that identical balance vectors always settle in the same order.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }
func (h partyHeap) Less(i, j int) bool {
	if h[i].cents != h[j].cents {
		return h[i].cents > h[j].cents
	}
	return h[i].userID < h[j].userID
}
func (h partyHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *partyHeap) Push(x any)        { *h = append(*h, x.(party)) }
func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// Simplify reduces a balance vector to a minimal list of point-to-point
// transfers that zero every member's net balance: at most N-1 transfers for N
// members with a non-zero balance. The greedy extremal matching repeatedly
// settles the largest debtor against the largest creditor; it is the
// standard, audit-reproducible settlement for this class of product (true
// minimum transaction count is NP-hard and deliberately not attempted).
//
// Output is deterministic: identical input vectors produce identical
// transfers in identical order.
//
// Simplify refuses to run on a vector whose net balances do not sum to
// exactly zero and reports ErrUnbalancedLedger instead; that condition is an
// upstream aggregation bug, and producing a settlement from it would corrupt
// the ledger.
func Simplify(balances []models.MemberBalance) ([]models.SimplifiedDebt, error) {
	var sum int64
	for _, b := range balances {
		sum += b.Net.Cents
	}
	if sum != 0 {
		return nil, fmt.Errorf("%w: net balances sum to %d cents, want 0", ErrUnbalancedLedger, sum)
	}

	creditors := partyHeap{}
	debtors := partyHeap{}
	for _, b := range balances {
		switch {
		case b.Net.IsPositive():
			creditors = append(creditors, party{userID: b.UserID, cents: b.Net.Cents, currency: b.Net.Currency})
		case b.Net.IsNegative():
			debtors = append(debtors, party{userID: b.UserID, cents: -b.Net.Cents, currency: b.Net.Currency})
		}
	}
	heap.Init(&creditors)
	heap.Init(&debtors)

	var debts []models.SimplifiedDebt
	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(&creditors).(party)
		d := heap.Pop(&debtors).(party)

		t := c.cents
		if d.cents < t {
			t = d.cents
		}
		debts = append(debts, models.SimplifiedDebt{
			FromUserID: d.userID,
			ToUserID:   c.userID,
			Amount:     models.NewMoney(t, c.currency),
		})

		if c.cents -= t; c.cents > 0 {
			heap.Push(&creditors, c)
		}
		if d.cents -= t; d.cents > 0 {
			heap.Push(&debtors, d)
		}
	}
	return debts, nil
}
