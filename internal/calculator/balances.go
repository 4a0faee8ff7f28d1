package calculator

import (
	"fmt"
	"sort"

	"github.com/colocash/backend/internal/models"
)

// VerifyExpense checks the split invariant on a fully built expense: every
// share non-negative and the shares summing exactly to the total. Callers
// persist an expense only after this passes.
func VerifyExpense(e *models.Expense) error {
	var sum int64
	for _, s := range e.Splits {
		if s.Share.Cents < 0 {
			return fmt.Errorf("%w: negative share for user %s", ErrInvalidSplit, s.UserID)
		}
		sum += s.Share.Cents
	}
	if sum != e.Amount.Cents {
		return fmt.Errorf("%w: shares sum to %d cents, expense total is %d", ErrInvalidSplit, sum, e.Amount.Cents)
	}
	return nil
}

// Aggregate folds a colocation's expenses and payments into one net balance
// per member. It is a pure, commutative fold: ordering of the inputs does not
// matter and the result can be recomputed from scratch at any time.
//
// For each expense the payer is credited the full total and every split
// member is debited their share. A confirmed payment is a balance-neutral
// transfer: it raises the sender's net and lowers the receiver's net by the
// same amount. Payments in any other status have zero effect.
//
// Aggregate cannot fail. When every expense satisfies the split invariant
// (shares sum to the total), the returned net balances sum to exactly zero;
// enforcing that invariant is the allocator's job, upstream of this fold.
// The result is ordered by user ID.
func Aggregate(expenses []models.Expense, payments []models.Payment) []models.MemberBalance {
	currency := ledgerCurrency(expenses, payments)

	balances := make(map[string]*models.MemberBalance)
	member := func(id string) *models.MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &models.MemberBalance{
			UserID:    id,
			TotalPaid: models.Money{Currency: currency},
			TotalOwed: models.Money{Currency: currency},
		}
		balances[id] = b
		return b
	}

	for i := range expenses {
		e := &expenses[i]
		member(e.PaidBy).TotalPaid = member(e.PaidBy).TotalPaid.Add(e.Amount)
		for _, s := range e.Splits {
			member(s.UserID).TotalOwed = member(s.UserID).TotalOwed.Add(s.Share)
		}
	}

	for _, b := range balances {
		b.Net = b.TotalPaid.Sub(b.TotalOwed)
	}

	for i := range payments {
		p := &payments[i]
		if p.Status != models.PaymentStatusConfirmed {
			continue
		}
		member(p.FromUserID).Net = member(p.FromUserID).Net.Add(p.Amount)
		member(p.ToUserID).Net = member(p.ToUserID).Net.Sub(p.Amount)
	}

	out := make([]models.MemberBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// ledgerCurrency picks the single currency of the ledger from whichever input
// carries one. A colocation holds exactly one currency, so the first hit wins.
func ledgerCurrency(expenses []models.Expense, payments []models.Payment) string {
	for i := range expenses {
		if c := expenses[i].Amount.Currency; c != "" {
			return c
		}
	}
	for i := range payments {
		if c := payments[i].Amount.Currency; c != "" {
			return c
		}
	}
	return ""
}
