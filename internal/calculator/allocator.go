// Package calculator implements the pure balance engine of the colocation
// ledger: expense allocation, balance aggregation, and debt simplification.
// Every function is a deterministic, side-effect-free computation on integer
// cents, safe to run concurrently and to recompute from scratch at any time.
package calculator

import (
	"fmt"
	"sort"

	"github.com/colocash/backend/internal/models"
)

// Policy is the closed set of split policies. Exactly three implementations
// exist: Equal, Percentage, and Custom.
type Policy interface {
	policy()
}

// Equal divides the total evenly among all participants, spreading any
// remainder cents one at a time in ascending member-ID order.
type Equal struct{}

// Percentage divides the total according to integer percentage weights that
// must sum to exactly 100. Remainder cents go to the largest fractional
// remainders first (largest-remainder method), ties broken by member ID.
type Percentage struct {
	// Weights maps participant ID to an integer percentage.
	Weights map[string]int64
}

// Custom uses caller-supplied per-participant amounts, validated to be
// non-negative and to sum cent-exactly to the total. No redistribution occurs.
type Custom struct {
	// Amounts maps participant ID to that member's exact share.
	Amounts map[string]models.Money
}

func (Equal) policy()      {}
func (Percentage) policy() {}
func (Custom) policy()     {}

// Share is one participant's allocated amount, before it is attached to a
// persisted expense.
type Share struct {
	UserID string
	Amount models.Money
}

// Allocate splits total across participants under the given policy. The
// returned shares are ordered by participant ID, are all non-negative, and
// sum to total cent-exactly. Any validation failure is reported as
// ErrInvalidSplit with the specific reason.
func Allocate(total models.Money, policy Policy, participants []string) ([]Share, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidSplit)
	}
	if total.Cents <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %s", ErrInvalidSplit, total)
	}

	// Work on a sorted copy; member ID is the deterministic tie-break order
	// for remainder distribution.
	ids := make([]string, len(participants))
	copy(ids, participants)
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, ids[i])
		}
	}

	switch p := policy.(type) {
	case Equal:
		return allocateEqual(total, ids), nil
	case Percentage:
		return allocatePercentage(total, p.Weights, ids)
	case Custom:
		return allocateCustom(total, p.Amounts, ids)
	default:
		return nil, fmt.Errorf("%w: unknown split policy %T", ErrInvalidSplit, policy)
	}
}

func allocateEqual(total models.Money, ids []string) []Share {
	n := int64(len(ids))
	base := total.Cents / n
	rem := total.Cents % n

	shares := make([]Share, len(ids))
	for i, id := range ids {
		cents := base
		// Remainder is always < n; hand out one cent each to the first
		// members in ID order until exhausted.
		if int64(i) < rem {
			cents++
		}
		shares[i] = Share{UserID: id, Amount: models.NewMoney(cents, total.Currency)}
	}
	return shares
}

func allocatePercentage(total models.Money, weights map[string]int64, ids []string) ([]Share, error) {
	if len(weights) != len(ids) {
		return nil, fmt.Errorf("%w: got %d weights for %d participants", ErrInvalidSplit, len(weights), len(ids))
	}
	var sum int64
	for _, id := range ids {
		w, ok := weights[id]
		if !ok {
			return nil, fmt.Errorf("%w: missing weight for participant %q", ErrInvalidSplit, id)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight %d for participant %q", ErrInvalidSplit, w, id)
		}
		sum += w
	}
	if sum != 100 {
		return nil, fmt.Errorf("%w: weights must sum to 100, got %d", ErrInvalidSplit, sum)
	}

	type frac struct {
		idx int
		rem int64
	}
	shares := make([]Share, len(ids))
	fracs := make([]frac, len(ids))
	var allocated int64
	for i, id := range ids {
		w := weights[id]
		cents := total.Cents * w / 100
		shares[i] = Share{UserID: id, Amount: models.NewMoney(cents, total.Currency)}
		fracs[i] = frac{idx: i, rem: total.Cents * w % 100}
		allocated += cents
	}

	// Largest-remainder method: leftover cents go to the participants whose
	// shares were rounded down the most, ties by member ID ascending.
	sort.Slice(fracs, func(a, b int) bool {
		if fracs[a].rem != fracs[b].rem {
			return fracs[a].rem > fracs[b].rem
		}
		return ids[fracs[a].idx] < ids[fracs[b].idx]
	})
	for leftover := total.Cents - allocated; leftover > 0; leftover-- {
		shares[fracs[0].idx].Amount.Cents++
		fracs = fracs[1:]
	}
	return shares, nil
}

func allocateCustom(total models.Money, amounts map[string]models.Money, ids []string) ([]Share, error) {
	if len(amounts) != len(ids) {
		return nil, fmt.Errorf("%w: got %d amounts for %d participants", ErrInvalidSplit, len(amounts), len(ids))
	}
	shares := make([]Share, len(ids))
	var sum int64
	for i, id := range ids {
		amt, ok := amounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: missing amount for participant %q", ErrInvalidSplit, id)
		}
		if amt.IsNegative() {
			return nil, fmt.Errorf("%w: negative share %s for participant %q", ErrInvalidSplit, amt, id)
		}
		if !amt.SameCurrency(total) {
			return nil, fmt.Errorf("%w: share currency %q does not match total currency %q", ErrInvalidSplit, amt.Currency, total.Currency)
		}
		shares[i] = Share{UserID: id, Amount: models.NewMoney(amt.Cents, total.Currency)}
		sum += amt.Cents
	}
	if sum != total.Cents {
		return nil, fmt.Errorf("%w: shares sum to %d cents, total is %d cents", ErrInvalidSplit, sum, total.Cents)
	}
	return shares, nil
}
