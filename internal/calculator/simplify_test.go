package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colocash/backend/internal/models"
)

func balance(userID string, net int64) models.MemberBalance {
	return models.MemberBalance{UserID: userID, Net: cents(net)}
}

func TestSimplifySpecScenario(t *testing.T) {
	// A +2000, B -1000, C -1000 settles with exactly two transfers to A,
	// ordered by member id.
	debts, err := Simplify([]models.MemberBalance{
		balance("a", 2000),
		balance("b", -1000),
		balance("c", -1000),
	})
	require.NoError(t, err)
	require.Len(t, debts, 2)
	assert.Equal(t, models.SimplifiedDebt{FromUserID: "b", ToUserID: "a", Amount: cents(1000)}, debts[0])
	assert.Equal(t, models.SimplifiedDebt{FromUserID: "c", ToUserID: "a", Amount: cents(1000)}, debts[1])
}

func TestSimplifyRefusesUnbalancedInput(t *testing.T) {
	_, err := Simplify([]models.MemberBalance{
		balance("a", 2000),
		balance("b", -1000),
	})
	assert.ErrorIs(t, err, ErrUnbalancedLedger)
}

func TestSimplifyEmptyAndAllZero(t *testing.T) {
	debts, err := Simplify(nil)
	require.NoError(t, err)
	assert.Empty(t, debts)

	debts, err = Simplify([]models.MemberBalance{
		balance("a", 0),
		balance("b", 0),
	})
	require.NoError(t, err)
	assert.Empty(t, debts, "zero-balance members are omitted entirely")
}

func TestSimplifyTransferBoundAndReplay(t *testing.T) {
	tests := []struct {
		name     string
		balances []models.MemberBalance
	}{
		{
			name: "one creditor many debtors",
			balances: []models.MemberBalance{
				balance("a", 6000),
				balance("b", -1000),
				balance("c", -2000),
				balance("d", -3000),
			},
		},
		{
			name: "many creditors one debtor",
			balances: []models.MemberBalance{
				balance("a", -6000),
				balance("b", 1000),
				balance("c", 2000),
				balance("d", 3000),
			},
		},
		{
			name: "mixed with residuals pushed back",
			balances: []models.MemberBalance{
				balance("a", 5500),
				balance("b", 4500),
				balance("c", -3000),
				balance("d", -3000),
				balance("e", -4000),
			},
		},
		{
			name: "zero members interleaved",
			balances: []models.MemberBalance{
				balance("a", 123),
				balance("b", 0),
				balance("c", -100),
				balance("d", -23),
				balance("e", 0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debts, err := Simplify(tt.balances)
			require.NoError(t, err)

			// Replaying every transfer must zero all balances.
			remaining := make(map[string]int64)
			nonZero := 0
			var positiveVolume int64
			for _, b := range tt.balances {
				remaining[b.UserID] = b.Net.Cents
				if b.Net.Cents != 0 {
					nonZero++
				}
				if b.Net.Cents > 0 {
					positiveVolume += b.Net.Cents
				}
			}
			var volume int64
			for _, d := range debts {
				assert.True(t, d.Amount.IsPositive(), "transfers are strictly positive")
				remaining[d.FromUserID] += d.Amount.Cents
				remaining[d.ToUserID] -= d.Amount.Cents
				volume += d.Amount.Cents
			}
			for user, rem := range remaining {
				assert.Zerof(t, rem, "member %s not settled", user)
			}

			assert.LessOrEqual(t, len(debts), nonZero-1, "transfer count exceeds N-1")
			assert.Equal(t, positiveVolume, volume, "settled volume must equal sum of positive balances")
		})
	}
}

func TestSimplifyDeterminism(t *testing.T) {
	balances := []models.MemberBalance{
		balance("d", -500),
		balance("a", 1000),
		balance("b", 1000), // equal credit: tie must break by member id
		balance("c", -1500),
	}

	first, err := Simplify(balances)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Simplify(balances)
		require.NoError(t, err)
		assert.Equal(t, first, again, "identical input must produce identical output")
	}

	// With a and b tied at +1000, a settles first.
	require.NotEmpty(t, first)
	assert.Equal(t, "a", first[0].ToUserID)
}

func TestSimplifyEndToEndWithAggregate(t *testing.T) {
	// Full pipeline: allocate, aggregate, simplify, replay.
	members := []string{"u1", "u2", "u3", "u4"}
	shares, err := Allocate(cents(10001), Equal{}, members)
	require.NoError(t, err)

	e := models.Expense{PaidBy: "u2", Amount: cents(10001)}
	for _, s := range shares {
		e.Splits = append(e.Splits, models.ExpenseSplit{UserID: s.UserID, Share: s.Amount})
	}

	balances := Aggregate([]models.Expense{e}, []models.Payment{
		payment("u1", "u2", 500, models.PaymentStatusConfirmed),
	})
	debts, err := Simplify(balances)
	require.NoError(t, err)

	remaining := make(map[string]int64)
	for _, b := range balances {
		remaining[b.UserID] = b.Net.Cents
	}
	for _, d := range debts {
		remaining[d.FromUserID] += d.Amount.Cents
		remaining[d.ToUserID] -= d.Amount.Cents
	}
	for user, rem := range remaining {
		assert.Zerof(t, rem, "member %s not settled", user)
	}
}
