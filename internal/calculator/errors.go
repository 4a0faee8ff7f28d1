package calculator

import "errors"

var (
	// ErrInvalidSplit is returned by Allocate for any caller input problem:
	// empty participants, non-positive total, or a policy-specific validation
	// failure. The wrapped message carries the specific reason.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrUnbalancedLedger is returned by Simplify when the input balance
	// vector does not sum to exactly zero. It signals an upstream
	// data-integrity bug, never a user mistake; callers must fail closed.
	ErrUnbalancedLedger = errors.New("unbalanced ledger")
)
