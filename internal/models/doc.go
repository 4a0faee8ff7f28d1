// Package models defines the core domain models for the colocation ledger.
//
// # Models
//
//   - Money: fixed-point amount in minor currency units (cents)
//   - User: registered member account
//   - Colocation: a shared household and its member set
//   - Category: expense category scoped to one colocation
//   - Expense / ExpenseSplit: a recorded expense and its per-member allocation
//   - Payment: a reimbursement between members, driven by a small state machine
//   - MemberBalance / SimplifiedDebt / BalanceEvent: derived balance views
//
// # Design principles
//
//  1. All monetary values are integer cents. Binary floating point never
//     represents money anywhere in this package or its consumers.
//  2. Derived views (balances, simplified debts, history) have no identity and
//     no storage of their own; they are recomputed from expenses and confirmed
//     payments.
//  3. Relationships use ID strings instead of pointers to avoid circular
//     references between models.
//  4. Identity is always an explicit parameter. Nothing in this package reads
//     the acting user from ambient state.
package models
