package models

import "time"

// Colocation represents a shared household. Every expense and payment belongs
// to exactly one colocation, and all amounts inside it share one currency.
type Colocation struct {
	// ID is the unique identifier for the colocation (UUID format).
	ID string `json:"id"`

	// Name is the display name of the household (e.g., "Rue des Lilas").
	Name string `json:"name"`

	// Currency is the single currency for the whole ledger of this
	// colocation. Fixed at creation.
	Currency string `json:"currency"`

	// CreatedBy is the user who created the colocation.
	CreatedBy string `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
}

// Member ties a user to a colocation.
type Member struct {
	ColocationID string    `json:"colocation_id"`
	UserID       string    `json:"user_id"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Category is an expense category scoped to one colocation.
type Category struct {
	ID           string `json:"id"`
	ColocationID string `json:"colocation_id"`
	Name         string `json:"name"`
}

// DefaultCategories are seeded when a colocation is created.
var DefaultCategories = []string{"Groceries", "Rent", "Utilities", "Household", "Other"}
