// Package model defines the core domain types shared across the application.
package model

import "time"

// Expense represents a single recorded expenditure. Expenses are immutable
// once created except through explicit updates, and are soft-deleted so that
// historical aggregations stay intact.
type Expense struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	CategoryID  int64      `json:"category_id"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	ExpenseDate time.Time  `json:"expense_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the expense has been soft-deleted. Deleted
// expenses are excluded from every aggregation.
func (e *Expense) IsDeleted() bool {
	return e.DeletedAt != nil
}
