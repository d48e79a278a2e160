package model

import "time"

// Category is a named grouping for expenses and budgets. Names are unique.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User owns expenses and budgets. Only the identifier matters to the
// aggregation layer; authentication lives outside this core.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
