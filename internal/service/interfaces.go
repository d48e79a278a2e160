// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/spendsense/spendsense/internal/model"
)

// ExpenseFilter narrows expense queries. Nil fields mean "no constraint";
// the date range is half-open [Start, End).
type ExpenseFilter struct {
	CategoryID *int64
	Start      *time.Time
	End        *time.Time
	Limit      int
}

// MonthlyTotal is one point of a per-month aggregation series.
type MonthlyTotal struct {
	Year  int
	Month int
	Total float64
}

// Storage defines the contract for our persistence layer. Every aggregation
// method excludes soft-deleted rows.
type Storage interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error)

	// Expense aggregation
	SumExpenses(ctx context.Context, userID int64, filter ExpenseFilter) (float64, error)
	CategorySummary(ctx context.Context, userID int64, filter ExpenseFilter) (map[string]float64, error)
	MonthlySeries(ctx context.Context, userID int64, start, end time.Time) ([]MonthlyTotal, error)
	MaxExpense(ctx context.Context, userID int64, filter ExpenseFilter) (*model.Expense, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error)
	GetBudgetByID(ctx context.Context, id int64) (*model.Budget, error)
	ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
	DeactivateBudget(ctx context.Context, id int64) error
	DeleteBudget(ctx context.Context, id int64) error

	// User operations
	CreateUser(ctx context.Context, name, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction scope. Reads performed
// through it see a consistent snapshot for the duration of one aggregation.
type Transaction interface {
	Commit() error
	Rollback() error

	ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error)
	SumExpenses(ctx context.Context, userID int64, filter ExpenseFilter) (float64, error)
	CategorySummary(ctx context.Context, userID int64, filter ExpenseFilter) (map[string]float64, error)
	MonthlySeries(ctx context.Context, userID int64, start, end time.Time) ([]MonthlyTotal, error)
	MaxExpense(ctx context.Context, userID int64, filter ExpenseFilter) (*model.Expense, error)
	ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
}
