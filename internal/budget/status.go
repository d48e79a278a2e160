package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

// Store is the slice of the persistence layer the engine needs. The full
// service.Storage satisfies it.
type Store interface {
	SumExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) (float64, error)
	ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
}

// Engine derives budget statuses from the expense store. It holds no state
// between calls; every status request recomputes from storage.
type Engine struct {
	store Store
}

// NewEngine creates a budget status engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Status computes the current-period status for a single budget.
func (e *Engine) Status(ctx context.Context, b model.Budget, now time.Time) (*model.BudgetStatus, error) {
	start, end := PeriodWindow(b, now)

	filter := service.ExpenseFilter{
		CategoryID: b.CategoryID,
		Start:      &start,
		End:        &end,
	}
	spent, err := e.store.SumExpenses(ctx, b.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("sum expenses for budget %d: %w", b.ID, err)
	}

	status := &model.BudgetStatus{
		Budget:        b,
		PeriodStart:   start,
		PeriodEnd:     end,
		Spent:         spent,
		Remaining:     b.Amount - spent,
		IsOverBudget:  spent > b.Amount,
		DaysRemaining: DaysRemaining(end, now),
	}

	// A zero-amount budget reads as 0% used rather than dividing by zero.
	if b.Amount > 0 {
		status.PercentageUsed = spent / b.Amount * 100
	}
	status.ShouldAlert = status.PercentageUsed >= b.AlertThreshold*100

	return status, nil
}

// StatusAll computes statuses for every active budget of a user.
func (e *Engine) StatusAll(ctx context.Context, userID int64, now time.Time) ([]model.BudgetStatus, error) {
	budgets, err := e.store.ListActiveBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}

	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := e.Status(ctx, b, now)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}

	return statuses, nil
}
