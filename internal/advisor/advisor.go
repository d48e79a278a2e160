// Package advisor answers structured spending queries. Each intent maps to
// one aggregation handler; all handlers read through the storage interface
// and return the uniform AIResponse envelope.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spendsense/spendsense/internal/budget"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

// Store is the slice of the persistence layer the handlers need. The full
// service.Storage satisfies it.
type Store interface {
	ListExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) ([]model.Expense, error)
	SumExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) (float64, error)
	CategorySummary(ctx context.Context, userID int64, filter service.ExpenseFilter) (map[string]float64, error)
	MonthlySeries(ctx context.Context, userID int64, start, end time.Time) ([]service.MonthlyTotal, error)
	MaxExpense(ctx context.Context, userID int64, filter service.ExpenseFilter) (*model.Expense, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error)
}

// handlerFunc is one aggregation handler. Domain-level failures come back as
// failed AIResponses; only unexpected errors travel on the error return.
type handlerFunc func(ctx context.Context, parsed model.ParsedIntent, userID int64) (model.AIResponse, error)

// Advisor dispatches parsed intents to aggregation handlers. It is
// stateless between calls; every answer is recomputed from the store.
type Advisor struct {
	store    Store
	budgets  *budget.Engine
	handlers map[model.Intent]handlerFunc
	now      func() time.Time
}

// New creates an advisor backed by the given store.
func New(store Store) *Advisor {
	a := &Advisor{
		store:   store,
		budgets: budget.NewEngine(store),
		now:     time.Now,
	}

	// The dispatch table is explicit: adding an intent without a handler
	// here leaves it answering with the fallback response.
	a.handlers = map[model.Intent]handlerFunc{
		model.IntentMonthlyTotal:         a.monthlyTotal,
		model.IntentCategoryBreakdown:    a.categoryBreakdown,
		model.IntentSpendingTrend:        a.spendingTrend,
		model.IntentHighestSpendCategory: a.highestSpendCategory,
		model.IntentCompareMonths:        a.compareMonths,
		model.IntentForecast:             a.forecast,
		model.IntentDetectAnomalies:      a.detectAnomalies,
		model.IntentBudgetSuggestions:    a.budgetSuggestions,
		model.IntentHighestExpense:       a.highestExpense,
		model.IntentBudgetCheck:          a.budgetCheck,
		model.IntentSuggestBudget:        a.suggestBudget,
		model.IntentAdvice:               a.personalizedAdvice,
	}

	return a
}

// ProcessQuery routes a parsed intent to its handler. Unrecognized intents
// get a fixed fallback; panics and storage errors are converted into failed
// responses here so no raw fault ever crosses the core boundary.
func (a *Advisor) ProcessQuery(ctx context.Context, parsed model.ParsedIntent, userID int64) (resp model.AIResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("query handler panicked",
				"intent", parsed.Intent,
				"user_id", userID,
				"panic", r)
			resp = failureResponse(fmt.Sprintf("Something went wrong answering that: %v", r))
		}
	}()

	handler, ok := a.handlers[parsed.Intent]
	if !ok {
		return failureResponse("I couldn't fully understand that request yet.")
	}

	out, err := handler(ctx, parsed, userID)
	if err != nil {
		slog.Error("query handler failed",
			"intent", parsed.Intent,
			"user_id", userID,
			"error", err)
		return failureResponse(fmt.Sprintf("Something went wrong answering that: %v", err))
	}

	return out
}

// categoryFilter resolves an extracted category name to its id, or nil when
// the name is empty or unknown. Unknown names simply widen the query rather
// than failing it.
func (a *Advisor) categoryFilter(ctx context.Context, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	category, err := a.store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", name, err)
	}
	if category == nil {
		return nil, nil
	}
	return &category.ID, nil
}

// intFilter reads an integer out of the free-form filter map, tolerating the
// numeric types JSON decoding produces.
func intFilter(filters map[string]any, key string) (int, bool) {
	v, ok := filters[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
