package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/model"
)

var testNow = time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)

func newTestAdvisor(store *mockStore) *Advisor {
	a := New(store)
	a.now = func() time.Time { return testNow }
	return a
}

func expenseOn(id, userID, categoryID int64, amount float64, description string, date time.Time) model.Expense {
	return model.Expense{
		ID:          id,
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: description,
		ExpenseDate: date,
	}
}

var testCategories = []model.Category{
	{ID: 1, Name: "food"},
	{ID: 2, Name: "entertainment"},
	{ID: 3, Name: "utilities"},
}

func intent(i model.Intent) model.ParsedIntent {
	return model.ParsedIntent{Intent: i, QueryType: model.QueryTypeSummary}
}

func TestMonthlyTotal_EmptyIsZeroSuccess(t *testing.T) {
	a := newTestAdvisor(&mockStore{categories: testCategories})

	resp := a.ProcessQuery(context.Background(), intent(model.IntentMonthlyTotal), 1)

	assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
	assert.Equal(t, 0.0, resp.Data["total"])
}

func TestHighestExpense_EmptyIsFailure(t *testing.T) {
	// Same empty data set as the zero-total case: "no data to rank" is a
	// failure while "zero spend" is a valid zero.
	a := newTestAdvisor(&mockStore{categories: testCategories})

	resp := a.ProcessQuery(context.Background(), intent(model.IntentHighestExpense), 1)

	assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
	assert.NotEmpty(t, resp.Response)
}

func TestJanuaryScenario(t *testing.T) {
	store := &mockStore{
		categories: testCategories,
		expenses: []model.Expense{
			expenseOn(1, 1, 1, 50, "groceries", time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)),
			expenseOn(2, 1, 2, 150, "concert", time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)),
			// Outside the window and for another user; both must be invisible.
			expenseOn(3, 1, 1, 999, "february", time.Date(2024, time.February, 2, 0, 0, 0, 0, time.UTC)),
			expenseOn(4, 2, 1, 999, "other user", time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)),
		},
	}
	a := newTestAdvisor(store)
	window := &model.TimeRange{Month: 1, Year: 2024}

	t.Run("category breakdown", func(t *testing.T) {
		parsed := intent(model.IntentCategoryBreakdown)
		parsed.Time = window
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		breakdown, ok := resp.Data["breakdown"].(map[string]float64)
		require.True(t, ok)
		assert.Equal(t, map[string]float64{"food": 50.0, "entertainment": 150.0}, breakdown)
	})

	t.Run("monthly total", func(t *testing.T) {
		parsed := intent(model.IntentMonthlyTotal)
		parsed.Time = window
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 200.0, resp.Data["total"].(float64), 0.001)
	})

	t.Run("highest spend category", func(t *testing.T) {
		parsed := intent(model.IntentHighestSpendCategory)
		parsed.Time = window
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Equal(t, "entertainment", resp.Data["category"])
		assert.InDelta(t, 150.0, resp.Data["amount"].(float64), 0.001)
	})

	t.Run("soft deleted expenses are excluded", func(t *testing.T) {
		deleted := testNow
		store.expenses[1].DeletedAt = &deleted
		defer func() { store.expenses[1].DeletedAt = nil }()

		parsed := intent(model.IntentMonthlyTotal)
		parsed.Time = window
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 50.0, resp.Data["total"].(float64), 0.001)
	})
}

func TestCompareMonths(t *testing.T) {
	store := &mockStore{
		categories: testCategories,
		expenses: []model.Expense{
			expenseOn(1, 1, 1, 100, "a", time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)),
			expenseOn(2, 1, 1, 250, "b", time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)),
		},
	}
	a := newTestAdvisor(store)

	t.Run("missing filters fail with a request for input", func(t *testing.T) {
		parsed := intent(model.IntentCompareMonths)
		parsed.Filters = map[string]any{"month1": 1, "year1": 2024}
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "month2")
		assert.Contains(t, resp.Response, "year2")
	})

	t.Run("complete filters compare the two windows", func(t *testing.T) {
		parsed := intent(model.IntentCompareMonths)
		// float64 values mimic JSON-decoded filters.
		parsed.Filters = map[string]any{"month1": 1.0, "year1": 2024.0, "month2": 2.0, "year2": 2024.0}
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 100.0, resp.Data["month1_total"].(float64), 0.001)
		assert.InDelta(t, 250.0, resp.Data["month2_total"].(float64), 0.001)
		assert.InDelta(t, 150.0, resp.Data["difference"].(float64), 0.001)
		assert.InDelta(t, 150.0, resp.Data["percent_change"].(float64), 0.001)
	})
}

func TestSpendingTrend(t *testing.T) {
	t.Run("no data fails", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		resp := a.ProcessQuery(context.Background(), intent(model.IntentSpendingTrend), 1)
		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
	})

	t.Run("series is chronological", func(t *testing.T) {
		store := &mockStore{
			categories: testCategories,
			expenses: []model.Expense{
				expenseOn(1, 1, 1, 300, "jun", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)),
				expenseOn(2, 1, 1, 100, "apr", time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC)),
				expenseOn(3, 1, 1, 200, "may", time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)),
			},
		}
		a := newTestAdvisor(store)
		resp := a.ProcessQuery(context.Background(), intent(model.IntentSpendingTrend), 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		points := resp.Data["trend"].([]map[string]any)
		require.Len(t, points, 3)
		assert.Equal(t, 4, points[0]["month"])
		assert.Equal(t, 5, points[1]["month"])
		assert.Equal(t, 6, points[2]["month"])
	})
}

func TestForecast(t *testing.T) {
	t.Run("insufficient history fails", func(t *testing.T) {
		store := &mockStore{
			categories: testCategories,
			expenses: []model.Expense{
				expenseOn(1, 1, 1, 100, "may", time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)),
				expenseOn(2, 1, 1, 100, "jun", time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)),
			},
		}
		a := newTestAdvisor(store)
		resp := a.ProcessQuery(context.Background(), intent(model.IntentForecast), 1)

		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "3 months")
	})

	t.Run("damped projection", func(t *testing.T) {
		var expenses []model.Expense
		for i := 0; i < 6; i++ {
			month := time.Month(int(time.January) + i)
			expenses = append(expenses, expenseOn(int64(i+1), 1, 1, float64((i+1)*100), "m",
				time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)))
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		parsed := intent(model.IntentForecast)
		parsed.Filters = map[string]any{"forecast_periods": 3}
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Equal(t, "increasing", resp.Data["trend_direction"])

		forecasts := resp.Data["forecast"].([]map[string]any)
		require.Len(t, forecasts, 3)

		// Strictly increasing history must produce strictly shrinking
		// increments: the damping factor pulls each step toward the
		// recent baseline.
		first := forecasts[0]["amount"].(float64)
		second := forecasts[1]["amount"].(float64)
		third := forecasts[2]["amount"].(float64)
		recentAvg := resp.Data["recent_average"].(float64)

		inc1 := first - recentAvg
		inc2 := second - first
		inc3 := third - second
		assert.Greater(t, inc1, inc2)
		assert.Greater(t, inc2, inc3)
		assert.Greater(t, inc3, 0.0)

		require.NotNil(t, resp.Confidence)
		assert.GreaterOrEqual(t, *resp.Confidence, 0.5)
		assert.LessOrEqual(t, *resp.Confidence, 0.95)
	})

	t.Run("zero average history defaults confidence to the floor", func(t *testing.T) {
		var expenses []model.Expense
		for i := 0; i < 3; i++ {
			month := time.Month(int(time.April) + i)
			expenses = append(expenses, expenseOn(int64(i+1), 1, 1, 0, "zero",
				time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)))
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		resp := a.ProcessQuery(context.Background(), intent(model.IntentForecast), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		require.NotNil(t, resp.Confidence)
		assert.InDelta(t, 0.5, *resp.Confidence, 0.001)
	})
}

func TestDetectAnomalies(t *testing.T) {
	t.Run("iqr outlier is flagged high severity", func(t *testing.T) {
		amounts := []float64{10, 10, 10, 10, 100}
		var expenses []model.Expense
		for i, amount := range amounts {
			expenses = append(expenses, expenseOn(int64(i+1), 1, 1, amount, "food run",
				testNow.AddDate(0, 0, -(i+1)*7)))
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		resp := a.ProcessQuery(context.Background(), intent(model.IntentDetectAnomalies), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)

		anomalies := resp.Data["anomalies"].([]anomaly)
		require.Len(t, anomalies, 1)
		assert.Equal(t, "food", anomalies[0].Category)
		assert.Equal(t, 100.0, anomalies[0].Amount)
		assert.Equal(t, "high", anomalies[0].Severity)
	})

	t.Run("categories below the sample minimum are skipped", func(t *testing.T) {
		var expenses []model.Expense
		for i, amount := range []float64{10, 10, 10, 1000} {
			expenses = append(expenses, expenseOn(int64(i+1), 1, 2, amount, "show",
				testNow.AddDate(0, 0, -(i+1)*7)))
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		resp := a.ProcessQuery(context.Background(), intent(model.IntentDetectAnomalies), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Empty(t, resp.Data["anomalies"])
	})

	t.Run("no anomalies is a reassuring success", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		resp := a.ProcessQuery(context.Background(), intent(model.IntentDetectAnomalies), 1)
		assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
	})
}

func TestBudgetSuggestions(t *testing.T) {
	t.Run("rising volatile category is flagged high priority", func(t *testing.T) {
		monthly := []float64{100, 100, 100, 100, 200, 250}
		var expenses []model.Expense
		for i, amount := range monthly {
			month := time.Month(int(time.February) + i)
			expenses = append(expenses, expenseOn(int64(i+1), 1, 1, amount, "food",
				time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC)))
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		resp := a.ProcessQuery(context.Background(), intent(model.IntentBudgetSuggestions), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)

		suggestions := resp.Data["suggestions"].([]budgetSuggestion)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "food", suggestions[0].Category)
		assert.Equal(t, "high", suggestions[0].Priority)
		assert.NotEmpty(t, suggestions[0].Advice)
		assert.Greater(t, suggestions[0].PotentialSavings, 0.0)
	})

	t.Run("too few monthly points is not evaluated", func(t *testing.T) {
		expenses := []model.Expense{
			expenseOn(1, 1, 1, 500, "a", time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)),
			expenseOn(2, 1, 1, 900, "b", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)),
		}
		a := newTestAdvisor(&mockStore{categories: testCategories, expenses: expenses})

		resp := a.ProcessQuery(context.Background(), intent(model.IntentBudgetSuggestions), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Empty(t, resp.Data["suggestions"])
	})
}

func TestBudgetCheck(t *testing.T) {
	categoryFood := int64(1)

	t.Run("no budgets is a success with guidance", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		resp := a.ProcessQuery(context.Background(), intent(model.IntentBudgetCheck), 1)

		assert.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Equal(t, "create_budget", resp.NextAction)
	})

	t.Run("over budget takes message precedence", func(t *testing.T) {
		store := &mockStore{
			categories: testCategories,
			budgets: []model.Budget{
				{ID: 1, UserID: 1, CategoryID: &categoryFood, Amount: 100, Period: model.PeriodMonthly,
					StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), IsActive: true, AlertThreshold: 0.8},
				{ID: 2, UserID: 1, Amount: 10000, Period: model.PeriodMonthly,
					StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), IsActive: true, AlertThreshold: 0.8},
			},
			expenses: []model.Expense{
				expenseOn(1, 1, 1, 150, "big shop", time.Date(2024, time.July, 5, 0, 0, 0, 0, time.UTC)),
			},
		}
		a := newTestAdvisor(store)

		resp := a.ProcessQuery(context.Background(), intent(model.IntentBudgetCheck), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "over budget")
		assert.Contains(t, resp.Response, "food")

		over := resp.Data["over_budget"].([]map[string]any)
		onTrack := resp.Data["on_track"].([]map[string]any)
		require.Len(t, over, 1)
		require.Len(t, onTrack, 1)
		assert.Equal(t, "overall", onTrack[0]["label"])
	})

	t.Run("approaching threshold without overrun", func(t *testing.T) {
		store := &mockStore{
			categories: testCategories,
			budgets: []model.Budget{
				{ID: 1, UserID: 1, CategoryID: &categoryFood, Amount: 100, Period: model.PeriodMonthly,
					StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), IsActive: true, AlertThreshold: 0.8},
			},
			expenses: []model.Expense{
				expenseOn(1, 1, 1, 85, "groceries", time.Date(2024, time.July, 5, 0, 0, 0, 0, time.UTC)),
			},
		}
		a := newTestAdvisor(store)

		resp := a.ProcessQuery(context.Background(), intent(model.IntentBudgetCheck), 1)
		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "Heads up")
	})
}

func TestSuggestBudget(t *testing.T) {
	t.Run("zero history is a success with guidance", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		resp := a.ProcessQuery(context.Background(), intent(model.IntentSuggestBudget), 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 0.0, resp.Data["suggested_budget"].(float64), 0.001)
		assert.Equal(t, "medium", resp.Data["confidence_level"])
	})

	t.Run("history drives the suggestion", func(t *testing.T) {
		store := &mockStore{
			categories: testCategories,
			expenses: []model.Expense{
				expenseOn(1, 1, 1, 300, "a", testNow.AddDate(0, 0, -10)),
				expenseOn(2, 1, 1, 300, "b", testNow.AddDate(0, 0, -40)),
				expenseOn(3, 1, 1, 300, "c", testNow.AddDate(0, 0, -70)),
			},
		}
		a := newTestAdvisor(store)

		parsed := intent(model.IntentSuggestBudget)
		parsed.Category = "food"
		resp := a.ProcessQuery(context.Background(), parsed, 1)

		require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
		assert.InDelta(t, 300.0, resp.Data["monthly_average"].(float64), 0.001)
		assert.InDelta(t, 330.0, resp.Data["suggested_budget"].(float64), 0.001)
		assert.InDelta(t, 270.0, resp.Data["stretch_goal"].(float64), 0.001)
		assert.Equal(t, "high", resp.Data["confidence_level"])
		assert.Equal(t, "food", resp.Data["category"])
	})
}

func TestPersonalizedAdvice(t *testing.T) {
	store := &mockStore{
		categories: testCategories,
		expenses: []model.Expense{
			expenseOn(1, 1, 1, 60, "a", testNow.AddDate(0, 0, -5)),
			expenseOn(2, 1, 2, 120, "b", testNow.AddDate(0, 0, -15)),
		},
	}
	a := newTestAdvisor(store)

	resp := a.ProcessQuery(context.Background(), intent(model.IntentAdvice), 1)

	require.Equal(t, model.StatusSuccess, resp.ExecutionStatus)
	assert.InDelta(t, 180.0, resp.Data["total_90_days"].(float64), 0.001)
	assert.Equal(t, 2, resp.Data["transaction_count"])
	assert.InDelta(t, 60.0, resp.Data["monthly_average"].(float64), 0.001)
	assert.InDelta(t, 90.0, resp.Data["average_per_transaction"].(float64), 0.001)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestProcessQuery_Boundary(t *testing.T) {
	t.Run("unrecognized intent gets the fixed fallback", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		resp := a.ProcessQuery(context.Background(), intent(model.Intent("time_travel")), 1)

		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
		assert.Equal(t, "I couldn't fully understand that request yet.", resp.Response)
	})

	t.Run("storage errors become failed envelopes", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{err: errors.New("disk on fire")})
		resp := a.ProcessQuery(context.Background(), intent(model.IntentMonthlyTotal), 1)

		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "disk on fire")
	})

	t.Run("panics are recovered at the dispatch boundary", func(t *testing.T) {
		a := newTestAdvisor(&mockStore{categories: testCategories})
		a.handlers[model.IntentAdvice] = func(context.Context, model.ParsedIntent, int64) (model.AIResponse, error) {
			panic("handler bug")
		}

		resp := a.ProcessQuery(context.Background(), intent(model.IntentAdvice), 1)
		assert.Equal(t, model.StatusFailed, resp.ExecutionStatus)
		assert.Contains(t, resp.Response, "handler bug")
	})
}
