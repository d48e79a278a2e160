package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

type stubStore struct {
	budgets   []model.Budget
	spent     float64
	gotFilter service.ExpenseFilter
}

func (s *stubStore) SumExpenses(_ context.Context, _ int64, filter service.ExpenseFilter) (float64, error) {
	s.gotFilter = filter
	return s.spent, nil
}

func (s *stubStore) ListActiveBudgets(_ context.Context, _ int64) ([]model.Budget, error) {
	return s.budgets, nil
}

func TestEngine_Status(t *testing.T) {
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		amount       float64
		threshold    float64
		spent        float64
		wantPct      float64
		wantOver     bool
		wantAlert    bool
		wantRemained float64
	}{
		{
			name:   "on track",
			amount: 500, threshold: 0.8, spent: 200,
			wantPct: 40, wantOver: false, wantAlert: false, wantRemained: 300,
		},
		{
			name:   "approaching threshold alerts",
			amount: 500, threshold: 0.8, spent: 450,
			wantPct: 90, wantOver: false, wantAlert: true, wantRemained: 50,
		},
		{
			name:   "over budget",
			amount: 500, threshold: 0.8, spent: 620,
			wantPct: 124, wantOver: true, wantAlert: true, wantRemained: -120,
		},
		{
			name:   "exactly at the limit is not over",
			amount: 500, threshold: 0.8, spent: 500,
			wantPct: 100, wantOver: false, wantAlert: true, wantRemained: 0,
		},
		{
			name:   "zero amount budget does not divide by zero",
			amount: 0, threshold: 0.8, spent: 100,
			wantPct: 0, wantOver: true, wantAlert: false, wantRemained: -100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{spent: tt.spent}
			engine := NewEngine(store)

			b := model.Budget{
				ID:             1,
				UserID:         7,
				Amount:         tt.amount,
				Period:         model.PeriodMonthly,
				StartDate:      date(2024, time.January, 1),
				AlertThreshold: tt.threshold,
			}

			status, err := engine.Status(context.Background(), b, now)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantPct, status.PercentageUsed, 0.001)
			assert.Equal(t, tt.wantOver, status.IsOverBudget)
			assert.Equal(t, tt.wantAlert, status.ShouldAlert)
			assert.InDelta(t, tt.wantRemained, status.Remaining, 0.001)
			assert.Equal(t, tt.spent, status.Spent)
			assert.Equal(t, 18, status.DaysRemaining)
		})
	}
}

func TestEngine_StatusUsesClampedWindow(t *testing.T) {
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
	store := &stubStore{}
	engine := NewEngine(store)

	categoryID := int64(3)
	b := model.Budget{
		ID:             1,
		UserID:         7,
		CategoryID:     &categoryID,
		Amount:         100,
		Period:         model.PeriodMonthly,
		StartDate:      date(2024, time.March, 5),
		AlertThreshold: 0.8,
	}

	_, err := engine.Status(context.Background(), b, now)
	require.NoError(t, err)

	require.NotNil(t, store.gotFilter.Start)
	require.NotNil(t, store.gotFilter.End)
	assert.Equal(t, date(2024, time.March, 5), *store.gotFilter.Start)
	assert.Equal(t, date(2024, time.April, 1), *store.gotFilter.End)
	require.NotNil(t, store.gotFilter.CategoryID)
	assert.Equal(t, categoryID, *store.gotFilter.CategoryID)
}

func TestEngine_StatusAll(t *testing.T) {
	now := time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)
	store := &stubStore{
		spent: 50,
		budgets: []model.Budget{
			{ID: 1, UserID: 7, Amount: 100, Period: model.PeriodMonthly, StartDate: date(2024, time.January, 1), AlertThreshold: 0.8},
			{ID: 2, UserID: 7, Amount: 40, Period: model.PeriodWeekly, StartDate: date(2024, time.January, 1), AlertThreshold: 0.8},
		},
	}
	engine := NewEngine(store)

	statuses, err := engine.StatusAll(context.Background(), 7, now)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, int64(1), statuses[0].Budget.ID)
	assert.True(t, statuses[1].IsOverBudget)
}
