package advisor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

// mockStore is an in-memory Store for handler tests. It applies the same
// filtering rules the real storage layer does: soft-deleted rows are
// invisible and date ranges are half-open.
type mockStore struct {
	err        error
	expenses   []model.Expense
	categories []model.Category
	budgets    []model.Budget
}

func (m *mockStore) matches(e model.Expense, userID int64, filter service.ExpenseFilter) bool {
	if e.UserID != userID || e.DeletedAt != nil {
		return false
	}
	if filter.CategoryID != nil && e.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.Start != nil && e.ExpenseDate.Before(*filter.Start) {
		return false
	}
	if filter.End != nil && !e.ExpenseDate.Before(*filter.End) {
		return false
	}
	return true
}

func (m *mockStore) ListExpenses(_ context.Context, userID int64, filter service.ExpenseFilter) ([]model.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Expense
	for _, e := range m.expenses {
		if m.matches(e, userID, filter) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) SumExpenses(_ context.Context, userID int64, filter service.ExpenseFilter) (float64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var total float64
	for _, e := range m.expenses {
		if m.matches(e, userID, filter) {
			total += e.Amount
		}
	}
	return total, nil
}

func (m *mockStore) CategorySummary(_ context.Context, userID int64, filter service.ExpenseFilter) (map[string]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	names := make(map[int64]string)
	for _, c := range m.categories {
		names[c.ID] = c.Name
	}
	out := make(map[string]float64)
	for _, e := range m.expenses {
		if m.matches(e, userID, filter) {
			out[names[e.CategoryID]] += e.Amount
		}
	}
	return out, nil
}

func (m *mockStore) MonthlySeries(_ context.Context, userID int64, start, end time.Time) ([]service.MonthlyTotal, error) {
	if m.err != nil {
		return nil, m.err
	}
	filter := service.ExpenseFilter{Start: &start, End: &end}
	sums := make(map[int]float64)
	for _, e := range m.expenses {
		if m.matches(e, userID, filter) {
			sums[e.ExpenseDate.Year()*100+int(e.ExpenseDate.Month())] += e.Amount
		}
	}
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]service.MonthlyTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, service.MonthlyTotal{Year: k / 100, Month: k % 100, Total: sums[k]})
	}
	return out, nil
}

func (m *mockStore) MaxExpense(_ context.Context, userID int64, filter service.ExpenseFilter) (*model.Expense, error) {
	if m.err != nil {
		return nil, m.err
	}
	var best *model.Expense
	for i := range m.expenses {
		e := m.expenses[i]
		if !m.matches(e, userID, filter) {
			continue
		}
		if best == nil || e.Amount > best.Amount {
			best = &m.expenses[i]
		}
	}
	return best, nil
}

func (m *mockStore) GetCategories(_ context.Context) ([]model.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *mockStore) GetCategoryByID(_ context.Context, id int64) (*model.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			return &m.categories[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetCategoryByName(_ context.Context, name string) (*model.Category, error) {
	for i := range m.categories {
		if strings.EqualFold(m.categories[i].Name, name) {
			return &m.categories[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) FindCategoryByName(_ context.Context, name string) (*model.Category, error) {
	for i := range m.categories {
		if strings.Contains(strings.ToLower(m.categories[i].Name), strings.ToLower(name)) {
			return &m.categories[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListActiveBudgets(_ context.Context, userID int64) ([]model.Budget, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.IsActive && b.DeletedAt == nil {
			out = append(out, b)
		}
	}
	return out, nil
}
