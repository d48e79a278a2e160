package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
	"github.com/spendsense/spendsense/internal/storage"
)

// fakeStorage is an in-memory service.Storage for handler tests.
type fakeStorage struct {
	err        error
	expenses   []model.Expense
	categories []model.Category
	budgets    []model.Budget
	users      []model.User
	nextID     int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		categories: []model.Category{
			{ID: 1, Name: "food"},
			{ID: 2, Name: "entertainment"},
		},
		nextID: 100,
	}
}

func (f *fakeStorage) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStorage) matches(e model.Expense, userID int64, filter service.ExpenseFilter) bool {
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

func (f *fakeStorage) CreateExpense(_ context.Context, expense *model.Expense) (*model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	if expense.Amount <= 0 {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidExpense, common.ErrInvalidAmount)
	}
	created := *expense
	created.ID = f.id()
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	f.expenses = append(f.expenses, created)
	return &created, nil
}

func (f *fakeStorage) GetExpenseByID(_ context.Context, id int64) (*model.Expense, error) {
	for i := range f.expenses {
		if f.expenses[i].ID == id {
			return &f.expenses[i], nil
		}
	}
	return nil, fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) UpdateExpense(_ context.Context, expense *model.Expense) error {
	for i := range f.expenses {
		if f.expenses[i].ID == expense.ID && f.expenses[i].DeletedAt == nil {
			expense.CreatedAt = f.expenses[i].CreatedAt
			f.expenses[i] = *expense
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", expense.ID, common.ErrNotFound)
}

func (f *fakeStorage) DeleteExpense(_ context.Context, id int64) error {
	for i := range f.expenses {
		if f.expenses[i].ID == id && f.expenses[i].DeletedAt == nil {
			now := time.Now().UTC()
			f.expenses[i].DeletedAt = &now
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) ListExpenses(_ context.Context, userID int64, filter service.ExpenseFilter) ([]model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Expense
	for _, e := range f.expenses {
		if f.matches(e, userID, filter) {
			out = append(out, e)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStorage) SumExpenses(_ context.Context, userID int64, filter service.ExpenseFilter) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var total float64
	for _, e := range f.expenses {
		if f.matches(e, userID, filter) {
			total += e.Amount
		}
	}
	return total, nil
}

func (f *fakeStorage) CategorySummary(_ context.Context, userID int64, filter service.ExpenseFilter) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make(map[int64]string)
	for _, c := range f.categories {
		names[c.ID] = c.Name
	}
	out := make(map[string]float64)
	for _, e := range f.expenses {
		if f.matches(e, userID, filter) {
			out[names[e.CategoryID]] += e.Amount
		}
	}
	return out, nil
}

func (f *fakeStorage) MonthlySeries(_ context.Context, userID int64, start, end time.Time) ([]service.MonthlyTotal, error) {
	if f.err != nil {
		return nil, f.err
	}
	filter := service.ExpenseFilter{Start: &start, End: &end}
	sums := make(map[int]float64)
	for _, e := range f.expenses {
		if f.matches(e, userID, filter) {
			sums[e.ExpenseDate.Year()*100+int(e.ExpenseDate.Month())] += e.Amount
		}
	}
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	series := make([]service.MonthlyTotal, 0, len(keys))
	for _, k := range keys {
		series = append(series, service.MonthlyTotal{Year: k / 100, Month: k % 100, Total: sums[k]})
	}
	return series, nil
}

func (f *fakeStorage) MaxExpense(_ context.Context, userID int64, filter service.ExpenseFilter) (*model.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	var best *model.Expense
	for i := range f.expenses {
		e := f.expenses[i]
		if !f.matches(e, userID, filter) {
			continue
		}
		if best == nil || e.Amount > best.Amount {
			best = &f.expenses[i]
		}
	}
	return best, nil
}

func (f *fakeStorage) GetCategories(_ context.Context) ([]model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fakeStorage) GetCategoryByID(_ context.Context, id int64) (*model.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) GetCategoryByName(_ context.Context, name string) (*model.Category, error) {
	for i := range f.categories {
		if strings.EqualFold(f.categories[i].Name, name) {
			return &f.categories[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) FindCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if exact, err := f.GetCategoryByName(ctx, name); err != nil || exact != nil {
		return exact, err
	}
	for i := range f.categories {
		if strings.Contains(strings.ToLower(f.categories[i].Name), strings.ToLower(name)) {
			return &f.categories[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) CreateCategory(_ context.Context, name string) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	category := model.Category{ID: f.id(), Name: strings.ToLower(name), CreatedAt: time.Now().UTC()}
	f.categories = append(f.categories, category)
	return &category, nil
}

func (f *fakeStorage) CreateBudget(_ context.Context, budget *model.Budget) (*model.Budget, error) {
	if f.err != nil {
		return nil, f.err
	}
	if budget.Amount <= 0 {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidBudget, common.ErrInvalidAmount)
	}
	created := *budget
	created.ID = f.id()
	created.IsActive = true
	if created.AlertThreshold == 0 {
		created.AlertThreshold = model.DefaultAlertThreshold
	}
	if created.Period == "" {
		created.Period = model.PeriodMonthly
	}
	f.budgets = append(f.budgets, created)
	return &created, nil
}

func (f *fakeStorage) GetBudgetByID(_ context.Context, id int64) (*model.Budget, error) {
	for i := range f.budgets {
		if f.budgets[i].ID == id {
			return &f.budgets[i], nil
		}
	}
	return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) ListActiveBudgets(_ context.Context, userID int64) ([]model.Budget, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Budget
	for _, b := range f.budgets {
		if b.UserID == userID && b.IsActive && b.DeletedAt == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStorage) DeactivateBudget(_ context.Context, id int64) error {
	for i := range f.budgets {
		if f.budgets[i].ID == id && f.budgets[i].DeletedAt == nil {
			f.budgets[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) DeleteBudget(_ context.Context, id int64) error {
	for i := range f.budgets {
		if f.budgets[i].ID == id && f.budgets[i].DeletedAt == nil {
			now := time.Now().UTC()
			f.budgets[i].DeletedAt = &now
			f.budgets[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) CreateUser(_ context.Context, name, email string) (*model.User, error) {
	user := model.User{ID: f.id(), Name: name, Email: strings.ToLower(email), CreatedAt: time.Now().UTC()}
	f.users = append(f.users, user)
	return &user, nil
}

func (f *fakeStorage) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, common.ErrNotFound)
}

func (f *fakeStorage) Migrate(_ context.Context) error { return nil }

func (f *fakeStorage) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("not supported in fake")
}

func (f *fakeStorage) Close() error { return nil }
