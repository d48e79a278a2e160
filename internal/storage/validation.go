// Package storage provides the SQLite persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrInvalidBudget    = errors.New("invalid budget")
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a row id is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive, got %d", paramName, id)
	}
	return nil
}

// validateExpense checks the invariants every stored expense must hold.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, common.ErrInvalidAmount)
	}
	if expense.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidExpense)
	}
	if expense.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if expense.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: missing expense date", ErrInvalidExpense)
	}
	return nil
}

// validateBudget checks the invariants every stored budget must hold.
func validateBudget(budget *model.Budget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if budget.Amount <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, common.ErrInvalidAmount)
	}
	if budget.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidBudget)
	}
	if budget.AlertThreshold < 0 || budget.AlertThreshold > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, common.ErrInvalidThreshold)
	}
	switch budget.Period {
	case model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidBudget, common.ErrInvalidPeriod, budget.Period)
	}
	if budget.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidBudget)
	}
	if budget.EndDate != nil && budget.EndDate.Before(budget.StartDate) {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, ErrInvalidDateRange)
	}
	return nil
}
