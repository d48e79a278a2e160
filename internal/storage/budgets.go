package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
)

const budgetColumns = `id, user_id, category_id, amount, period, start_date, end_date, is_active, alert_threshold, created_at, deleted_at`

// CreateBudget inserts a new budget and returns it with its assigned id. A
// zero alert threshold is replaced with the default.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	created := *budget
	if created.AlertThreshold == 0 {
		created.AlertThreshold = model.DefaultAlertThreshold
	}
	if created.Period == "" {
		created.Period = model.PeriodMonthly
	}
	if err := validateBudget(&created); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount, period, start_date, end_date, is_active, alert_threshold, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		created.UserID, created.CategoryID, created.Amount, string(created.Period),
		created.StartDate, created.EndDate, created.AlertThreshold, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget ID: %w", err)
	}

	created.ID = id
	created.IsActive = true
	created.CreatedAt = now

	slog.Info("created budget",
		"id", id,
		"user_id", created.UserID,
		"amount", created.Amount,
		"period", created.Period)
	return &created, nil
}

// GetBudgetByID returns one budget, including inactive and soft-deleted ones.
func (s *SQLiteStorage) GetBudgetByID(ctx context.Context, id int64) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)

	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// ListActiveBudgets returns the user's active, non-deleted budgets.
func (s *SQLiteStorage) ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listActiveBudgets(ctx, s.db, userID)
}

// DeactivateBudget turns a budget off without deleting it.
func (s *SQLiteStorage) DeactivateBudget(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET is_active = 0 WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteBudget soft-deletes a budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budgets SET deleted_at = ?, is_active = 0 WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("budget %d: %w", id, common.ErrNotFound)
	}

	slog.Debug("soft-deleted budget", "id", id)
	return nil
}

func listActiveBudgets(ctx context.Context, q querier, userID int64) ([]model.Budget, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets
		 WHERE user_id = ? AND is_active = 1 AND deleted_at IS NULL
		 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	return budgets, rows.Err()
}

func scanBudget(row scanner) (*model.Budget, error) {
	var budget model.Budget
	var categoryID sql.NullInt64
	var period string
	var endDate, deletedAt sql.NullTime
	err := row.Scan(
		&budget.ID, &budget.UserID, &categoryID, &budget.Amount, &period,
		&budget.StartDate, &endDate, &budget.IsActive, &budget.AlertThreshold,
		&budget.CreatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	budget.Period = model.BudgetPeriod(period)
	if categoryID.Valid {
		budget.CategoryID = &categoryID.Int64
	}
	if endDate.Valid {
		budget.EndDate = &endDate.Time
	}
	if deletedAt.Valid {
		budget.DeletedAt = &deletedAt.Time
	}
	return &budget, nil
}
