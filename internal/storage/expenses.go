package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/common"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

const expenseColumns = `id, user_id, category_id, amount, description, expense_date, created_at, updated_at, deleted_at`

// CreateExpense inserts a new expense and returns it with its assigned id.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, category_id, amount, description, expense_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.UserID, expense.CategoryID, expense.Amount, expense.Description,
		expense.ExpenseDate, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get expense ID: %w", err)
	}

	created := *expense
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	slog.Debug("created expense", "id", id, "user_id", expense.UserID, "amount", expense.Amount)
	return &created, nil
}

// GetExpenseByID returns one expense, including soft-deleted ones so callers
// can distinguish "deleted" from "never existed".
func (s *SQLiteStorage) GetExpenseByID(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense rewrites the mutable fields of an existing expense.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	if err := validateID(expense.ID, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET category_id = ?, amount = ?, description = ?, expense_date = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		expense.CategoryID, expense.Amount, expense.Description, expense.ExpenseDate,
		time.Now().UTC(), expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", expense.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteExpense soft-deletes an expense. Aggregations stop seeing it but the
// row stays for auditability.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", id, common.ErrNotFound)
	}

	slog.Debug("soft-deleted expense", "id", id)
	return nil
}

// ListExpenses returns the live expenses matching the filter, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listExpenses(ctx, s.db, userID, filter)
}

// SumExpenses returns the total amount of live expenses matching the filter.
func (s *SQLiteStorage) SumExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumExpenses(ctx, s.db, userID, filter)
}

// CategorySummary returns per-category totals for live expenses matching the
// filter.
func (s *SQLiteStorage) CategorySummary(ctx context.Context, userID int64, filter service.ExpenseFilter) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return categorySummary(ctx, s.db, userID, filter)
}

// MonthlySeries returns per-month totals in [start, end), in chronological
// order. Months with no expenses produce no point.
func (s *SQLiteStorage) MonthlySeries(ctx context.Context, userID int64, start, end time.Time) ([]service.MonthlyTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return monthlySeries(ctx, s.db, userID, start, end)
}

// MaxExpense returns the single largest live expense matching the filter, or
// nil when nothing matches.
func (s *SQLiteStorage) MaxExpense(ctx context.Context, userID int64, filter service.ExpenseFilter) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return maxExpense(ctx, s.db, userID, filter)
}

// expenseFilterClause builds the WHERE fragment shared by every expense
// query. Soft-deleted rows are always excluded; the date range is half-open.
func expenseFilterClause(userID int64, filter service.ExpenseFilter) (string, []any) {
	clauses := []string{"user_id = ?", "deleted_at IS NULL"}
	args := []any{userID}

	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Start != nil {
		clauses = append(clauses, "expense_date >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		clauses = append(clauses, "expense_date < ?")
		args = append(args, *filter.End)
	}

	return strings.Join(clauses, " AND "), args
}

func listExpenses(ctx context.Context, q querier, userID int64, filter service.ExpenseFilter) ([]model.Expense, error) {
	where, args := expenseFilterClause(userID, filter)
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + where + ` ORDER BY expense_date DESC, id DESC`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	return expenses, rows.Err()
}

func sumExpenses(ctx context.Context, q querier, userID int64, filter service.ExpenseFilter) (float64, error) {
	where, args := expenseFilterClause(userID, filter)

	var total float64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE `+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

func categorySummary(ctx context.Context, q querier, userID int64, filter service.ExpenseFilter) (map[string]float64, error) {
	where, args := expenseFilterClause(userID, filter)
	rows, err := q.QueryContext(ctx, `
		SELECT c.name, SUM(e.amount) as total
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE `+prefixClauses(where, "e.")+`
		GROUP BY c.name
		ORDER BY total DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summary[category] = total
	}
	return summary, rows.Err()
}

func monthlySeries(ctx context.Context, q querier, userID int64, start, end time.Time) ([]service.MonthlyTotal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', expense_date) AS INTEGER) as year,
		       CAST(strftime('%m', expense_date) AS INTEGER) as month,
		       SUM(amount) as total
		FROM expenses
		WHERE user_id = ? AND deleted_at IS NULL AND expense_date >= ? AND expense_date < ?
		GROUP BY year, month
		ORDER BY year, month`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var series []service.MonthlyTotal
	for rows.Next() {
		var point service.MonthlyTotal
		if err := rows.Scan(&point.Year, &point.Month, &point.Total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		series = append(series, point)
	}
	return series, rows.Err()
}

func maxExpense(ctx context.Context, q querier, userID int64, filter service.ExpenseFilter) (*model.Expense, error) {
	where, args := expenseFilterClause(userID, filter)
	row := q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE `+where+` ORDER BY amount DESC, id ASC LIMIT 1`,
		args...)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query max expense: %w", err)
	}
	return expense, nil
}

// prefixClauses qualifies the shared filter's column names with a table
// alias for use in joined queries.
func prefixClauses(where, prefix string) string {
	for _, column := range []string{"user_id", "deleted_at", "category_id", "expense_date"} {
		where = strings.ReplaceAll(where, column, prefix+column)
	}
	return where
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*model.Expense, error) {
	var expense model.Expense
	var description sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&expense.ID, &expense.UserID, &expense.CategoryID, &expense.Amount,
		&description, &expense.ExpenseDate, &expense.CreatedAt, &expense.UpdatedAt,
		&deletedAt)
	if err != nil {
		return nil, err
	}
	expense.Description = description.String
	if deletedAt.Valid {
		expense.DeletedAt = &deletedAt.Time
	}
	return &expense, nil
}
