package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// querier abstracts over *sql.DB and *sql.Tx so the query helpers serve both
// the storage and its transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction. All reads
// go through the same helpers the storage uses, so a status computation sees
// one consistent snapshot.
type sqliteTransaction struct {
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) ListExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listExpenses(ctx, t.tx, userID, filter)
}

func (t *sqliteTransaction) SumExpenses(ctx context.Context, userID int64, filter service.ExpenseFilter) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return sumExpenses(ctx, t.tx, userID, filter)
}

func (t *sqliteTransaction) CategorySummary(ctx context.Context, userID int64, filter service.ExpenseFilter) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return categorySummary(ctx, t.tx, userID, filter)
}

func (t *sqliteTransaction) MonthlySeries(ctx context.Context, userID int64, start, end time.Time) ([]service.MonthlyTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return monthlySeries(ctx, t.tx, userID, start, end)
}

func (t *sqliteTransaction) MaxExpense(ctx context.Context, userID int64, filter service.ExpenseFilter) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return maxExpense(ctx, t.tx, userID, filter)
}

func (t *sqliteTransaction) ListActiveBudgets(ctx context.Context, userID int64) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listActiveBudgets(ctx, t.tx, userID)
}
