package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
	"github.com/spendsense/spendsense/internal/storage"
)

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveUser returns the user ID from the --user flag, falling back to the
// configured default user.
func resolveUser(cmd *cobra.Command, cfg *config.Config) int64 {
	userID, _ := cmd.Root().PersistentFlags().GetInt64("user")
	if userID > 0 {
		return userID
	}
	return cfg.DefaultUser
}

// categoryNamer builds an ID-to-name lookup for rendering tables. Unknown
// IDs render as "uncategorized".
func categoryNamer(ctx context.Context, store service.Storage) (func(int64) string, error) {
	categories, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	return func(id int64) string {
		if name, ok := names[id]; ok {
			return name
		}
		return "uncategorized"
	}, nil
}

// parseDay parses a YYYY-MM-DD argument as midnight UTC.
func parseDay(value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// parseID parses a positive numeric ID argument.
func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// resolveCategory looks a category up by name or fragment.
func resolveCategory(ctx context.Context, store service.Storage, name string) (*model.Category, error) {
	category, err := store.FindCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("unknown category %q; see 'spendsense categories list'", name)
	}
	return category, nil
}
