package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/cli"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/ofx"
	"github.com/spendsense/spendsense/internal/service"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import expenses from OFX/QFX bank statements",
		Long: `Import expenses from OFX or QFX (Quicken) files exported from your bank.

Only debits become expenses; deposits and refunds are skipped. Each
record's category is guessed from the merchant name and falls back to
the --category flag when nothing matches.

Examples:
  spendsense import-ofx ~/Downloads/chase_jan_2024.qfx
  spendsense import-ofx ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	cmd.Flags().String("category", "shopping", "fallback category for unrecognized merchants")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	fallbackName, _ := cmd.Flags().GetString("category")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fallback, err := resolveCategory(ctx, store, fallbackName)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(allFiles), "dry_run", dryRun)

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var records []ofx.Record

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, record := range parsed {
			key := record.AccountID + ":" + record.FiTID
			if record.FiTID == "" || !seen[key] {
				seen[key] = true
				records = append(records, record)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"expenses_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	if len(records) == 0 {
		slog.Warn("No expenses found in any file")
		return nil
	}

	if dryRun {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry run: %d expenses would be imported", len(records))))
		for _, record := range records {
			fmt.Printf("  %s  %-10s  %-16s  %s\n",
				record.Date.Format("2006-01-02"),
				cli.FormatMoney(record.Amount),
				record.Category,
				record.Description)
		}
		return nil
	}

	userID := resolveUser(cmd, cfg)
	saved, err := saveRecords(cmd, store, records, userID, fallback.ID)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d expenses", saved)))
	return nil
}

func saveRecords(cmd *cobra.Command, store service.Storage, records []ofx.Record, userID, fallbackCategoryID int64) (int, error) {
	ctx := cmd.Context()

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetDescription("Importing expenses"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	saved := 0
	for _, record := range records {
		categoryID := fallbackCategoryID
		if record.Category != "" {
			if category, err := store.GetCategoryByName(ctx, record.Category); err == nil && category != nil {
				categoryID = category.ID
			}
		}

		expense := &model.Expense{
			UserID:      userID,
			CategoryID:  categoryID,
			Amount:      record.Amount,
			Description: record.Description,
			ExpenseDate: record.Date,
		}

		if _, err := store.CreateExpense(ctx, expense); err != nil {
			return saved, fmt.Errorf("failed to save expense %q: %w", record.Description, err)
		}
		saved++
		_ = bar.Add(1)
	}

	return saved, nil
}
