package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/budget"
	"github.com/spendsense/spendsense/internal/cli"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage budgets",
		Long:  `Create budgets, check how much of each is spent, and retire old ones.`,
	}

	cmd.AddCommand(budgetStatusCmd())
	cmd.AddCommand(createBudgetCmd())
	cmd.AddCommand(deactivateBudgetCmd())
	cmd.AddCommand(deleteBudgetCmd())

	return cmd
}

func budgetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show spend progress for every active budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			statuses, err := budget.NewEngine(store).StatusAll(ctx, resolveUser(cmd, cfg), time.Now().UTC())
			if err != nil {
				return fmt.Errorf("failed to compute budget status: %w", err)
			}

			namer, err := categoryNamer(ctx, store)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderBudgetStatuses(statuses, namer))
			return nil
		},
	}
}

func createBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new budget",
		Long: `Create a budget for overall spending or a single category.

Examples:
  spendsense budgets create --amount 2000
  spendsense budgets create --amount 500 --category food --period monthly
  spendsense budgets create --amount 100 --category entertainment --threshold 0.9`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			amount, _ := cmd.Flags().GetFloat64("amount")
			period, _ := cmd.Flags().GetString("period")
			threshold, _ := cmd.Flags().GetFloat64("threshold")

			b := &model.Budget{
				UserID:         resolveUser(cmd, cfg),
				Amount:         amount,
				Period:         model.BudgetPeriod(period),
				StartDate:      time.Now().UTC(),
				AlertThreshold: threshold,
				IsActive:       true,
			}

			label := "overall"
			if name, _ := cmd.Flags().GetString("category"); name != "" {
				category, err := resolveCategory(ctx, store, name)
				if err != nil {
					return err
				}
				b.CategoryID = &category.ID
				label = category.Name
			}

			if start, _ := cmd.Flags().GetString("start"); start != "" {
				b.StartDate, err = parseDay(start)
				if err != nil {
					return err
				}
			}
			if end, _ := cmd.Flags().GetString("end"); end != "" {
				t, err := parseDay(end)
				if err != nil {
					return err
				}
				b.EndDate = &t
			}

			created, err := store.CreateBudget(ctx, b)
			if err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created %s %s budget of %s (id %d)",
				created.Period, label, cli.FormatMoney(created.Amount), created.ID)))
			return nil
		},
	}

	cmd.Flags().Float64("amount", 0, "budget limit in dollars (required)")
	cmd.Flags().String("category", "", "category name (omit for an overall budget)")
	cmd.Flags().String("period", "monthly", "budget period (daily, weekly, monthly, yearly)")
	cmd.Flags().Float64("threshold", 0.8, "alert when this fraction of the limit is spent")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD, default open-ended)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func deactivateBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a budget without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
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

			if err := store.DeactivateBudget(ctx, id); err != nil {
				return fmt.Errorf("failed to deactivate budget %d: %w", id, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deactivated budget %d", id)))
			return nil
		},
	}
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
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

			if err := store.DeleteBudget(ctx, id); err != nil {
				return fmt.Errorf("failed to delete budget %d: %w", id, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted budget %d", id)))
			return nil
		},
	}
}
