package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/cli"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/model"
	"github.com/spendsense/spendsense/internal/service"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Manage expenses",
		Long:  `List, add, and delete individual expense records.`,
	}

	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, most recent first",
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

			filter := service.ExpenseFilter{}
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
				filter.Limit = limit
			}
			if name, _ := cmd.Flags().GetString("category"); name != "" {
				category, err := resolveCategory(ctx, store, name)
				if err != nil {
					return err
				}
				filter.CategoryID = &category.ID
			}
			if start, _ := cmd.Flags().GetString("start"); start != "" {
				t, err := parseDay(start)
				if err != nil {
					return err
				}
				filter.Start = &t
			}
			if end, _ := cmd.Flags().GetString("end"); end != "" {
				t, err := parseDay(end)
				if err != nil {
					return err
				}
				filter.End = &t
			}

			expenses, err := store.ListExpenses(ctx, resolveUser(cmd, cfg), filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			namer, err := categoryNamer(ctx, store)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderExpenses(expenses, namer))
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of expenses to show")
	cmd.Flags().String("category", "", "only show this category")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD, exclusive)")

	return cmd
}

func addExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Long: `Record a new expense.

Examples:
  spendsense expenses add --amount 12.50 --category food --description "lunch"
  spendsense expenses add --amount 60 --category utilities --date 2024-01-15`,
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
			description, _ := cmd.Flags().GetString("description")
			categoryName, _ := cmd.Flags().GetString("category")

			category, err := resolveCategory(ctx, store, categoryName)
			if err != nil {
				return err
			}

			expenseDate := time.Now().UTC()
			if date, _ := cmd.Flags().GetString("date"); date != "" {
				expenseDate, err = parseDay(date)
				if err != nil {
					return err
				}
			}

			expense := &model.Expense{
				UserID:      resolveUser(cmd, cfg),
				CategoryID:  category.ID,
				Amount:      amount,
				Description: description,
				ExpenseDate: expenseDate,
			}

			created, err := store.CreateExpense(ctx, expense)
			if err != nil {
				return fmt.Errorf("failed to create expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s for %s (id %d)",
				cli.FormatMoney(created.Amount), category.Name, created.ID)))
			return nil
		},
	}

	cmd.Flags().Float64("amount", 0, "expense amount in dollars (required)")
	cmd.Flags().String("category", "", "category name (required)")
	cmd.Flags().String("description", "", "what the money was spent on")
	cmd.Flags().String("date", "", "expense date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
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

			if err := store.DeleteExpense(ctx, id); err != nil {
				return fmt.Errorf("failed to delete expense %d: %w", id, err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
			return nil
		},
	}
}
