package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/advisor"
	"github.com/spendsense/spendsense/internal/cli"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/query"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a plain-language question about your spending",
		Long: `Ask a question about your expenses and budgets in plain language.

Examples:
  spendsense ask "how much did I spend last month?"
  spendsense ask "breakdown by category for January 2024"
  spendsense ask "am I over budget?"
  spendsense ask "forecast my spending"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	parsed := query.NewDefaultParser().Parse(question)
	resp := advisor.New(store).ProcessQuery(ctx, parsed, resolveUser(cmd, cfg))

	fmt.Print(cli.RenderResponse(&resp))
	return nil
}
