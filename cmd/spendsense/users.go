package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/cli"
	"github.com/spendsense/spendsense/internal/config"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	cmd.AddCommand(addUserCmd())

	return cmd
}

func addUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			email, _ := cmd.Flags().GetString("email")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.CreateUser(ctx, args[0], email)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created user %q (id %d)", user.Name, user.ID)))
			return nil
		},
	}

	cmd.Flags().String("email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
