package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/hr-delegation/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			storage, err := openSQLite(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = storage.Close() }()

			applied, err := storage.Migrate(cmd.Context(), cliLogger(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintf(out, "%s schema is up to date\n", color.New(color.FgGreen).Sprint("OK"))
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("APPLIED"), version)
			}
			return nil
		},
	}
}
