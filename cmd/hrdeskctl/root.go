package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var noColor bool

	root := &cobra.Command{
		Use:   "hrdeskctl",
		Short: "Operate the HR delegation desk",
		Long: `hrdeskctl resolves presentation and day statuses offline, prints the
delegation board from the configured storage and manages API keys and
migrations.

Storage and logging settings are read the same way as the server: HRDESK_*
environment variables, optionally layered over the YAML file named by
HRDESK_CONFIG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newStatusCmd(),
		newDayCmd(),
		newBoardCmd(),
		newHashKeyCmd(),
		newMigrateCmd(),
	)
	return root
}
