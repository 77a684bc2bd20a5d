package main

import (
	"github.com/daybook/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "daybook",
		Short: "Daybook - a personal organizer served over a local HTTP API",
		Long: `Daybook keeps reminders, tasks, projects, a knowledge base and an encrypted
credential vault in flat JSON files and serves them over a local HTTP API.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, bootstrap.BuildContainer())
		},
	}

	root.AddCommand(newServeCmd(), newVaultCmd())
	return root
}
