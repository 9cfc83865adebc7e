package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:           "provctl",
		Short:         "Administrative tooling for the provenance workflow service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&profilePath, "profile", "", "path to a YAML connection profile")

	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newArchiveCmd(&profilePath))
	return cmd
}
