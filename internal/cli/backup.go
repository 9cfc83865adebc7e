package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"provenance-workflow-service/internal/backup"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage periodic repository backups",
	}
	cmd.AddCommand(newBackupSetupCmd())
	return cmd
}

func newBackupSetupCmd() *cobra.Command {
	var (
		rootDir        string
		destDir        string
		oldest         string
		days           int
		endDate        string
		periodicity    int
		thresholdHours int
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the backup folders and parameter file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rootDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home directory: %w", err)
				}
				rootDir = home + "/.provenance"
			}

			params := &backup.Params{
				BackupDir:       destDir,
				PeriodicityDays: periodicity,
				ThresholdHours:  thresholdHours,
			}
			if oldest != "" {
				ts, err := time.Parse(time.RFC3339, oldest)
				if err != nil {
					return fmt.Errorf("parse --oldest: %w", err)
				}
				params.OldestObjectBackedUp = &ts
			}
			if cmd.Flags().Changed("days") {
				params.DaysToBackup = &days
			}
			if endDate != "" {
				ts, err := time.Parse(time.RFC3339, endDate)
				if err != nil {
					return fmt.Errorf("parse --end-date: %w", err)
				}
				params.EndDateOfBackup = &ts
			}

			setup := &backup.Setup{RootDir: rootDir}
			result, err := setup.Run(params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "backup parameters written to %s\n", result.ParamsFile)
			fmt.Fprintf(cmd.OutOrStdout(), "backup destination folder is %s\n", result.DestFolder)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootDir, "dir", "", "root folder for the backup layout (default ~/.provenance)")
	cmd.Flags().StringVar(&destDir, "dest", "", "destination folder of the backup (default <dir>/backup/backup_dest)")
	cmd.Flags().StringVar(&oldest, "oldest", "", "timestamp of the oldest object already backed up (RFC3339)")
	cmd.Flags().IntVar(&days, "days", 0, "number of days to back up from the start")
	cmd.Flags().StringVar(&endDate, "end-date", "", "back up objects modified before this date (RFC3339)")
	cmd.Flags().IntVar(&periodicity, "periodicity", 2, "how many days each backup round covers")
	cmd.Flags().IntVar(&thresholdHours, "threshold-hours", 1, "lowest acceptable round length in hours")
	return cmd
}
