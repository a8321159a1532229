package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/invoice-cli/internal/store"
)

var (
	cleanupMaxAge time.Duration
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove uploads and outputs older than the retention age",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := store.NewWorkspace(cfg.Workspace)
		if err != nil {
			return err
		}

		maxAge := cleanupMaxAge
		if maxAge == 0 {
			maxAge = ws.Retention()
		}

		if cleanupDryRun {
			names, err := ws.SweepCandidates(maxAge)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d files would be removed\n", len(names))
			return nil
		}

		removed, err := ws.Sweep(maxAge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d files\n", removed)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupMaxAge, "max-age", 0, "age threshold (default workspace.retention_hours)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list files without removing them")
	rootCmd.AddCommand(cleanupCmd)
}
