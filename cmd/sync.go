package cmd

import (
	"fmt"

	"emby-tagger/core/metrics"
	"emby-tagger/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncJSON   bool
	syncCached bool
)

// syncCmd runs a reconciliation pass against the active server.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the active server's catalog and match it against the local library",
	Long: `Fetches the catalog of the active remote server, collapses multi-part
items, refreshes the mirror and prints the match results.

Examples:
  # Full pass against the remote server
  sync

  # Re-run the matcher on the stored mirror without contacting the server
  sync --cached

  # Machine readable output
  sync --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(metrics.Nop{}, true)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		ctx := cmd.Context()
		var report *catalog.SyncReport
		if syncCached {
			report, err = a.catalog.View(ctx)
		} else {
			a.logger.Info("Syncing catalog...")
			report, err = a.catalog.Sync(ctx)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		if syncJSON {
			return writeJSON(cmd, report)
		}

		fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
		a.logger.Debug("Sync command finished", zap.Duration("duration", report.Duration))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the report as JSON")
	syncCmd.Flags().BoolVar(&syncCached, "cached", false, "Match the stored mirror without fetching")
	RootCmd.AddCommand(syncCmd)
}
