package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	vsync "vehicle-sync/feature/vehicle/sync"
)

var (
	syncLimit  int
	syncOffset int
	syncDryRun bool
	syncOrigin string
	syncJSON   bool
)

// syncCmd runs one sync batch from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one delta sync batch",
	Long: `Sync one batch of filtered Syscara listings into the Webflow collection.

Every run also deletes CMS items whose listing is no longer offered, and advances
the stored offset so the next run continues with the following batch.

Examples:
  # Preview the next batch without writing anything
  sync --dry-run

  # Sync 10 listings starting at position 20
  sync --limit 10 --offset 20

  # Print the full report as JSON (e.g. for a cron mail)
  sync --json`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncLimit, "limit", 0, "Batch size (default sync.limit, capped by sync.max_limit)")
	syncCmd.Flags().IntVar(&syncOffset, "offset", -1, "Start offset overriding the stored one")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, write nothing")
	syncCmd.Flags().StringVar(&syncOrigin, "origin", "", "Public origin for media URLs (default server.public_url)")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the report as JSON")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, err := loadServices(ctx, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	origin := syncOrigin
	if origin == "" {
		origin = svc.cfg.Server.Origin()
	}
	if origin == "" {
		return fmt.Errorf("no public origin for media URLs: set server.public_url or --origin")
	}

	opts := vsync.RunOptions{Limit: syncLimit, DryRun: syncDryRun, Origin: origin}
	if syncOffset >= 0 {
		opts.Offset = &syncOffset
	}

	report, err := svc.executor.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSyncReport(svc.logger, report)
	return nil
}

// printSyncReport prints a run report using the logger.
func printSyncReport(l *zap.Logger, r *vsync.Report) {
	l.Info("Sync report",
		zap.String("run_id", r.RunID),
		zap.Bool("dry_run", r.DryRun),
		zap.Int("filtered", r.Totals.SyscaraFiltered),
		zap.Int("webflow", r.Totals.Webflow),
		zap.Int("offset", r.Offset),
		zap.Int("next_offset", r.NextOffset),
		zap.Int("created", r.Created),
		zap.Int("updated", r.Updated),
		zap.Int("skipped", r.Skipped),
		zap.Int("deleted", r.Deleted),
		zap.Int("duplicates", r.Duplicates),
	)
	if r.OffsetConflict {
		l.Warn("Offset was moved by a concurrent run and was not advanced")
	}

	maxShow := 5
	for i, e := range r.Errors {
		if i == maxShow {
			l.Info("Additional errors not shown", zap.Int("count", len(r.Errors)-maxShow))
			break
		}
		l.Warn("Item failed", zap.String("fahrzeug_id", e.FahrzeugID), zap.String("error", e.Error))
	}
}
