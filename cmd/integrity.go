package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vehicle-sync/feature/integrity"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the health of the CMS collections and the sync backends",
	Long:  `Runs every integrity check without fixing anything. Use a subcommand to run one check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true, true)
	},
}

var collectionCheckCmd = &cobra.Command{
	Use:   "collection",
	Short: "Find vehicle items without key or hash and duplicated keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false, false)
	},
}

var referencesCheckCmd = &cobra.Command{
	Use:   "references",
	Short: "Find reference items without slug and duplicated slugs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false, false)
	},
}

var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check the media cache bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true, false)
	},
}

var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the run log and offset tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(collectionCheckCmd, referencesCheckCmd, storageCheckCmd, databaseCheckCmd)

	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when missing")
	databaseCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate missing tables")
}

// newIntegrityService builds the integrity checks over the wired services.
func newIntegrityService(svc *services) *integrity.Service {
	cfg := svc.cfg
	return integrity.NewService(
		svc.target,
		integrity.Collections{
			Vehicles:  cfg.Webflow.Collection,
			Features:  cfg.Webflow.FeaturesCollection,
			Bettarten: cfg.Webflow.BettartenCollection,
			Scope:     cfg.Sync.Scope,
		},
		svc.store,
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		svc.db,
		svc.logger,
	)
}

func runIntegrityChecks(ctx context.Context, collection, references, storage, database bool) error {
	svc, err := loadServices(ctx, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	logg := svc.logger
	checker := newIntegrityService(svc)
	failed := false

	if collection {
		logg.Info("Checking vehicle collection...")
		report, err := checker.CheckCollection(ctx)
		if err != nil {
			return fmt.Errorf("collection check failed: %w", err)
		}
		if report.Healthy() {
			logg.Info("Vehicle collection is intact.",
				zap.Int("total", report.Total),
				zap.Int("in_scope", report.InScope))
		} else {
			failed = true
			logg.Warn("Vehicle collection needs attention",
				zap.Int("total", report.Total),
				zap.Strings("missing_key", report.MissingKey),
				zap.Any("duplicates", report.Duplicates))
		}
		if len(report.MissingHash) > 0 {
			logg.Info("Items without sync hash are rewritten by the next run", zap.Strings("keys", report.MissingHash))
		}
	}

	if references {
		logg.Info("Checking reference collections...")
		reports, err := checker.CheckReferences(ctx)
		if err != nil {
			return fmt.Errorf("references check failed: %w", err)
		}
		for _, r := range reports {
			if len(r.MissingSlug) == 0 && len(r.DuplicateSlugs) == 0 {
				logg.Info("Reference collection is intact.", zap.String("collection", r.Collection), zap.Int("total", r.Total))
				continue
			}
			failed = true
			logg.Warn("Reference collection needs attention",
				zap.String("collection", r.Collection),
				zap.Strings("missing_slug", r.MissingSlug),
				zap.Strings("duplicate_slugs", r.DuplicateSlugs))
		}
	}

	if storage {
		logg.Info("Checking media bucket...")
		report, err := checker.CheckStorage(ctx, fixFlag)
		switch {
		case errors.Is(err, integrity.ErrNotConfigured):
			logg.Info("Object storage is disabled, skipping.")
		case err != nil:
			return fmt.Errorf("storage check failed: %w", err)
		case report.Fixed:
			logg.Info("Bucket created.", zap.String("bucket", report.Bucket))
		case report.Exists:
			logg.Info("Bucket is present.", zap.String("bucket", report.Bucket))
		default:
			failed = true
			logg.Warn("Bucket is missing. Run with --fix to create it.", zap.String("bucket", report.Bucket))
		}
	}

	if database {
		logg.Info("Checking database schema...")
		report, err := checker.CheckDatabase(fixFlag)
		switch {
		case errors.Is(err, integrity.ErrNotConfigured):
			logg.Info("Database is disabled, skipping.")
		case err != nil:
			return fmt.Errorf("database check failed: %w", err)
		case len(report.Missing) > 0:
			failed = true
			logg.Warn("Missing tables detected. Run with --fix to migrate them.", zap.Strings("missing", report.Missing))
		default:
			logg.Info("Schema is intact.", zap.String("dialect", report.Dialect), zap.Strings("fixed", report.Fixed))
		}
	}

	if failed {
		return fmt.Errorf("integrity checks found problems")
	}
	return nil
}
