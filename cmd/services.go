package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vehicle-sync/core/config"
	"vehicle-sync/core/database"
	"vehicle-sync/core/logger"
	"vehicle-sync/core/offset"
	"vehicle-sync/core/reconcile"
	"vehicle-sync/core/storage"
	"vehicle-sync/core/syscara"
	"vehicle-sync/core/webflow"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// services is the wired object graph shared by all commands.
type services struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	store    storage.Client
	source   *syscara.Client
	target   *webflow.Client
	offsets  offset.Store
	runLog   *vsync.RunLog
	executor *vsync.Executor
}

// loadServices loads the configuration and connects everything a sync needs.
// With sourceOnly set, only the Syscara settings are required.
func loadServices(ctx context.Context, sourceOnly bool) (*services, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if sourceOnly {
		err = cfg.ValidateSource()
	} else {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &services{cfg: cfg, logger: logg}
	s.source = syscara.NewClient(cfg.Syscara, logg)
	if sourceOnly {
		return s, nil
	}

	// Database and storage are optional; only the sql offset backend requires one.
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			if cfg.Offset.Backend == "sql" {
				return nil, err
			}
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			s.db = db
			logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))
		}
	}
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err == nil {
			err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
		}
		if err != nil {
			logg.Warn("Object storage unavailable, media cache and report archive disabled", zap.Error(err))
		} else {
			s.store = client
		}
	}

	s.target = webflow.NewClient(cfg.Webflow, logg)

	s.offsets, err = offset.New(cfg.Offset, s.db)
	if err != nil {
		return nil, err
	}

	var recorder vsync.Recorder
	if s.db != nil || s.store != nil {
		s.runLog, err = vsync.NewRunLog(s.db, s.store, cfg.Storage.Bucket)
		if err != nil {
			return nil, err
		}
		recorder = s.runLog
	}

	s.executor = vsync.NewExecutor(
		s.source,
		s.target,
		reconcile.NewResolver(s.target, logg),
		s.offsets,
		recorder,
		cfg.Sync,
		vsync.Collections{
			Vehicles:  cfg.Webflow.Collection,
			Features:  cfg.Webflow.FeaturesCollection,
			Bettarten: cfg.Webflow.BettartenCollection,
			Publish:   cfg.Webflow.Publish,
		},
		logg,
	)
	return s, nil
}

// Close releases the offset store and the database.
func (s *services) Close() {
	if closer, ok := s.offsets.(offset.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("Failed to close offset store", zap.Error(err))
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = s.logger.Sync()
}
