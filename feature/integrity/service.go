package integrity

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vehicle-sync/core/offset"
	"vehicle-sync/core/storage"
	"vehicle-sync/core/webflow"
	"vehicle-sync/feature/integrity/checks"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// ErrNotConfigured is returned by checks whose backend is disabled.
var ErrNotConfigured = errors.New("not configured")

// Lister reads CMS collections.
type Lister interface {
	ListItems(ctx context.Context, collection string) ([]webflow.Item, error)
}

// Collections names the checked CMS collections.
type Collections struct {
	Vehicles  string
	Features  string
	Bettarten string
	Scope     string
}

// Service handles integrity checks.
type Service struct {
	lister      Lister
	collections Collections
	client      storage.Client
	bucket      string
	region      string
	db          *gorm.DB
	logger      *zap.Logger
}

// NewService creates a new integrity service. client and db may be nil.
func NewService(lister Lister, collections Collections, client storage.Client, bucket, region string, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		lister:      lister,
		collections: collections,
		client:      client,
		bucket:      bucket,
		region:      region,
		db:          db,
		logger:      logger,
	}
}

// CheckCollection inspects the vehicle collection.
func (s *Service) CheckCollection(ctx context.Context) (*checks.CollectionReport, error) {
	items, err := s.lister.ListItems(ctx, s.collections.Vehicles)
	if err != nil {
		return nil, err
	}
	return checks.CheckCollection(items, s.collections.Scope), nil
}

// CheckReferences inspects every configured reference collection.
func (s *Service) CheckReferences(ctx context.Context) ([]*checks.ReferenceReport, error) {
	reports := []*checks.ReferenceReport{}
	for _, collection := range []string{s.collections.Features, s.collections.Bettarten} {
		if collection == "" {
			continue
		}
		items, err := s.lister.ListItems(ctx, collection)
		if err != nil {
			return nil, err
		}
		reports = append(reports, checks.CheckReferences(collection, items))
	}
	return reports, nil
}

// CheckStorage verifies the bucket and optionally creates it.
func (s *Service) CheckStorage(ctx context.Context, fix bool) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckBucket(ctx, s.client, s.bucket, s.region, fix, s.logger)
}

// CheckDatabase verifies the sync tables and optionally migrates them.
func (s *Service) CheckDatabase(fix bool) (*checks.DatabaseReport, error) {
	if s.db == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckSchema(s.db, fix, &vsync.SyncRun{}, &offset.Offset{})
}
