package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vehicle-sync/core/metrics"
	"vehicle-sync/core/offset"
	"vehicle-sync/core/reconcile"
	"vehicle-sync/core/syscara"
	"vehicle-sync/core/webflow"
	"vehicle-sync/feature/vehicle/mapper"
)

// Collections names the target collections of a sync.
type Collections struct {
	Vehicles  string
	Features  string
	Bettarten string
	// Publish publishes every created or updated item.
	Publish bool
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, report *Report) error
}

// RunOptions are per-invocation parameters.
type RunOptions struct {
	// Limit overrides the configured batch size when positive.
	Limit int
	// DryRun computes everything without writing to the target or the offset store.
	DryRun bool
	// Offset starts the batch at this position instead of the stored offset.
	Offset *int
	// Origin is the public origin used to build media proxy URLs.
	Origin string
}

// Executor runs delta syncs.
type Executor struct {
	source      Source
	target      Target
	resolver    *reconcile.Resolver
	offsets     offset.Store
	recorder    Recorder
	mapper      *mapper.Mapper
	filter      Filter
	cfg         Config
	collections Collections
	logger      *zap.Logger
}

// NewExecutor wires an executor. recorder may be nil.
func NewExecutor(
	source Source,
	target Target,
	resolver *reconcile.Resolver,
	offsets offset.Store,
	recorder Recorder,
	cfg Config,
	collections Collections,
	logger *zap.Logger,
) *Executor {
	return &Executor{
		source:      source,
		target:      target,
		resolver:    resolver,
		offsets:     offsets,
		recorder:    recorder,
		mapper:      NewMapper(cfg),
		filter:      FilterFromConfig(cfg),
		cfg:         cfg,
		collections: collections,
		logger:      logger,
	}
}

// NewMapper builds the mapper of a run configuration.
func NewMapper(cfg Config) *mapper.Mapper {
	return mapper.New(mapper.Options{
		GalleryMax:    cfg.GalleryMax,
		ZeroValid:     cleanList(cfg.ZeroValidFields),
		RentalKeyword: cfg.RentalKeyword,
	})
}

// Mapper returns the mapper used for runs.
func (e *Executor) Mapper() *mapper.Mapper {
	return e.mapper
}

// Filter returns the source filter used for runs.
func (e *Executor) Filter() Filter {
	return e.filter
}

// snapshot is everything a run reads before deciding anything.
type snapshot struct {
	entries  []syscara.Entry
	items    []webflow.Item
	features map[string]string
	beds     map[string]string
}

func (e *Executor) load(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := e.source.FetchAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to load source listings: %w", err)
		}
		snap.entries = entries
		return nil
	})
	g.Go(func() error {
		items, err := e.target.ListItems(gctx, e.collections.Vehicles)
		if err != nil {
			return fmt.Errorf("failed to load target items: %w", err)
		}
		snap.items = items
		return nil
	})
	g.Go(func() error {
		m, err := e.references(gctx, e.collections.Features)
		snap.features = m
		return err
	})
	g.Go(func() error {
		m, err := e.references(gctx, e.collections.Bettarten)
		snap.beds = m
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// references loads a reference map; an unconfigured collection yields an empty map.
func (e *Executor) references(ctx context.Context, collection string) (map[string]string, error) {
	m, err := e.resolver.Map(ctx, collection)
	if errors.Is(err, reconcile.ErrCollectionNotConfigured) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference collection %s: %w", collection, err)
	}
	return m, nil
}

// Run performs one sync invocation. Only loading failures return an error; item
// failures are reported in the result.
func (e *Executor) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	started := time.Now()
	mode := "live"
	if opts.DryRun {
		mode = "dry"
	}

	report, err := e.run(ctx, opts, started)
	metrics.SyncDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.SyncRuns.WithLabelValues("failed", mode).Inc()
		e.logger.Error("Sync run failed", zap.Error(err))
		return nil, err
	}
	metrics.SyncRuns.WithLabelValues("ok", mode).Inc()

	if !opts.DryRun && e.recorder != nil {
		if err := e.recorder.Record(ctx, report); err != nil {
			e.logger.Warn("Failed to record sync run", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}
	return report, nil
}

func (e *Executor) run(ctx context.Context, opts RunOptions, started time.Time) (*Report, error) {
	snap, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	filtered := e.filter.Apply(snap.entries)
	sourceKeys := make(map[string]struct{}, len(filtered))
	for _, entry := range filtered {
		if entry.Key == "" {
			continue
		}
		sourceKeys[entry.Key] = struct{}{}
	}

	stored, err := e.offsets.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load offset: %w", err)
	}
	start := stored
	if opts.Offset != nil {
		start = *opts.Offset
	}
	if start < 0 || start >= len(filtered) {
		start = 0
	}

	limit := e.limit(opts.Limit)
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	batch := filtered[start:end]

	index := reconcile.IndexTargets(e.existing(snap.items))

	report := &Report{
		RunID:     uuid.NewString(),
		OK:        true,
		DryRun:    opts.DryRun,
		Limit:     limit,
		Offset:    start,
		Totals:    Totals{SyscaraFiltered: len(filtered), Webflow: index.Len()},
		Errors:    []ItemError{},
		StartedAt: started.UTC(),
	}

	desired := make([]reconcile.Desired, 0, len(batch))
	for _, entry := range batch {
		d, err := e.prepare(entry, snap, opts.Origin)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{FahrzeugID: entry.Key, Error: err.Error()})
			metrics.SyncItems.WithLabelValues("error").Inc()
			continue
		}
		desired = append(desired, d)
	}

	plan := reconcile.BuildPlan(desired, sourceKeys, index)
	e.logPlan(plan, opts.DryRun)

	var mutator reconcile.Mutator = &collectionMutator{target: e.target, collection: e.collections.Vehicles}
	if e.collections.Publish {
		mutator = &publishingMutator{collectionMutator{target: e.target, collection: e.collections.Vehicles}}
	}
	result := reconcile.ApplyPlan(ctx, mutator, plan, reconcile.ApplyOptions{
		DryRun:      opts.DryRun,
		Concurrency: e.cfg.Concurrency,
	})

	report.Created = result.Created
	report.Updated = result.Updated
	report.Skipped = result.Skipped
	report.Deleted = result.Deleted
	report.Duplicates = plan.Summary.Duplicates
	for _, ie := range result.Errors {
		e.logger.Warn("Sync item failed",
			zap.String("fahrzeug_id", ie.Key),
			zap.String("action", string(ie.Action)),
			zap.Error(ie.Err))
		report.Errors = append(report.Errors, ItemError{FahrzeugID: ie.Key, Error: ie.Err.Error()})
	}
	metrics.SyncItems.WithLabelValues(string(reconcile.ActionCreate)).Add(float64(result.Created))
	metrics.SyncItems.WithLabelValues(string(reconcile.ActionUpdate)).Add(float64(result.Updated))
	metrics.SyncItems.WithLabelValues(string(reconcile.ActionSkip)).Add(float64(result.Skipped))
	metrics.SyncItems.WithLabelValues(string(reconcile.ActionDelete)).Add(float64(result.Deleted))
	metrics.SyncItems.WithLabelValues("error").Add(float64(len(result.Errors)))

	report.NextOffset = NextOffset(start, limit, len(filtered))
	if !opts.DryRun {
		err := e.offsets.Advance(ctx, stored, report.NextOffset)
		switch {
		case errors.Is(err, offset.ErrConflict):
			report.OffsetConflict = true
			e.logger.Warn("Offset moved by a concurrent run, not advancing",
				zap.Int("expected", stored), zap.Int("next", report.NextOffset))
		case err != nil:
			report.Errors = append(report.Errors, ItemError{FahrzeugID: "offset", Error: err.Error()})
		}
	}

	sort.SliceStable(report.Errors, func(i, j int) bool {
		return report.Errors[i].FahrzeugID < report.Errors[j].FahrzeugID
	})
	report.DurationMs = time.Since(started).Milliseconds()

	e.logger.Info("Sync run finished",
		zap.String("run_id", report.RunID),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("offset", report.Offset),
		zap.Int("next_offset", report.NextOffset),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("deleted", report.Deleted),
		zap.Int("errors", len(report.Errors)))
	return report, nil
}

func (e *Executor) limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = e.cfg.Limit
	}
	if e.cfg.MaxLimit > 0 && limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// NextOffset advances by limit and wraps to zero past the end of the set.
func NextOffset(offset, limit, total int) int {
	if offset+limit >= total {
		return 0
	}
	return offset + limit
}

// existing converts in-scope target items for indexing.
func (e *Executor) existing(items []webflow.Item) []reconcile.Existing {
	out := make([]reconcile.Existing, 0, len(items))
	for _, item := range items {
		if e.cfg.Scope != "" && item.Field(mapper.FieldSyncScope) != e.cfg.Scope {
			continue
		}
		out = append(out, reconcile.Existing{
			ID:   item.ID,
			Key:  item.Field(mapper.FieldKey),
			Hash: item.Field(mapper.FieldSyncHash),
		})
	}
	return out
}

// prepare maps, resolves and fingerprints one listing.
func (e *Executor) prepare(entry syscara.Entry, snap *snapshot, origin string) (reconcile.Desired, error) {
	if entry.Err != nil {
		return reconcile.Desired{}, entry.Err
	}
	rec := e.mapper.Map(entry.Ad)
	if rec.Key == "" {
		return reconcile.Desired{}, errors.New("listing has no id")
	}
	fields := rec.Fields

	if rec.Media.MainImage != nil {
		fields[mapper.FieldMainImage] = e.MediaURL(origin, rec.Media.MainImage.String())
	}
	gallery := make([]string, 0, len(rec.Media.Gallery))
	for _, id := range rec.Media.Gallery {
		gallery = append(gallery, e.MediaURL(origin, id.String()))
	}
	fields[mapper.FieldGallery] = gallery
	if rec.Media.FloorPlan != nil {
		fields[mapper.FieldFloorPlan] = e.MediaURL(origin, rec.Media.FloorPlan.String())
	}

	fields[mapper.FieldFeatures] = reconcile.ResolveSlugs(snap.features, rec.FeatureSlugs)
	if beds := reconcile.ResolveSlugs(snap.beds, rec.BedSlugs); len(beds) > 0 {
		fields[mapper.FieldBedCategories] = beds
	}
	if e.cfg.Scope != "" {
		fields[mapper.FieldSyncScope] = e.cfg.Scope
	}

	hash, err := reconcile.Fingerprint(fields, mapper.FieldSyncHash)
	if err != nil {
		return reconcile.Desired{}, fmt.Errorf("failed to fingerprint: %w", err)
	}
	fields[mapper.FieldSyncHash] = hash

	return reconcile.Desired{Key: rec.Key, Fields: fields, Hash: hash}, nil
}

// MediaURL builds the proxy URL of a media id.
func (e *Executor) MediaURL(origin, id string) string {
	path := e.cfg.MediaPath
	if path == "" {
		path = "/media"
	}
	return strings.TrimRight(origin, "/") + path + "?id=" + url.QueryEscape(id)
}

func (e *Executor) logPlan(plan *reconcile.Plan, dryRun bool) {
	for _, action := range plan.Actions {
		if action.Type == reconcile.ActionSkip {
			continue
		}
		fields := []zap.Field{
			zap.String("fahrzeug_id", action.Key),
			zap.String("action", string(action.Type)),
			zap.Bool("dry_run", dryRun),
		}
		if action.Desired != nil {
			fields = append(fields, zap.String("hash", action.Desired.Hash))
		}
		e.logger.Debug("Planned sync action", fields...)
	}
}
