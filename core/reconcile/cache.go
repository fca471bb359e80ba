package reconcile

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"vehicle-sync/core/metrics"
)

// ErrCollectionNotConfigured is returned for an empty collection reference.
var ErrCollectionNotConfigured = errors.New("reconcile: reference collection not configured")

// Resolver caches slug to id maps per reference collection for its own lifetime.
type Resolver struct {
	loader ReferenceLoader
	logger *zap.Logger

	mu   sync.RWMutex
	maps map[string]map[string]string
	sf   singleflight.Group
}

// NewResolver creates a resolver with an empty cache.
func NewResolver(loader ReferenceLoader, logger *zap.Logger) *Resolver {
	return &Resolver{
		loader: loader,
		logger: logger,
		maps:   make(map[string]map[string]string),
	}
}

// Map returns the slug to id map of a collection, loading it on first use.
// Concurrent first calls share one load.
func (r *Resolver) Map(ctx context.Context, collection string) (map[string]string, error) {
	if collection == "" {
		return nil, ErrCollectionNotConfigured
	}

	r.mu.RLock()
	m, ok := r.maps[collection]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	v, err, _ := r.sf.Do(collection, func() (any, error) {
		r.mu.RLock()
		m, ok := r.maps[collection]
		r.mu.RUnlock()
		if ok {
			return m, nil
		}

		// The load is shared, so one caller's cancellation must not fail the others.
		m, err := r.loader.LoadReferences(context.WithoutCancel(ctx), collection)
		if err != nil {
			return nil, err
		}
		metrics.ReferenceLoads.WithLabelValues(collection).Inc()
		r.logger.Info("Loaded reference collection",
			zap.String("collection", collection),
			zap.Int("entries", len(m)))

		r.mu.Lock()
		r.maps[collection] = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// Resolve maps slugs to ids. Unknown slugs are dropped, duplicates collapse and the
// order of first appearance is kept.
func (r *Resolver) Resolve(ctx context.Context, collection string, slugs []string) ([]string, error) {
	m, err := r.Map(ctx, collection)
	if err != nil {
		return nil, err
	}
	return ResolveSlugs(m, slugs), nil
}

// ResolveSlugs maps slugs through m, dropping unknown ones.
func ResolveSlugs(m map[string]string, slugs []string) []string {
	ids := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		id, ok := m[s]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// Invalidate drops the cached map of a collection.
func (r *Resolver) Invalidate(collection string) {
	r.mu.Lock()
	delete(r.maps, collection)
	r.mu.Unlock()
}
