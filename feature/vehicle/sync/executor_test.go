package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vehicle-sync/core/offset"
	"vehicle-sync/core/reconcile"
	"vehicle-sync/core/syscara"
	"vehicle-sync/core/webflow"
	"vehicle-sync/feature/vehicle/mapper"
)

type fakeSource struct {
	entries []syscara.Entry
	err     error
}

func (s *fakeSource) FetchAll(context.Context) ([]syscara.Entry, error) {
	return s.entries, s.err
}

// fakeTarget is an in-memory CMS collection plus reference collections.
type fakeTarget struct {
	mu          stdsync.Mutex
	items       []webflow.Item
	refs        map[string]map[string]string
	nextID      int
	failCreate  map[string]bool
	listErr     error
	published   []string
	unpublished []string
	writes      int
}

func newFakeTarget(items ...webflow.Item) *fakeTarget {
	return &fakeTarget{items: items, refs: map[string]map[string]string{}, failCreate: map[string]bool{}}
}

func (f *fakeTarget) ListItems(_ context.Context, _ string) ([]webflow.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]webflow.Item(nil), f.items...), nil
}

func (f *fakeTarget) CreateItem(_ context.Context, _ string, fields map[string]any) (webflow.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if key, _ := fields[mapper.FieldKey].(string); f.failCreate[key] {
		return webflow.Item{}, errors.New("validation error")
	}
	f.nextID++
	item := webflow.Item{ID: fmt.Sprintf("wf-new-%d", f.nextID), FieldData: fields}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeTarget) UpdateItem(_ context.Context, _ string, id string, fields map[string]any) (webflow.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].FieldData = fields
			return f.items[i], nil
		}
	}
	return webflow.Item{}, &webflow.APIError{Status: 404}
}

func (f *fakeTarget) DeleteItem(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &webflow.APIError{Status: 404}
}

func (f *fakeTarget) PublishItems(_ context.Context, _ string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ids...)
	return nil
}

func (f *fakeTarget) UnpublishLiveItem(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unpublished = append(f.unpublished, id)
	return nil
}

func (f *fakeTarget) LoadReferences(_ context.Context, collection string) (map[string]string, error) {
	return f.refs[collection], nil
}

func (f *fakeTarget) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, item := range f.items {
		keys = append(keys, item.Field(mapper.FieldKey))
	}
	sort.Strings(keys)
	return keys
}

func entry(id, zip, producer string) syscara.Entry {
	return syscara.Entry{
		Key: id,
		Ad: syscara.Ad{
			ID:    syscara.ID(id),
			Model: syscara.Model{Producer: producer, Model: "M" + id},
			Store: syscara.Store{ZipCode: syscara.ID(zip)},
			Media: []syscara.Media{{ID: syscara.ID("10" + id), Group: syscara.MediaGroupImage}},
		},
	}
}

func existing(id, key, hash string) webflow.Item {
	return webflow.Item{ID: id, FieldData: map[string]any{mapper.FieldKey: key, mapper.FieldSyncHash: hash}}
}

func testConfig() Config {
	return Config{Limit: 10, MaxLimit: 25, GalleryMax: 25, Concurrency: 1, RentalKeyword: "vermiet", ZeroValidFields: []string{"kilometer"}}
}

func newExecutor(src Source, target *fakeTarget, store offset.Store, cfg Config, publish bool) *Executor {
	resolver := reconcile.NewResolver(target, zap.NewNop())
	return NewExecutor(src, target, resolver, store, nil, cfg, Collections{
		Vehicles:  "vehicles",
		Features:  "features",
		Bettarten: "beds",
		Publish:   publish,
	}, zap.NewNop())
}

func TestRun_UpdateCreateDelete(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{entry("A", "24783", "Acme"), entry("B", "24783", "Acme")}}
	target := newFakeTarget(existing("wf-a", "A", "stale"), existing("wf-c", "C", "x"))

	exec := newExecutor(src, target, offset.NewMemoryStore(), testConfig(), true)
	report, err := exec.Run(context.Background(), RunOptions{Origin: "https://sync.example.com"})
	require.NoError(t, err)

	assert.True(t, report.OK)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)
	assert.Equal(t, Totals{SyscaraFiltered: 2, Webflow: 2}, report.Totals)

	assert.Equal(t, []string{"A", "B"}, target.keys())
	assert.ElementsMatch(t, []string{"wf-a", "wf-new-1"}, target.published)
	assert.Equal(t, []string{"wf-c"}, target.unpublished)
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{entry("A", "24783", "Acme"), entry("B", "24783", "Acme")}}
	target := newFakeTarget()
	exec := newExecutor(src, target, offset.NewMemoryStore(), testConfig(), false)

	first, err := exec.Run(context.Background(), RunOptions{Origin: "https://x"})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	writes := target.writes
	second, err := exec.Run(context.Background(), RunOptions{Origin: "https://x"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, writes, target.writes)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{entry("A", "24783", "Acme"), entry("B", "24783", "Acme")}}
	target := newFakeTarget(existing("wf-a", "A", "stale"), existing("wf-c", "C", "x"))
	store := offset.NewMemoryStore()
	exec := newExecutor(src, target, store, Config{Limit: 1, MaxLimit: 25, Concurrency: 1}, true)

	report, err := exec.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, 1, report.NextOffset)
	assert.Equal(t, 0, target.writes)
	assert.Empty(t, target.published)
	assert.Empty(t, target.unpublished)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestRun_OffsetRoundRobin(t *testing.T) {
	var entries []syscara.Entry
	for i := 1; i <= 5; i++ {
		entries = append(entries, entry(fmt.Sprint(i), "24783", "Acme"))
	}
	src := &fakeSource{entries: entries}
	target := newFakeTarget()
	store := offset.NewMemoryStore()
	cfg := testConfig()
	cfg.Limit = 2
	exec := newExecutor(src, target, store, cfg, false)

	var offsets, nexts []int
	for i := 0; i < 4; i++ {
		report, err := exec.Run(context.Background(), RunOptions{})
		require.NoError(t, err)
		offsets = append(offsets, report.Offset)
		nexts = append(nexts, report.NextOffset)
	}
	assert.Equal(t, []int{0, 2, 4, 0}, offsets)
	assert.Equal(t, []int{2, 4, 0, 2}, nexts)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, target.keys())
}

func TestRun_LimitIsCapped(t *testing.T) {
	var entries []syscara.Entry
	for i := 1; i <= 5; i++ {
		entries = append(entries, entry(fmt.Sprint(i), "24783", "Acme"))
	}
	cfg := testConfig()
	cfg.MaxLimit = 3
	exec := newExecutor(&fakeSource{entries: entries}, newFakeTarget(), offset.NewMemoryStore(), cfg, false)

	report, err := exec.Run(context.Background(), RunOptions{Limit: 100, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Limit)
	assert.Equal(t, 3, report.Created)
}

func TestRun_OffsetOverrideAndOutOfRange(t *testing.T) {
	entries := []syscara.Entry{entry("1", "24783", "A"), entry("2", "24783", "A"), entry("3", "24783", "A")}
	store := offset.NewMemoryStore()
	require.NoError(t, store.Advance(context.Background(), 0, 99))

	cfg := testConfig()
	cfg.Limit = 1
	exec := newExecutor(&fakeSource{entries: entries}, newFakeTarget(), store, cfg, false)

	// Stored offset past the end restarts at zero.
	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Offset)
	assert.Equal(t, 1, report.NextOffset)

	start := 2
	report, err = exec.Run(context.Background(), RunOptions{Offset: &start})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Offset)
	assert.Equal(t, 0, report.NextOffset)
}

func TestRun_FilterScopesDeletes(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{
		entry("A", "24783", "Acme"),
		entry("B", "10115", "Acme"), // outside the zip filter
	}}
	cfg := testConfig()
	cfg.ZipCodes = []string{"24783"}
	cfg.Scope = "osterroenfeld"

	other := existing("wf-o", "O", "h")
	other.FieldData[mapper.FieldSyncScope] = "berlin"
	stale := existing("wf-b", "B", "h")
	stale.FieldData[mapper.FieldSyncScope] = "osterroenfeld"
	unscoped := existing("wf-u", "U", "h")

	target := newFakeTarget(other, stale, unscoped)
	exec := newExecutor(src, target, offset.NewMemoryStore(), cfg, false)

	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Totals.SyscaraFiltered)
	assert.Equal(t, 1, report.Totals.Webflow)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Deleted)
	// B left the filter and is deleted; records of other scopes are untouched.
	assert.Equal(t, []string{"A", "O", "U"}, target.keys())
	for _, item := range target.items {
		if item.Field(mapper.FieldKey) == "A" {
			assert.Equal(t, "osterroenfeld", item.Field(mapper.FieldSyncScope))
		}
	}
}

func TestRun_ItemFailureIsIsolated(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{entry("A", "1", "X"), entry("B", "1", "X"), entry("C", "1", "X")}}
	target := newFakeTarget()
	target.failCreate["B"] = true
	store := offset.NewMemoryStore()
	exec := newExecutor(src, target, store, testConfig(), false)

	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "B", report.Errors[0].FahrzeugID)
	assert.Contains(t, report.Errors[0].Error, "validation error")
	assert.Equal(t, []string{"A", "C"}, target.keys())
}

func TestRun_MissingIDIsItemError(t *testing.T) {
	src := &fakeSource{entries: []syscara.Entry{{Key: "", Ad: syscara.Ad{}}, entry("A", "1", "X")}}
	exec := newExecutor(src, newFakeTarget(), offset.NewMemoryStore(), testConfig(), false)

	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "listing has no id", report.Errors[0].Error)
}

func TestRun_UndecodableListingIsItemError(t *testing.T) {
	entries, err := syscara.DecodeCollection([]byte(`{
		"1": {"id": 1, "model": {"producer": "Hymer", "model": "B"}, "store": {"zipcode": 24783}},
		"2": {"id": 2, "type": 5, "store": {"zipcode": 24783}},
		"3": {"id": 3, "model": {"producer": "Knaus", "model": "L"}, "store": {"zipcode": 24783}}
	}`))
	require.NoError(t, err)

	target := newFakeTarget(existing("wf-2", "2", "h"))
	cfg := testConfig()
	cfg.ZipCodes = []string{"24783"}
	exec := newExecutor(&fakeSource{entries: entries}, target, offset.NewMemoryStore(), cfg, false)

	report, err := exec.Run(context.Background(), RunOptions{Origin: "https://x"})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, 3, report.Totals.SyscaraFiltered)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "2", report.Errors[0].FahrzeugID)
	assert.Contains(t, report.Errors[0].Error, "failed to decode listing")
	assert.Equal(t, []string{"1", "2", "3"}, target.keys())
	assert.Empty(t, target.unpublished)
}

func TestRun_LoadFailuresAreFatal(t *testing.T) {
	exec := newExecutor(&fakeSource{err: errors.New("syscara down")}, newFakeTarget(), offset.NewMemoryStore(), testConfig(), false)
	_, err := exec.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syscara down")

	target := newFakeTarget()
	target.listErr = errors.New("webflow down")
	exec = newExecutor(&fakeSource{}, target, offset.NewMemoryStore(), testConfig(), false)
	_, err = exec.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webflow down")
}

func TestRun_ResolvesReferencesAndMediaURLs(t *testing.T) {
	e := entry("7", "1", "Acme")
	e.Ad.Features = syscara.Tokens{"AWNING", "UNKNOWN_THING"}
	e.Ad.Beds = syscara.Beds{Beds: syscara.Tokens{"FRENCH_BED"}}
	e.Ad.Media = []syscara.Media{
		{ID: "10", Group: syscara.MediaGroupImage},
		{ID: "11", Group: syscara.MediaGroupImage},
		{ID: "12", Group: syscara.MediaGroupLayout},
	}
	target := newFakeTarget()
	target.refs["features"] = map[string]string{"awning": "feat-1"}
	target.refs["beds"] = map[string]string{"french-bed": "bed-1"}

	exec := newExecutor(&fakeSource{entries: []syscara.Entry{e}}, target, offset.NewMemoryStore(), testConfig(), false)
	_, err := exec.Run(context.Background(), RunOptions{Origin: "https://sync.example.com/"})
	require.NoError(t, err)

	require.Len(t, target.items, 1)
	fields := target.items[0].FieldData
	assert.Equal(t, []string{"feat-1"}, fields[mapper.FieldFeatures])
	assert.Equal(t, []string{"bed-1"}, fields[mapper.FieldBedCategories])
	assert.Equal(t, "https://sync.example.com/media?id=10", fields[mapper.FieldMainImage])
	assert.Equal(t, []string{"https://sync.example.com/media?id=10", "https://sync.example.com/media?id=11"}, fields[mapper.FieldGallery])
	assert.Equal(t, "https://sync.example.com/media?id=12", fields[mapper.FieldFloorPlan])
	assert.Len(t, fields[mapper.FieldSyncHash], 40)

	hash, err := reconcile.Fingerprint(fields, mapper.FieldSyncHash)
	require.NoError(t, err)
	assert.Equal(t, hash, fields[mapper.FieldSyncHash])
}

func TestRun_BedsOmittedWhenUnresolved(t *testing.T) {
	e := entry("8", "1", "Acme")
	e.Ad.Beds = syscara.Beds{Beds: syscara.Tokens{"UNKNOWN"}}
	target := newFakeTarget()
	exec := newExecutor(&fakeSource{entries: []syscara.Entry{e}}, target, offset.NewMemoryStore(), testConfig(), false)

	_, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	_, ok := target.items[0].FieldData[mapper.FieldBedCategories]
	assert.False(t, ok)
	assert.Equal(t, []string{}, target.items[0].FieldData[mapper.FieldFeatures])
}

// conflictStore simulates a concurrent run moving the offset.
type conflictStore struct{ offset.MemoryStore }

func (s *conflictStore) Advance(context.Context, int, int) error { return offset.ErrConflict }

func TestRun_OffsetConflictIsReported(t *testing.T) {
	exec := newExecutor(&fakeSource{entries: []syscara.Entry{entry("A", "1", "X")}}, newFakeTarget(), &conflictStore{}, testConfig(), false)

	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, report.OffsetConflict)
	assert.Empty(t, report.Errors)
}

type recorderFunc func(ctx context.Context, report *Report) error

func (f recorderFunc) Record(ctx context.Context, report *Report) error { return f(ctx, report) }

func TestRun_RecordsOnlyLiveRuns(t *testing.T) {
	var recorded []*Report
	target := newFakeTarget()
	exec := NewExecutor(&fakeSource{entries: []syscara.Entry{entry("A", "1", "X")}}, target,
		reconcile.NewResolver(target, zap.NewNop()), offset.NewMemoryStore(),
		recorderFunc(func(_ context.Context, r *Report) error {
			recorded = append(recorded, r)
			return errors.New("sink down")
		}),
		testConfig(), Collections{Vehicles: "vehicles"}, zap.NewNop())

	_, err := exec.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, recorded)

	report, err := exec.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, report.RunID, recorded[0].RunID)
}

func TestNextOffset(t *testing.T) {
	assert.Equal(t, 2, NextOffset(0, 2, 5))
	assert.Equal(t, 0, NextOffset(4, 2, 5))
	assert.Equal(t, 0, NextOffset(3, 2, 5))
	assert.Equal(t, 0, NextOffset(0, 2, 0))
}
