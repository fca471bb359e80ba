package vehicle_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vehicle-sync/core/syscara"
	"vehicle-sync/feature/vehicle"
	"vehicle-sync/feature/vehicle/mapper"
	vsync "vehicle-sync/feature/vehicle/sync"
)

type fakeCatalog struct {
	entries []syscara.Entry
	err     error
}

func (f *fakeCatalog) FetchAll(context.Context) ([]syscara.Entry, error) {
	return f.entries, f.err
}

func (f *fakeCatalog) FetchOne(_ context.Context, id string) (syscara.Entry, error) {
	for _, e := range f.entries {
		if e.Key == id {
			return e, nil
		}
	}
	return syscara.Entry{}, syscara.ErrNotFound
}

type fakeRunner struct {
	got    vsync.RunOptions
	report *vsync.Report
	err    error
}

func (f *fakeRunner) Run(_ context.Context, opts vsync.RunOptions) (*vsync.Report, error) {
	f.got = opts
	return f.report, f.err
}

type fakeHistory struct{ runs []vsync.SyncRun }

func (f *fakeHistory) Recent(_ context.Context, n int) ([]vsync.SyncRun, error) {
	if n < len(f.runs) {
		return f.runs[:n], nil
	}
	return f.runs, nil
}

func ad(id, typ, status, zip string) syscara.Entry {
	return syscara.Entry{
		Key: id,
		Ad: syscara.Ad{
			ID:     syscara.ID(id),
			Type:   typ,
			Status: status,
			Model:  syscara.Model{Producer: "Hymer", Model: "B " + id},
			Store:  syscara.Store{ZipCode: syscara.ID(zip), City: "Osterrönfeld"},
		},
		Raw: json.RawMessage(`{"id":` + id + `}`),
	}
}

func catalog() *fakeCatalog {
	a := ad("1", "Reisemobil", "BE", "24783")
	a.Ad.Beds.Beds = syscara.Tokens{"FRENCH_BED", "ALCOVE_BED"}
	a.Ad.Media = []syscara.Media{{ID: "5", Group: syscara.MediaGroupImage}}
	b := ad("2", "Caravan", "BE", "24783")
	b.Ad.Beds.Beds = syscara.Tokens{"ALCOVE_BED"}
	c := ad("3", "Wohnwagen", "BE", "24783")
	d := ad("4", "Reisemobil", "VK", "10115")
	d.Ad.Model = syscara.Model{}
	return &fakeCatalog{entries: []syscara.Entry{a, b, c, d}}
}

func newApp(cat vehicle.Catalog, runner vehicle.Runner, history vehicle.History, publicURL string) *fiber.App {
	svc := vehicle.NewService(cat, runner, history, mapper.New(mapper.DefaultOptions()),
		vsync.Filter{ZipCodes: []string{"24783"}}, zap.NewNop())
	app := fiber.New()
	feature := vehicle.NewFeature(svc, publicURL)
	_ = feature.Load(app)
	return app
}

func getJSON(t *testing.T, app *fiber.App, target string, headers map[string]string, out any) int {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestFeature(t *testing.T) {
	f := vehicle.NewFeature(nil, "")
	assert.Equal(t, "vehicle", f.Name())
	assert.True(t, f.IsEnabled())
}

func TestHandleSync(t *testing.T) {
	runner := &fakeRunner{report: &vsync.Report{RunID: "r1", OK: true, Created: 2, Errors: []vsync.ItemError{}}}
	app := newApp(catalog(), runner, nil, "")

	var report vsync.Report
	status := getJSON(t, app, "/sync?limit=5&dry=1&offset=3", map[string]string{
		"X-Forwarded-Proto": "https",
		"X-Forwarded-Host":  "sync.example.com",
	}, &report)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "r1", report.RunID)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 5, runner.got.Limit)
	assert.True(t, runner.got.DryRun)
	require.NotNil(t, runner.got.Offset)
	assert.Equal(t, 3, *runner.got.Offset)
	assert.Equal(t, "https://sync.example.com", runner.got.Origin)
}

func TestHandleSync_Defaults(t *testing.T) {
	runner := &fakeRunner{report: &vsync.Report{OK: true}}
	app := newApp(catalog(), runner, nil, "https://cdn.example.com/")

	status := getJSON(t, app, "/sync", nil, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, runner.got.Limit)
	assert.False(t, runner.got.DryRun)
	assert.Nil(t, runner.got.Offset)
	assert.Equal(t, "https://cdn.example.com", runner.got.Origin)
}

func TestHandleSync_Errors(t *testing.T) {
	runner := &fakeRunner{err: errors.New("failed to load source listings: boom")}
	app := newApp(catalog(), runner, nil, "")

	var body map[string]string
	assert.Equal(t, fiber.StatusBadRequest, getJSON(t, app, "/sync?limit=abc", nil, &body))
	assert.Contains(t, body["error"], "limit")
	assert.Equal(t, fiber.StatusBadRequest, getJSON(t, app, "/sync?offset=-1", nil, nil))

	assert.Equal(t, fiber.StatusInternalServerError, getJSON(t, app, "/sync", nil, &body))
	assert.Contains(t, body["error"], "boom")
}

func TestHandleRuns(t *testing.T) {
	var body map[string]string
	app := newApp(catalog(), &fakeRunner{}, nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, getJSON(t, app, "/sync/runs", nil, &body))

	history := &fakeHistory{runs: []vsync.SyncRun{{RunID: "b"}, {RunID: "a"}}}
	app = newApp(catalog(), &fakeRunner{}, history, "")
	var runs []vsync.SyncRun
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/sync/runs?limit=1", nil, &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "b", runs[0].RunID)
}

func TestHandlePublicStats(t *testing.T) {
	app := newApp(catalog(), &fakeRunner{}, nil, "")

	var stats vehicle.PublicStats
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/public", nil, &stats))
	assert.Equal(t, 4, stats.TotalVehicles)
	assert.Equal(t, 2, stats.PublicVehicles)
	assert.Equal(t, map[string]int{"Reisemobil": 1, "Caravan": 1}, stats.PerType)
	assert.Equal(t, 2, stats.Excluded)
	assert.Equal(t, map[string]int{vsync.ReasonType: 1, vsync.ReasonStatus: 1}, stats.ExcludedReasons)
	require.Len(t, stats.SampleIncluded, 2)
	assert.Equal(t, "Hymer B 1", stats.SampleIncluded[0].Name)
	assert.Equal(t, "4", stats.SampleExcluded[1].ID)
}

func TestHandleBeds(t *testing.T) {
	app := newApp(catalog(), &fakeRunner{}, nil, "")

	var scan vehicle.BedScan
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/beds", nil, &scan))
	assert.Equal(t, 4, scan.TotalVehicles)
	assert.Equal(t, 2, scan.TotalBettarten)
	assert.Equal(t, []vehicle.BedCount{
		{Bettart: "ALCOVE_BED", Count: 2, Slug: "alcove-bed"},
		{Bettart: "FRENCH_BED", Count: 1, Slug: "french-bed"},
	}, scan.Bettarten)
}

func TestHandleMapping(t *testing.T) {
	app := newApp(catalog(), &fakeRunner{}, nil, "")

	var report vehicle.MappingReport
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/mapping", nil, &report))
	assert.Equal(t, 4, report.TotalVehicles)
	assert.Equal(t, 3, report.FilteredVehicles)
	assert.Equal(t, 0, report.MissingIDs)
	assert.Equal(t, 0, report.UnknownNames)
	assert.Equal(t, 2, report.VehiclesWithoutImages)
	require.Len(t, report.Sample, 3)
	assert.Equal(t, 1, report.Sample[0].Images)
	assert.Equal(t, "24783", report.Sample[0].ZipCode)
}

func TestHandleInspect(t *testing.T) {
	app := newApp(catalog(), &fakeRunner{}, nil, "")

	var inspection struct {
		ID             string          `json:"id"`
		Included       bool            `json:"included"`
		ExcludedReason string          `json:"excludedReason"`
		Raw            json.RawMessage `json:"raw"`
		Mapped         mapper.Record   `json:"mapped"`
	}
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/4", nil, &inspection))
	assert.Equal(t, "4", inspection.ID)
	assert.False(t, inspection.Included)
	assert.Equal(t, vsync.ReasonZipCode, inspection.ExcludedReason)
	assert.JSONEq(t, `{"id":4}`, string(inspection.Raw))
	assert.Equal(t, "4", inspection.Mapped.Key)
	assert.Equal(t, "Vehicle 4", inspection.Mapped.Fields[mapper.FieldName])

	var body map[string]string
	assert.Equal(t, fiber.StatusNotFound, getJSON(t, app, "/ads/999", nil, &body))
}

func TestHandlers_UndecodableListing(t *testing.T) {
	cat := catalog()
	cat.entries = append(cat.entries, syscara.Entry{
		Key: "9",
		Ad:  syscara.Ad{ID: "9"},
		Raw: json.RawMessage(`{"id":9,"type":5}`),
		Err: errors.New("failed to decode listing: type mismatch"),
	})
	app := newApp(cat, &fakeRunner{}, nil, "")

	var stats vehicle.PublicStats
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/public", nil, &stats))
	assert.Equal(t, 5, stats.TotalVehicles)
	assert.Equal(t, 2, stats.PublicVehicles)
	assert.Equal(t, 1, stats.ExcludedReasons[vsync.ReasonDecodeError])

	var scan vehicle.BedScan
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/beds", nil, &scan))
	assert.Equal(t, 2, scan.TotalBettarten)

	var report vehicle.MappingReport
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/mapping", nil, &report))
	assert.Equal(t, 4, report.FilteredVehicles)
	assert.Equal(t, []string{"9"}, report.DecodeErrors)
	assert.Len(t, report.Sample, 3)

	var inspection map[string]any
	assert.Equal(t, fiber.StatusOK, getJSON(t, app, "/ads/9", nil, &inspection))
	assert.Equal(t, vsync.ReasonDecodeError, inspection["excludedReason"])
	assert.Equal(t, "failed to decode listing: type mismatch", inspection["error"])
	assert.Nil(t, inspection["mapped"])
}

func TestHandlers_CatalogFailure(t *testing.T) {
	app := newApp(&fakeCatalog{err: errors.New("syscara down")}, &fakeRunner{}, nil, "")

	for _, target := range []string{"/ads/public", "/ads/beds", "/ads/mapping"} {
		var body map[string]string
		assert.Equal(t, fiber.StatusInternalServerError, getJSON(t, app, target, nil, &body), target)
		assert.Equal(t, "syscara down", body["error"])
	}
}
