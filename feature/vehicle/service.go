package vehicle

import (
	"context"
	"errors"
	"sort"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"vehicle-sync/core/syscara"
	"vehicle-sync/feature/vehicle/mapper"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// sampleSize caps the samples of every diagnostic view.
const sampleSize = 10

// PublicFilter selects the listings considered public on the website.
var PublicFilter = vsync.Filter{
	Statuses: []string{"BE"},
	Types:    []string{"Reisemobil", "Caravan"},
}

// ErrHistoryDisabled is returned when no run log is configured.
var ErrHistoryDisabled = errors.New("run history is not configured")

// Catalog reads listings from the source system.
type Catalog interface {
	FetchAll(ctx context.Context) ([]syscara.Entry, error)
	FetchOne(ctx context.Context, id string) (syscara.Entry, error)
}

// Runner executes sync runs.
type Runner interface {
	Run(ctx context.Context, opts vsync.RunOptions) (*vsync.Report, error)
}

// History lists recorded runs.
type History interface {
	Recent(ctx context.Context, n int) ([]vsync.SyncRun, error)
}

// Service implements the vehicle use cases.
type Service struct {
	catalog Catalog
	runner  Runner
	history History
	mapper  *mapper.Mapper
	filter  vsync.Filter
	logger  *zap.Logger
}

// NewService creates a vehicle service. history may be nil.
func NewService(catalog Catalog, runner Runner, history History, m *mapper.Mapper, filter vsync.Filter, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		runner:  runner,
		history: history,
		mapper:  m,
		filter:  filter,
		logger:  logger,
	}
}

// Sync runs one sync batch.
func (s *Service) Sync(ctx context.Context, opts vsync.RunOptions) (*vsync.Report, error) {
	return s.runner.Run(ctx, opts)
}

// Runs returns the n latest recorded runs.
func (s *Service) Runs(ctx context.Context, n int) ([]vsync.SyncRun, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, n)
}

// IncludedSample is a listing that passed the public filter.
type IncludedSample struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ExcludedSample is a listing rejected by the public filter.
type ExcludedSample struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// PublicStats summarizes which listings are public.
type PublicStats struct {
	TotalVehicles   int              `json:"totalVehicles"`
	PublicVehicles  int              `json:"publicVehicles"`
	PerType         map[string]int   `json:"perType"`
	Excluded        int              `json:"excluded"`
	ExcludedReasons map[string]int   `json:"excludedReasons"`
	SampleIncluded  []IncludedSample `json:"sampleIncluded"`
	SampleExcluded  []ExcludedSample `json:"sampleExcluded"`
}

// PublicStats classifies the whole catalog with PublicFilter.
func (s *Service) PublicStats(ctx context.Context) (*PublicStats, error) {
	entries, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PublicStats{
		TotalVehicles:   len(entries),
		PerType:         map[string]int{},
		ExcludedReasons: map[string]int{},
		SampleIncluded:  []IncludedSample{},
		SampleExcluded:  []ExcludedSample{},
	}
	for _, e := range entries {
		ok, reason := PublicFilter.Match(e.Ad)
		if e.Err != nil {
			ok, reason = false, vsync.ReasonDecodeError
		}
		if !ok {
			stats.Excluded++
			stats.ExcludedReasons[reason]++
			if len(stats.SampleExcluded) < sampleSize {
				stats.SampleExcluded = append(stats.SampleExcluded, ExcludedSample{
					ID: e.Key, Type: e.Ad.Type, Status: e.Ad.Status, Reason: reason,
				})
			}
			continue
		}
		stats.PublicVehicles++
		stats.PerType[e.Ad.Type]++
		if len(stats.SampleIncluded) < sampleSize {
			stats.SampleIncluded = append(stats.SampleIncluded, IncludedSample{
				ID: e.Key, Name: mapper.DisplayName(e.Ad), Type: e.Ad.Type,
			})
		}
	}
	return stats, nil
}

// BedCount is one bed type token with its frequency.
type BedCount struct {
	Bettart string `json:"bettart"`
	Count   int    `json:"count"`
	Slug    string `json:"slug"`
}

// BedScan is the bed type vocabulary of the catalog.
type BedScan struct {
	TotalVehicles  int        `json:"totalVehicles"`
	TotalBettarten int        `json:"totalBettarten"`
	Bettarten      []BedCount `json:"bettarten"`
}

// ScanBeds counts bed type tokens across the catalog, most frequent first.
func (s *Service) ScanBeds(ctx context.Context) (*BedScan, error) {
	entries, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, e := range entries {
		if e.Err != nil {
			continue
		}
		for _, bed := range e.Ad.Beds.Beds {
			counts[bed]++
		}
	}

	beds := make([]BedCount, 0, len(counts))
	for bed, n := range counts {
		beds = append(beds, BedCount{Bettart: bed, Count: n, Slug: mapper.TokenSlug(bed)})
	}
	sort.Slice(beds, func(i, j int) bool {
		if beds[i].Count != beds[j].Count {
			return beds[i].Count > beds[j].Count
		}
		return beds[i].Bettart < beds[j].Bettart
	})

	return &BedScan{TotalVehicles: len(entries), TotalBettarten: len(beds), Bettarten: beds}, nil
}

// MappingSample is one mapped listing of the diagnostics view.
type MappingSample struct {
	ID      string `json:"syscaraId"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Images  int    `json:"images"`
	ZipCode string `json:"zipcode"`
	City    string `json:"city"`
}

// MappingReport flags mapping problems in the filtered catalog. DecodeErrors lists
// the keys of listings that did not decode.
type MappingReport struct {
	TotalVehicles         int             `json:"totalVehicles"`
	FilteredVehicles      int             `json:"filteredVehicles"`
	UnknownNames          int             `json:"unknownNames"`
	MissingIDs            int             `json:"missingIds"`
	VehiclesWithoutImages int             `json:"vehiclesWithoutImages"`
	DecodeErrors          []string        `json:"decodeErrors"`
	Sample                []MappingSample `json:"sample"`
}

// MappingReport maps every listing of the sync filter without writing anything.
func (s *Service) MappingReport(ctx context.Context) (*MappingReport, error) {
	entries, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := s.filter.Apply(entries)

	report := &MappingReport{
		TotalVehicles:    len(entries),
		FilteredVehicles: len(filtered),
		DecodeErrors:     []string{},
		Sample:           []MappingSample{},
	}
	for _, e := range filtered {
		if e.Err != nil {
			report.DecodeErrors = append(report.DecodeErrors, e.Key)
			continue
		}
		rec := s.mapper.Map(e.Ad)
		if mapper.DisplayName(e.Ad) == "" {
			report.UnknownNames++
		}
		if rec.Key == "" {
			report.MissingIDs++
		}
		if len(rec.Media.Gallery) == 0 {
			report.VehiclesWithoutImages++
		}
		if len(report.Sample) < sampleSize {
			report.Sample = append(report.Sample, MappingSample{
				ID:      e.Key,
				Name:    rec.Fields[mapper.FieldName].(string),
				Slug:    rec.Fields[mapper.FieldSlug].(string),
				Images:  len(rec.Media.Gallery),
				ZipCode: e.Ad.Store.ZipCode.String(),
				City:    e.Ad.Store.City,
			})
		}
	}
	return report, nil
}

// Inspection shows one listing as received and as it would be written.
type Inspection struct {
	ID             string          `json:"id"`
	Included       bool            `json:"included"`
	ExcludedReason string          `json:"excludedReason,omitempty"`
	Error          string          `json:"error,omitempty"`
	Raw            json.RawMessage `json:"raw"`
	Mapped         *mapper.Record  `json:"mapped"`
}

// Inspect fetches and maps a single listing.
func (s *Service) Inspect(ctx context.Context, id string) (*Inspection, error) {
	entry, err := s.catalog.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Err != nil {
		return &Inspection{
			ID:             entry.Key,
			ExcludedReason: vsync.ReasonDecodeError,
			Error:          entry.Err.Error(),
			Raw:            entry.Raw,
		}, nil
	}
	ok, reason := s.filter.Match(entry.Ad)
	rec := s.mapper.Map(entry.Ad)
	return &Inspection{
		ID:             entry.Key,
		Included:       ok,
		ExcludedReason: reason,
		Raw:            entry.Raw,
		Mapped:         &rec,
	}, nil
}
