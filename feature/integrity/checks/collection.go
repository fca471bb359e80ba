package checks

import (
	"sort"

	"vehicle-sync/core/webflow"
	"vehicle-sync/feature/vehicle/mapper"
)

// CollectionReport describes the vehicle collection as the sync sees it.
type CollectionReport struct {
	Total   int `json:"total"`
	InScope int `json:"inScope"`
	// MissingKey lists item ids without fahrzeug-id; the sync never matches them.
	MissingKey []string `json:"missingKey"`
	// MissingHash lists keys of items without sync-hash; the next run rewrites them.
	MissingHash []string `json:"missingHash"`
	// Duplicates maps keys to every item id carrying them.
	Duplicates map[string][]string `json:"duplicates"`
	Drafts     int                 `json:"drafts"`
	Archived   int                 `json:"archived"`
}

// Healthy reports whether the sync can own every in-scope item.
func (r *CollectionReport) Healthy() bool {
	return len(r.MissingKey) == 0 && len(r.Duplicates) == 0
}

// CheckCollection inspects the items of the scope. An empty scope covers all items.
func CheckCollection(items []webflow.Item, scope string) *CollectionReport {
	report := &CollectionReport{
		Total:       len(items),
		MissingKey:  []string{},
		MissingHash: []string{},
		Duplicates:  map[string][]string{},
	}

	byKey := map[string][]string{}
	for _, item := range items {
		if scope != "" && item.Field(mapper.FieldSyncScope) != scope {
			continue
		}
		report.InScope++
		if item.IsDraft {
			report.Drafts++
		}
		if item.IsArchived {
			report.Archived++
		}

		key := item.Field(mapper.FieldKey)
		if key == "" {
			report.MissingKey = append(report.MissingKey, item.ID)
			continue
		}
		if item.Field(mapper.FieldSyncHash) == "" {
			report.MissingHash = append(report.MissingHash, key)
		}
		byKey[key] = append(byKey[key], item.ID)
	}

	for key, ids := range byKey {
		if len(ids) > 1 {
			report.Duplicates[key] = ids
		}
	}
	sort.Strings(report.MissingKey)
	sort.Strings(report.MissingHash)
	return report
}
