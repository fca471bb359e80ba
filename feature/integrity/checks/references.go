package checks

import (
	"sort"

	"vehicle-sync/core/webflow"
)

// ReferenceReport describes one reference collection.
type ReferenceReport struct {
	Collection     string   `json:"collection"`
	Total          int      `json:"total"`
	MissingSlug    []string `json:"missingSlug"`
	DuplicateSlugs []string `json:"duplicateSlugs"`
}

// CheckReferences finds reference items the resolver cannot use unambiguously.
func CheckReferences(collection string, items []webflow.Item) *ReferenceReport {
	report := &ReferenceReport{
		Collection:     collection,
		Total:          len(items),
		MissingSlug:    []string{},
		DuplicateSlugs: []string{},
	}

	seen := map[string]int{}
	for _, item := range items {
		slug := item.Field("slug")
		if slug == "" {
			report.MissingSlug = append(report.MissingSlug, item.ID)
			continue
		}
		seen[slug]++
	}
	for slug, n := range seen {
		if n > 1 {
			report.DuplicateSlugs = append(report.DuplicateSlugs, slug)
		}
	}
	sort.Strings(report.MissingSlug)
	sort.Strings(report.DuplicateSlugs)
	return report
}
