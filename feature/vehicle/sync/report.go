package sync

import "time"

// Totals describes the sizes of both sides of a run.
type Totals struct {
	// SyscaraFiltered is the size of the filtered source set.
	SyscaraFiltered int `json:"syscaraFiltered"`
	// Webflow is the number of distinct in-scope target records.
	Webflow int `json:"webflow"`
}

// ItemError is a per-vehicle failure.
type ItemError struct {
	FahrzeugID string `json:"fahrzeugId"`
	Error      string `json:"error"`
}

// Report is the outcome of one sync run.
type Report struct {
	RunID          string      `json:"runId"`
	OK             bool        `json:"ok"`
	DryRun         bool        `json:"dryRun"`
	Limit          int         `json:"limit"`
	Offset         int         `json:"offset"`
	NextOffset     int         `json:"nextOffset"`
	OffsetConflict bool        `json:"offsetConflict,omitempty"`
	Totals         Totals      `json:"totals"`
	Created        int         `json:"created"`
	Updated        int         `json:"updated"`
	Skipped        int         `json:"skipped"`
	Deleted        int         `json:"deleted"`
	Duplicates     int         `json:"duplicates"`
	Errors         []ItemError `json:"errors"`
	StartedAt      time.Time   `json:"startedAt"`
	DurationMs     int64       `json:"durationMs"`
}
