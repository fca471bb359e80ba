package reconcile

// ActionType represents the outcome classified for a single record.
type ActionType string

const (
	// ActionCreate creates a record that does not exist in the target.
	ActionCreate ActionType = "create"
	// ActionUpdate rewrites a record whose fingerprint changed.
	ActionUpdate ActionType = "update"
	// ActionSkip leaves an unchanged record alone.
	ActionSkip ActionType = "skip"
	// ActionDelete removes a record that is no longer in the source set.
	ActionDelete ActionType = "delete"
)

// Desired is a fully mapped and resolved record ready to be written.
type Desired struct {
	// Key is the external key joining source and target.
	Key string `json:"key"`

	// Fields is the flat field record to write.
	Fields map[string]any `json:"fields"`

	// Hash is the fingerprint of Fields.
	Hash string `json:"hash"`
}

// Existing is a record already present in the target system.
type Existing struct {
	// ID is the target system's own identifier.
	ID string `json:"id"`

	// Key is the external key stored on the record.
	Key string `json:"key"`

	// Hash is the fingerprint stored at the last successful write.
	Hash string `json:"hash"`
}

// Action represents a planned operation.
type Action struct {
	// Type specifies the operation.
	Type ActionType `json:"type"`

	// Key is the external key.
	Key string `json:"key"`

	// TargetID is the target identifier for update, skip and delete.
	TargetID string `json:"targetId,omitempty"`

	// Reason explains a delete.
	Reason string `json:"reason,omitempty"`

	// Desired is the record to write for create and update.
	Desired *Desired `json:"-"`
}

// Plan contains the planned actions in execution order: creates, updates and skips
// in batch order, then deletes ordered by key.
type Plan struct {
	Actions []Action    `json:"actions"`
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate counts of a plan.
type PlanSummary struct {
	Creates int `json:"creates"`
	Updates int `json:"updates"`
	Skips   int `json:"skips"`
	Deletes int `json:"deletes"`

	// Duplicates counts target records sharing a key with an earlier record.
	// They are left untouched.
	Duplicates int `json:"duplicates"`
}

// ApplyOptions controls plan execution.
type ApplyOptions struct {
	// DryRun suppresses every mutating call.
	DryRun bool

	// Concurrency bounds parallel item operations. Values below 1 mean sequential.
	Concurrency int
}

// ItemError records a failed operation on a single record.
type ItemError struct {
	Key    string     `json:"fahrzeugId"`
	Action ActionType `json:"action"`
	Err    error      `json:"-"`
}

// Error implements error.
func (e ItemError) Error() string {
	return string(e.Action) + " " + e.Key + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e ItemError) Unwrap() error {
	return e.Err
}

// ApplyResult reports what a plan execution did.
type ApplyResult struct {
	Created int
	Updated int
	Skipped int
	Deleted int

	// CreatedIDs maps external keys to the ids assigned by the target.
	CreatedIDs map[string]string

	// Errors is ordered by key.
	Errors []ItemError
}
