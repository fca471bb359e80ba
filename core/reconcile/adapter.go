package reconcile

import "context"

// Mutator writes to the target system. Implementations decide what a write means
// for the target, e.g. publishing after create or unpublishing before delete.
type Mutator interface {
	// Create writes a new record and returns the id assigned by the target.
	Create(ctx context.Context, fields map[string]any) (string, error)

	// Update replaces the fields of the record with the given id.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}

// Publisher is implemented by mutators whose target stages writes. When present,
// ApplyPlan publishes every created or updated record right after the write; a
// failed publish fails the item.
type Publisher interface {
	Publish(ctx context.Context, ids []string) error
}

// ReferenceLoader loads the slug to id map of one reference collection.
type ReferenceLoader interface {
	LoadReferences(ctx context.Context, collection string) (map[string]string, error)
}
