// Package reconcile computes and applies the difference between a desired record set
// (derived from the source system) and the records that already exist in a target
// system.
//
// # Model
//
// Records on both sides are joined by a stable external key. Every desired record
// carries a content fingerprint (Fingerprint) over its deterministic serialization;
// existing records carry the fingerprint stored at their last successful write.
// BuildPlan classifies each desired record:
//
//   - no existing record with the key: Create
//   - existing record with the same fingerprint: Skip
//   - existing record with a different fingerprint: Update
//
// and each existing record whose key is absent from the current source key set as
// Delete. The source key set is passed separately from the desired batch, so a run
// that only writes a bounded batch still deletes against the whole filtered source.
//
// IndexTargets enforces one record per key: the first record wins and later records
// with the same key are only reported as duplicates.
//
// # Applying
//
// ApplyPlan executes a plan through a Mutator. Failures are isolated per item and
// collected in the result; only successful operations are counted. DryRun computes
// the same counts without calling the mutator.
//
// # References
//
// Resolver holds slug to id maps for reference collections. Each collection is
// loaded once per Resolver lifetime; concurrent callers share a single in-flight load.
//
// # Usage Example
//
//	index := reconcile.IndexTargets(existing)
//	plan := reconcile.BuildPlan(batch, sourceKeys, index)
//	result := reconcile.ApplyPlan(ctx, mutator, plan, reconcile.ApplyOptions{DryRun: dry})
package reconcile
