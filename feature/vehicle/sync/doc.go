// Package sync runs the delta sync of vehicle listings from Syscara into the Webflow
// vehicle collection.
//
// A run loads the source listings, the target items and both reference maps
// concurrently, filters the source, takes a bounded batch starting at the persisted
// offset, maps and fingerprints each listing of the batch, plans against the in-scope
// target records and applies the plan. Deletes are computed against the whole
// filtered source set, not only the batch. The offset advances and wraps to zero at
// the end of the filtered set, so repeated runs cover the whole catalog round robin.
//
// Loading failures abort the run. Everything after that is isolated per vehicle and
// reported in Report.Errors.
package sync
