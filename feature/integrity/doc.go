// Package integrity checks the health of the data the sync depends on.
//
// The sync assumes one CMS item per vehicle key, a hash on every synced item and
// reachable side stores. These checks report where reality drifted from that, for
// example after manual edits in the CMS designer.
//
// # Checks Provided
//
//   - Collection: items without fahrzeug-id, items without sync-hash, keys held by
//     more than one item (the sync only touches the first), drafts and archived items.
//   - References: reference items without slug and slugs used twice, per reference
//     collection (features, bettarten).
//   - Storage: the media cache bucket exists (supports ?fix=true to create it).
//   - Database: the run log and offset tables exist (supports ?fix=true to migrate).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/collection : Runs the vehicle collection check.
//   - GET /integrity/references : Runs the reference collection check.
//   - GET /integrity/storage : Runs the bucket check.
//   - GET /integrity/database : Runs the schema check.
package integrity
