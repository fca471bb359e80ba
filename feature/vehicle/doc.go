// Package vehicle exposes the delta sync and its diagnostics over HTTP.
//
// # Routes
//
//	GET /sync          run one sync batch (?limit=, ?dry=1, ?offset=)
//	GET /sync/runs     latest recorded runs (requires a database)
//	GET /ads/public    visibility statistics of the source catalog
//	GET /ads/beds      bed type vocabulary with frequencies and slugs
//	GET /ads/mapping   mapping diagnostics of the filtered catalog
//	GET /ads/:id       one listing, raw and mapped
//
// The sync itself lives in the sync sub-package and the field mapping in mapper.
// This package only wires them to fiber and adds the read-only inspection views,
// which never write to the CMS.
package vehicle
