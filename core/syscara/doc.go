// Package syscara is the client for the Syscara inventory API, the source side of
// the vehicle sync.
//
// The API returns the full listing collection from one call as an object keyed by
// listing id. FetchAll normalizes that shape into an ordered slice of Entry values so
// callers never deal with the "keyed by its own id" form. Numeric attributes arrive
// as numbers, numeric strings or null; the Number and ID types absorb those variants.
//
// Every request goes through a circuit breaker. Transport errors and 5xx responses
// count as failures; 4xx responses are returned to the caller as APIError without
// tripping the breaker. The media endpoints resolve a media id to its file name and
// stream the binary for the media proxy.
package syscara
