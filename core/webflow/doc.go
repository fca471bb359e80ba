// Package webflow is a small client for the Webflow CMS v2 collection API, the
// target side of the vehicle sync.
//
// It covers what the sync needs: paginated item listing (limit/offset, stopping at
// the first short page), create, update, delete, publish and live unpublish, plus
// building slug to id maps for reference collections. Calls are throttled with a
// token bucket and retried with backoff when the API answers 429.
package webflow
