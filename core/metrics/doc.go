// Package metrics declares the Prometheus instruments of the sync service.
//
// Instruments are registered on the default registry via promauto and exposed by
// the HTTP server on /metrics.
package metrics
