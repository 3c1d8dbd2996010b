// Package metrics holds the process-wide Prometheus collectors shared by
// the API and the worker: HTTP traffic, database pool statistics and
// notification lifecycle counters. Collectors register on the default
// registry at init and are served by promhttp on /metrics.
//
// Per-component metrics (delivery chain, dispatcher, queue) live next to
// the code that records them.
package metrics
