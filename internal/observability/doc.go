// Package observability groups the logging, metrics and tracing helpers
// shared by the API and worker binaries.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: HTTP, database and notification Prometheus collectors
//   - tracing: OpenTelemetry HTTP middleware and tracer lookup
package observability
