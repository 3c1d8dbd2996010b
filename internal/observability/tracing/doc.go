// Package tracing wires OpenTelemetry into the HTTP API and the delivery
// pipeline.
//
// HTTP requests get a server span from Middleware. Each delivery attempt
// gets a "dispatch.attempt" span started by the orchestrator. The cmd
// binaries call Install at startup; no exporter is configured.
package tracing
