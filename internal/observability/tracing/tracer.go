package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this module.
const TracerName = "notify-dispatch"

// Tracer returns a tracer from the current global provider. It is resolved
// on every call so a provider installed after package init is honored.
//
//	ctx, span := tracing.Tracer().Start(ctx, "dispatch.attempt")
//	defer span.End()
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}
