package tracing

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"notify-dispatch/internal/pkg/config"
)

// SampleRatioFromEnv reads TRACE_SAMPLE_RATIO, a fraction in [0, 1]
// defaulting to 1.
func SampleRatioFromEnv(logger *slog.Logger) float64 {
	return config.LoadEnvFloat("TRACE_SAMPLE_RATIO", 1, func(v float64) error {
		return config.ValidateFloatRange(v, 0, 1)
	}).Apply(logger, nil, "trace_sample_ratio")
}

// Install sets a global SDK tracer provider and the W3C trace context
// propagator. New traces are sampled at ratio; propagated ones follow the
// caller's decision. Spans are not exported anywhere yet, but every
// request gets a real trace id for logs and the X-Trace-Id header.
//
// Callers must Shutdown the returned provider.
func Install(service string, ratio float64, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	base := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	}
	tp := sdktrace.NewTracerProvider(append(base, opts...)...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}
