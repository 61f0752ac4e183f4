// Package tracing provides OpenTelemetry tracing for the pipeline.
// Spans are created per pipeline phase so a full daily run can be inspected
// as a single trace.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the event-radar application.
var tracer = otel.Tracer("event-radar")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.search")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// Setup installs a basic SDK tracer provider and returns a shutdown
// function to flush spans on exit. Without an exporter configured the
// spans are dropped, which keeps local runs quiet while still exercising
// the span lifecycle.
func Setup() func(context.Context) error {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
