package lifecycle

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Transition outcome labels recorded on the transitions counter.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// observer holds the per-controller tracing and metric instruments.
// Instruments are created once at construction and reused for every
// transition.
type observer struct {
	tracer      trace.Tracer
	transitions metric.Int64Counter
}

// newObserver wires the tracer and the transition counter. A nil tracer
// degrades to no-op spans; a nil meter skips metrics entirely. A broken
// meter is logged and skipped rather than failing controller
// construction.
func newObserver(tracer trace.Tracer, meter metric.Meter, logger *slog.Logger) *observer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("atrium-sdk")
	}

	o := &observer{tracer: tracer}
	if meter != nil {
		counter, err := meter.Int64Counter("atrium.plugin.transitions",
			metric.WithDescription("Plugin lifecycle transitions by operation and outcome"),
			metric.WithUnit("1"))
		if err != nil {
			logger.Warn("transition counter unavailable", slog.String("error", err.Error()))
		} else {
			o.transitions = counter
		}
	}
	return o
}

// start opens the span for one transition attempt.
func (o *observer) start(ctx context.Context, op, pluginName, pluginVersion string) (context.Context, trace.Span) {
	ctx, span := o.tracer.Start(ctx, "plugin."+op)
	span.SetAttributes(
		attribute.String("plugin.name", pluginName),
		attribute.String("plugin.version", pluginVersion),
	)
	return ctx, span
}

// end closes the transition span and records the counter sample.
func (o *observer) end(ctx context.Context, span trace.Span, op, outcome string, state State, err error) {
	span.SetAttributes(attribute.String("plugin.state", state.String()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	if o.transitions != nil {
		o.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		))
	}
}
