package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta identifies one backend call for telemetry purposes.
type CallMeta struct {
	Connector string // Connector name, e.g. "github" (required)
	Route     string // Logical route key, e.g. "GET /users/:id"
	Version   string // Connector version (optional)
}

// SpanName returns the deterministic span name for this call.
// Format: connector.call.<connector>
func (m CallMeta) SpanName() string {
	if m.Connector != "" {
		return "connector.call." + m.Connector
	}
	return "connector.call"
}

// CallID returns the fully qualified call identifier used as the primary
// telemetry label. Format: <connector>:<route> when both are set.
func (m CallMeta) CallID() string {
	if m.Connector != "" && m.Route != "" {
		return m.Connector + ":" + m.Route
	}
	if m.Connector != "" {
		return m.Connector
	}
	return m.Route
}

// Tracer wraps OpenTelemetry tracing with call-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a backend call.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes. The span
// kind is client since every call crosses a network boundary.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("connector.name", meta.Connector),
		attribute.Bool("call.error", false), // Updated in EndSpan on failure
	}

	if meta.Route != "" {
		attrs = append(attrs, attribute.String("call.route", meta.Route))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("connector.version", meta.Version))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("call.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
