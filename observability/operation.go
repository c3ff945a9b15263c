package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced unit of work.
type Operation struct {
	Name      string
	StartTime time.Time
	span      trace.Span
	metrics   *Metrics
}

// StartOperation starts a span named name. If metrics is nil, metric
// recording is skipped.
func StartOperation(ctx context.Context, name string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	span.SetAttributes(attribute.String(AttrOperationName, name))
	return ctx, &Operation{
		Name:      name,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// Span returns the operation's span.
func (op *Operation) Span() trace.Span { return op.span }

// End ends the span, marking it failed when err is non-nil, and records the
// operation metrics.
func (op *Operation) End(ctx context.Context, err error) {
	duration := op.Duration()
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	if op.metrics != nil {
		op.metrics.RecordOperation(ctx, op.Name, status, duration)
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
