// Package observability wires OpenTelemetry tracing and metrics into axin.
//
// Telemetry is a component.Component that installs the tracer and meter
// providers when enabled and always installs the W3C trace-context
// propagator, so outgoing requests carry the caller's span:
//
//	tel := observability.NewTelemetry(cfg)
//	registry.Register(tel)
//
// Operations wrap a span and optional metrics around a unit of work:
//
//	ctx, op := observability.StartOperation(ctx, "api.chat_sync", metrics)
//	defer op.End(ctx, err)
package observability
