// Package observability wires OpenTelemetry tracing and metrics for genui.
//
// Initialize the provider at startup; when telemetry is disabled the global
// no-op providers are left in place and every recorder stays cheap:
//
//	p, err := observability.New(ctx, cfg)
//	defer p.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(p.Meter())
//
// A nil *Metrics is valid and records nothing, so library packages accept
// one optionally.
package observability
