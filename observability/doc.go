// Package observability provides OpenTelemetry tracing and metrics for rxkit.
//
// Scheduler pools record their activity through SchedulerMetrics. Instruments
// are created on whatever meter the caller passes in, so tests can attach an
// SDK ManualReader while production wiring uses the OTLP exporter set up by
// InitMeter.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("rxdemo"))
//	defer mp.Shutdown(ctx)
//
//	m, err := observability.NewSchedulerMetrics(observability.Meter("rxkit/scheduler"))
//	pool := scheduler.NewComputation(scheduler.WithMetrics(m))
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("rxdemo"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.run")
//	defer span.End()
package observability
