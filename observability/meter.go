package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/rxkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Outcome values recorded on completed units.
const (
	OutcomeOK       = "ok"
	OutcomePanicked = "panicked"
)

// SchedulerMetrics holds the instruments scheduler pools report to.
// A nil *SchedulerMetrics is valid and records nothing.
type SchedulerMetrics struct {
	submitted     metric.Int64Counter
	rejected      metric.Int64Counter
	completed     metric.Int64Counter
	unitDuration  metric.Float64Histogram
	activeWorkers metric.Int64UpDownCounter
}

// NewSchedulerMetrics creates scheduler instruments on the given meter.
func NewSchedulerMetrics(meter metric.Meter) (*SchedulerMetrics, error) {
	submitted, err := meter.Int64Counter("rx.scheduler.units.submitted",
		metric.WithDescription("Units of work accepted by a scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.scheduler.units.submitted counter: %w", err)
	}

	rejected, err := meter.Int64Counter("rx.scheduler.units.rejected",
		metric.WithDescription("Units of work rejected because the scheduler was not running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.scheduler.units.rejected counter: %w", err)
	}

	completed, err := meter.Int64Counter("rx.scheduler.units.completed",
		metric.WithDescription("Units of work that finished running, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.scheduler.units.completed counter: %w", err)
	}

	unitDuration, err := meter.Float64Histogram("rx.scheduler.unit.duration",
		metric.WithDescription("Time spent running a unit of work"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.scheduler.unit.duration histogram: %w", err)
	}

	activeWorkers, err := meter.Int64UpDownCounter("rx.scheduler.workers.active",
		metric.WithDescription("Worker goroutines currently alive"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.scheduler.workers.active gauge: %w", err)
	}

	return &SchedulerMetrics{
		submitted:     submitted,
		rejected:      rejected,
		completed:     completed,
		unitDuration:  unitDuration,
		activeWorkers: activeWorkers,
	}, nil
}

func poolAttr(pool string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrScheduler, pool))
}

// RecordSubmitted counts a unit accepted by pool.
func (m *SchedulerMetrics) RecordSubmitted(ctx context.Context, pool string) {
	if m == nil {
		return
	}
	m.submitted.Add(ctx, 1, poolAttr(pool))
}

// RecordRejected counts a unit refused by pool.
func (m *SchedulerMetrics) RecordRejected(ctx context.Context, pool string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, poolAttr(pool))
}

// RecordCompleted records a unit that finished running on pool.
func (m *SchedulerMetrics) RecordCompleted(ctx context.Context, pool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrScheduler, pool),
		attribute.String(AttrOutcome, outcome),
	))
	m.unitDuration.Record(ctx, d.Seconds(), poolAttr(pool))
}

// WorkerStarted increments the live worker count of pool.
func (m *SchedulerMetrics) WorkerStarted(ctx context.Context, pool string) {
	if m == nil {
		return
	}
	m.activeWorkers.Add(ctx, 1, poolAttr(pool))
}

// WorkerStopped decrements the live worker count of pool.
func (m *SchedulerMetrics) WorkerStopped(ctx context.Context, pool string) {
	if m == nil {
		return
	}
	m.activeWorkers.Add(ctx, -1, poolAttr(pool))
}
