// Command rxdemo runs a small pipeline across the io and single schedulers
// and logs which worker observes each stage.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/kbukum/rxkit/bootstrap"
	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/rx"
	"github.com/kbukum/rxkit/scheduler"
)

const serviceName = "rxdemo"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(serviceName, &cfg, config.WithEnvPrefix("RXDEMO")); err != nil {
		return err
	}

	shutdown := func(context.Context) error { return nil }
	if cfg.Telemetry.Enabled {
		fn, err := initTelemetry(ctx, &cfg)
		if err != nil {
			return err
		}
		shutdown = fn
	}
	metrics, err := observability.NewSchedulerMetrics(observability.Meter("github.com/kbukum/rxkit/scheduler"))
	if err != nil {
		return err
	}
	return execute(ctx, &cfg, metrics, shutdown)
}

// execute runs the demo app and calls shutdown after every pool has stopped.
func execute(ctx context.Context, cfg *Config, metrics *observability.SchedulerMetrics, shutdown func(context.Context) error) (err error) {
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := shutdown(sctx); serr != nil && err == nil {
			err = serr
		}
	}()

	app, err := bootstrap.NewApp(cfg, bootstrap.WithSchedulerMetrics(metrics))
	if err != nil {
		return err
	}

	io, err := app.AddScheduler(cfg.Schedulers.IO)
	if err != nil {
		return err
	}
	single, err := app.AddScheduler(cfg.Schedulers.Single)
	if err != nil {
		return err
	}
	if _, err := app.AddScheduler(cfg.Schedulers.Computation); err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		return runPipeline(ctx, app.Logger, io, single)
	})
}

// runPipeline emits 1..5 on io, keeps the multiples of 20 after scaling by
// ten, and observes the results on single.
func runPipeline(ctx context.Context, log *logger.Logger, io, single rx.Scheduler) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, "demo")

	numbers := rx.Create(func(sink rx.Sink[int]) error {
		for i := 1; i <= 5; i++ {
			log.Info("emit", stage(i))
			sink.OnNext(i)
		}
		sink.OnComplete()
		return nil
	}).RunOn(io)

	scaled := rx.Map(numbers, func(v int) (int, error) { return v * 10, nil })
	kept := scaled.Filter(func(v int) (bool, error) { return v%20 == 0, nil }).DeliverOn(single)
	observed := rx.Map(kept, func(v int) (int, error) {
		log.Info("received", stage(v))
		return v, nil
	})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	values, err := rx.Collect(ctx, observed)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	log.Info("pipeline completed", logger.Fields("values", values))
	return nil
}

func stage(value int) map[string]interface{} {
	fields := logger.Fields("value", value)
	if w, ok := scheduler.CurrentWorker(); ok {
		fields[logger.FieldWorker] = w.Name
	}
	return fields
}

// initTelemetry installs the OTLP meter and tracer providers and returns
// their shutdown.
func initTelemetry(ctx context.Context, cfg *Config) (func(context.Context) error, error) {
	t := cfg.Telemetry

	mc := observability.DefaultMeterConfig(cfg.Name)
	mc.ServiceVersion = cfg.Version
	mc.Environment = cfg.Environment
	mc.Endpoint = t.Endpoint
	mc.Insecure = t.Insecure
	if t.Interval > 0 {
		mc.Interval = t.Interval
	}
	mp, err := observability.InitMeter(ctx, mc)
	if err != nil {
		return nil, err
	}

	tc := observability.DefaultTracerConfig(cfg.Name)
	tc.ServiceVersion = cfg.Version
	tc.Environment = cfg.Environment
	tc.Endpoint = t.Endpoint
	tc.Insecure = t.Insecure
	tc.SampleRate = t.SampleRate
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return stderrors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
