package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/testutil"
)

func quiet() Option { return WithLogger(logger.Nop()) }

func waitGroup(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Config
	}{
		{
			name: "computation sized to cpus",
			cfg:  Config{Kind: KindComputation},
			want: Config{Kind: KindComputation, Name: "computation", Workers: runtime.NumCPU()},
		},
		{
			name: "io gets idle timeout",
			cfg:  Config{Kind: KindIO, Name: "blocking"},
			want: Config{Kind: KindIO, Name: "blocking", IdleTimeout: DefaultIdleTimeout},
		},
		{
			name: "single keeps explicit values",
			cfg:  Config{Kind: KindSingle, Workers: 3},
			want: Config{Kind: KindSingle, Name: "single", Workers: 3},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			if tc.cfg != tc.want {
				t.Errorf("expected %+v, got %+v", tc.want, tc.cfg)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid computation", Config{Kind: KindComputation, Workers: 2}, false},
		{"valid io", Config{Kind: KindIO, IdleTimeout: time.Second}, false},
		{"missing kind", Config{}, true},
		{"unknown kind", Config{Kind: "gpu"}, true},
		{"negative workers", Config{Kind: KindComputation, Workers: -1}, true},
		{"negative idle timeout", Config{Kind: KindIO, IdleTimeout: -time.Second}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.HasCode(err, errors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestNewSelectsKind(t *testing.T) {
	c, err := New(Config{Kind: KindComputation, Workers: 2}, quiet())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	comp, ok := c.(*Computation)
	if !ok {
		t.Fatalf("expected *Computation, got %T", c)
	}
	if comp.Workers() != 2 {
		t.Errorf("expected 2 workers, got %d", comp.Workers())
	}

	e, err := New(Config{Kind: KindIO, IdleTimeout: time.Second}, quiet())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*Elastic); !ok {
		t.Fatalf("expected *Elastic, got %T", e)
	}

	s, err := New(Config{Kind: KindSingle, Name: "ui"}, quiet())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := s.(*Single); !ok {
		t.Fatalf("expected *Single, got %T", s)
	}
	if s.Name() != "ui" {
		t.Errorf("expected name 'ui', got %q", s.Name())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(Config{Kind: "gpu"})
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestExecuteRejectedWhenNotRunning(t *testing.T) {
	pools := []Pool{
		NewComputation(WithWorkers(2), quiet()),
		NewElastic(quiet()),
		NewSingle(quiet()),
	}
	for _, p := range pools {
		t.Run(p.Name(), func(t *testing.T) {
			var ran atomic.Bool
			err := p.Execute(func() { ran.Store(true) })
			if !errors.HasCode(err, errors.ErrCodeSchedulerStopped) {
				t.Errorf("expected SCHEDULER_STOPPED before Start, got %v", err)
			}

			ctx := context.Background()
			if err := p.Start(ctx); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			if err := p.Stop(ctx); err != nil {
				t.Fatalf("Stop failed: %v", err)
			}
			err = p.Execute(func() { ran.Store(true) })
			if !errors.HasCode(err, errors.ErrCodeSchedulerStopped) {
				t.Errorf("expected SCHEDULER_STOPPED after Stop, got %v", err)
			}
			if ran.Load() {
				t.Error("rejected unit must never run")
			}
		})
	}
}

func TestSingleRunsInSubmissionOrder(t *testing.T) {
	s := NewSingle(quiet())
	testutil.T(t).Setup(s)

	const n = 200
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		if err := s.Execute(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if !waitGroup(&wg, 2*time.Second) {
		t.Fatal("units did not finish")
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("expected unit %d at position %d, got %d", i, i, v)
		}
	}
}

func TestComputationRunsInParallel(t *testing.T) {
	const workers = 4
	c := NewComputation(WithWorkers(workers), quiet())
	testutil.T(t).Setup(c)

	var arrived sync.WaitGroup
	arrived.Add(workers)
	release := make(chan struct{})
	for i := 0; i < workers; i++ {
		c.Execute(func() {
			arrived.Done()
			<-release
		})
	}
	ok := waitGroup(&arrived, 2*time.Second)
	close(release)
	if !ok {
		t.Fatalf("expected %d units running at once", workers)
	}
}

func TestStopDrainsAcceptedUnits(t *testing.T) {
	s := NewSingle(quiet())
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var count atomic.Int32
	for i := 0; i < 50; i++ {
		s.Execute(func() {
			time.Sleep(100 * time.Microsecond)
			count.Add(1)
		})
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := count.Load(); got != 50 {
		t.Errorf("expected all 50 accepted units to run, got %d", got)
	}
}

func TestStopTimesOut(t *testing.T) {
	s := NewSingle(quiet())
	testutil.T(t).Setup(s)

	release := make(chan struct{})
	started := make(chan struct{})
	s.Execute(func() {
		close(started)
		<-release
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Stop(ctx)
	if !errors.HasCode(err, errors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT while a unit is blocked, got %v", err)
	}

	if err := s.Start(context.Background()); err == nil {
		t.Error("expected Start to fail while the previous workers are still running")
	}
	close(release)

	testutil.Eventually(t, 2*time.Second, func() bool {
		return s.Start(context.Background()) == nil
	}, "pool restarts once drained")
}

func TestRestart(t *testing.T) {
	c := NewComputation(WithWorkers(2), quiet())
	ctx := context.Background()
	for round := 0; round < 2; round++ {
		if err := c.Start(ctx); err != nil {
			t.Fatalf("round %d: Start failed: %v", round, err)
		}
		done := make(chan struct{})
		if err := c.Execute(func() { close(done) }); err != nil {
			t.Fatalf("round %d: Execute failed: %v", round, err)
		}
		<-done
		if err := c.Stop(ctx); err != nil {
			t.Fatalf("round %d: Stop failed: %v", round, err)
		}
	}
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	s := NewSingle(quiet())
	testutil.T(t).Setup(s)

	done := make(chan struct{})
	s.Execute(func() { panic("boom") })
	s.Execute(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking unit")
	}
}

func TestElasticSpawnsWorkerPerBusyUnit(t *testing.T) {
	e := NewElastic(WithIdleTimeout(20*time.Millisecond), quiet())
	testutil.T(t).Setup(e)

	const n = 3
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	for i := 0; i < n; i++ {
		e.Execute(func() {
			arrived.Done()
			<-release
		})
	}
	ok := waitGroup(&arrived, 2*time.Second)
	if got := e.Workers(); got != n {
		t.Errorf("expected %d live workers, got %d", n, got)
	}
	close(release)
	if !ok {
		t.Fatal("expected every blocking unit to get its own worker")
	}

	testutil.Eventually(t, 2*time.Second, func() bool {
		return e.Workers() == 0
	}, "idle workers are reclaimed")
}

func TestElasticStopWaitsForBusyWorkers(t *testing.T) {
	e := NewElastic(quiet())
	ctx := context.Background()
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var finished atomic.Bool
	started := make(chan struct{})
	e.Execute(func() {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	<-started

	if err := e.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !finished.Load() {
		t.Error("expected Stop to wait for the running unit")
	}
	if e.Workers() != 0 {
		t.Errorf("expected no live workers after Stop, got %d", e.Workers())
	}
}

func TestCurrentWorker(t *testing.T) {
	if _, ok := CurrentWorker(); ok {
		t.Fatal("test goroutine must not be a pool worker")
	}

	s := NewSingle(WithName("render"), quiet())
	testutil.T(t).Setup(s)

	got := make(chan Worker, 1)
	s.Execute(func() {
		w, _ := CurrentWorker()
		got <- w
	})
	w := <-got
	if w.Pool != "render" || w.Name != "render-1" {
		t.Errorf("expected render-1 of render, got %+v", w)
	}
}

func TestCurrentWorkerElastic(t *testing.T) {
	e := NewElastic(quiet())
	testutil.T(t).Setup(e)

	got := make(chan Worker, 1)
	e.Execute(func() {
		w, _ := CurrentWorker()
		got <- w
	})
	if w := <-got; w.Pool != "io" {
		t.Errorf("expected an io worker, got %+v", w)
	}
}

func TestCurrentWorkerIsPerGoroutine(t *testing.T) {
	c := NewComputation(WithName("cpu"), WithWorkers(2), quiet())
	testutil.T(t).Setup(c)

	var ready sync.WaitGroup
	ready.Add(2)
	release := make(chan struct{})
	names := make(chan string, 2)
	spawned := make(chan bool, 1)
	for i := 0; i < 2; i++ {
		c.Execute(func() {
			ready.Done()
			<-release
			w, _ := CurrentWorker()
			names <- w.Name
		})
	}
	if !waitGroup(&ready, 2*time.Second) {
		t.Fatal("expected both workers to be busy")
	}
	c.Execute(func() {
		go func() {
			_, ok := CurrentWorker()
			spawned <- ok
		}()
	})
	close(release)

	a, b := <-names, <-names
	if a == b || a == "" || b == "" {
		t.Errorf("expected two distinct workers, got %q and %q", a, b)
	}
	if <-spawned {
		t.Error("goroutine started by a unit must not be reported as a worker")
	}
}

func TestHealthAndDescribe(t *testing.T) {
	c := NewComputation(WithWorkers(3), quiet())
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}
	testutil.T(t).Setup(c)
	h := c.Health(context.Background())
	if h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after Start, got %s", h.Status)
	}
	if h.Details["workers"] != "3" {
		t.Errorf("expected workers=3, got %q", h.Details["workers"])
	}

	var d component.Describable = c
	if got := d.Describe().Details; got != "workers=3 queue=fifo" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestHealthReportsQueuedUnits(t *testing.T) {
	s := NewSingle(quiet())
	testutil.T(t).Setup(s)

	started := make(chan struct{})
	release := make(chan struct{})
	s.Execute(func() {
		close(started)
		<-release
	})
	<-started
	s.Execute(func() {})
	s.Execute(func() {})
	defer close(release)

	if n := s.Queued(); n != 2 {
		t.Errorf("expected 2 queued units, got %d", n)
	}
	if got := s.Health(context.Background()).Details["queued"]; got != "2" {
		t.Errorf("expected queued=2 in health details, got %q", got)
	}
}

func TestUse(t *testing.T) {
	s := NewSingle(quiet())
	var ran atomic.Bool
	err := Use(context.Background(), s, func(p Pool) error {
		done := make(chan struct{})
		if err := p.Execute(func() {
			ran.Store(true)
			close(done)
		}); err != nil {
			return err
		}
		<-done
		return nil
	})
	if err != nil {
		t.Fatalf("Use failed: %v", err)
	}
	if !ran.Load() {
		t.Error("expected unit to run inside Use")
	}
	if err := s.Execute(func() {}); !errors.HasCode(err, errors.ErrCodeSchedulerStopped) {
		t.Errorf("expected pool stopped after Use, got %v", err)
	}
}

func TestUseReturnsCallbackError(t *testing.T) {
	want := errors.InvalidInput("x", "bad")
	err := Use(context.Background(), NewSingle(quiet()), func(Pool) error { return want })
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected callback error to be returned, got %v", err)
	}
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name, pool string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: unexpected data type %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(observability.AttrScheduler)); ok && v.AsString() == pool {
					total += dp.Value
				}
			}
			return total
		}
	}
	return 0
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	m, err := observability.NewSchedulerMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewSchedulerMetrics failed: %v", err)
	}

	s := NewSingle(WithMetrics(m), quiet())
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		s.Execute(func() {})
	}
	s.Execute(func() { panic("boom") })
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	s.Execute(func() {})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := counterValue(t, rm, "rx.scheduler.units.submitted", "single"); got != 4 {
		t.Errorf("expected 4 submitted, got %d", got)
	}
	if got := counterValue(t, rm, "rx.scheduler.units.completed", "single"); got != 4 {
		t.Errorf("expected 4 completed, got %d", got)
	}
	if got := counterValue(t, rm, "rx.scheduler.units.rejected", "single"); got != 1 {
		t.Errorf("expected 1 rejected, got %d", got)
	}
	if got := counterValue(t, rm, "rx.scheduler.workers.active", "single"); got != 0 {
		t.Errorf("expected no active workers after Stop, got %d", got)
	}
}
