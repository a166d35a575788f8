package scheduler

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
)

// pool holds what every topology shares: identity, logging, metrics and
// the panic-safe way a unit is run.
type pool struct {
	name    string
	log     *logger.Logger
	metrics *observability.SchedulerMetrics
}

func newPool(o options) pool {
	return pool{name: o.name, log: o.log, metrics: o.metrics}
}

// Name returns the pool name.
func (p *pool) Name() string { return p.name }

func (p *pool) accepted() {
	p.metrics.RecordSubmitted(context.Background(), p.name)
}

func (p *pool) reject() error {
	p.metrics.RecordRejected(context.Background(), p.name)
	p.log.Warn("unit rejected, scheduler not running")
	return errors.SchedulerStopped(p.name)
}

// run executes one unit. A panic is recovered so the worker survives it.
func (p *pool) run(task func()) {
	start := time.Now()
	outcome := observability.OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			outcome = observability.OutcomePanicked
			p.log.Error("unit panicked", logger.Fields(logger.FieldError, fmt.Sprint(r)))
		}
		p.metrics.RecordCompleted(context.Background(), p.name, outcome, time.Since(start))
	}()
	task()
}

// enter registers the calling goroutine as worker id and returns its deregistration.
func (p *pool) enter(id int64) func() {
	w := Worker{Name: fmt.Sprintf("%s-%d", p.name, id), Pool: p.name}
	leave := register(w)
	p.metrics.WorkerStarted(context.Background(), p.name)
	return func() {
		p.metrics.WorkerStopped(context.Background(), p.name)
		leave()
	}
}

// newTomb returns a tomb kept alive by a supervisor goroutine until Kill, so
// workers can be added with t.Go at any time before that.
func newTomb() *tomb.Tomb {
	t := &tomb.Tomb{}
	t.Go(func() error {
		<-t.Dying()
		return nil
	})
	return t
}

func isDead(t *tomb.Tomb) bool {
	select {
	case <-t.Dead():
		return true
	default:
		return false
	}
}

// await waits for every goroutine of t to return, bounded by ctx.
func (p *pool) await(ctx context.Context, t *tomb.Tomb) error {
	select {
	case <-t.Dead():
		p.log.Info("scheduler stopped")
		return t.Err()
	case <-ctx.Done():
		return errors.Timeout("stopping scheduler " + p.name).WithCause(ctx.Err())
	}
}
