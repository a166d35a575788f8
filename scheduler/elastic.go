package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

// Elastic is an unbounded pool for blocking I/O work. Execute hands the
// unit to an idle worker when one is waiting and otherwise starts a new
// worker for it. A worker that sees no work for the idle timeout exits.
type Elastic struct {
	pool
	idleTimeout time.Duration

	mu      sync.Mutex
	running bool
	t       *tomb.Tomb
	handoff chan func()

	seq  atomic.Int64
	live atomic.Int32
}

// NewElastic creates an Elastic pool with DefaultIdleTimeout unless
// WithIdleTimeout says otherwise.
func NewElastic(opts ...Option) *Elastic {
	o := buildOptions(string(KindIO), opts)
	if o.idleTimeout <= 0 {
		o.idleTimeout = DefaultIdleTimeout
	}
	return &Elastic{
		pool:        newPool(o),
		idleTimeout: o.idleTimeout,
		handoff:     make(chan func()),
	}
}

// Start makes the pool accept work. Workers are created lazily.
func (e *Elastic) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if e.t != nil && !isDead(e.t) {
		return errors.Internal(fmt.Errorf("scheduler %s is still stopping", e.name))
	}
	e.running = true
	e.t = newTomb()
	e.log.Info("scheduler started", logger.Fields("idle_timeout", e.idleTimeout.String()))
	return nil
}

// Stop refuses new units and waits for busy workers to finish their
// current unit until ctx is done. Idle workers exit immediately.
func (e *Elastic) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	t := e.t
	e.mu.Unlock()

	t.Kill(nil)
	return e.await(ctx, t)
}

// Execute runs task on an idle worker, or on a new one if none is idle.
func (e *Elastic) Execute(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return e.reject()
	}
	select {
	case e.handoff <- task:
	default:
		id := e.seq.Add(1)
		e.t.Go(e.work(id, task, e.t))
	}
	e.accepted()
	return nil
}

// Health reports whether the pool accepts work.
func (e *Elastic) Health(ctx context.Context) component.Health {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	h := component.Health{
		Name: e.name,
		Details: map[string]string{
			"workers":      strconv.Itoa(e.Workers()),
			"idle_timeout": e.idleTimeout.String(),
		},
	}
	if running {
		h.Status = component.StatusHealthy
	} else {
		h.Status = component.StatusUnhealthy
		h.Message = "not running"
	}
	return h
}

// Describe reports the pool topology.
func (e *Elastic) Describe() component.Description {
	return component.Description{
		Name:    e.name,
		Type:    "scheduler",
		Details: fmt.Sprintf("workers=elastic idle_timeout=%s", e.idleTimeout),
	}
}

// Workers returns the number of live worker goroutines.
func (e *Elastic) Workers() int { return int(e.live.Load()) }

func (e *Elastic) work(id int64, first func(), t *tomb.Tomb) func() error {
	return func() error {
		e.live.Add(1)
		defer e.live.Add(-1)
		defer e.enter(id)()
		e.log.Debug("worker spawned", logger.Fields(logger.FieldWorker, id))

		e.run(first)

		idle := time.NewTimer(e.idleTimeout)
		defer idle.Stop()
		for {
			select {
			case task := <-e.handoff:
				e.run(task)
				idle.Reset(e.idleTimeout)
			case <-idle.C:
				e.log.Debug("idle worker reclaimed", logger.Fields(logger.FieldWorker, id))
				return nil
			case <-t.Dying():
				return nil
			}
		}
	}
}
