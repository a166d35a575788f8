package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

// fixedPool is a fixed set of workers draining one unbounded FIFO queue.
type fixedPool struct {
	pool
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	running bool
	closing bool
	t       *tomb.Tomb
}

func newFixedPool(o options) *fixedPool {
	if o.workers <= 0 {
		o.workers = 1
	}
	p := &fixedPool{pool: newPool(o), workers: o.workers}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the workers. Starting a running pool is a no-op.
func (p *fixedPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	if p.t != nil && !isDead(p.t) {
		return errors.Internal(fmt.Errorf("scheduler %s is still stopping", p.name))
	}
	p.running = true
	p.closing = false
	p.t = newTomb()
	for i := 1; i <= p.workers; i++ {
		p.t.Go(p.work(int64(i)))
	}
	p.log.Info("scheduler started", logger.Fields(logger.FieldWorkers, p.workers))
	return nil
}

// Stop refuses new units, lets the workers drain the queue, and waits for
// them to exit until ctx is done.
func (p *fixedPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	p.closing = true
	p.cond.Broadcast()
	t := p.t
	p.mu.Unlock()

	t.Kill(nil)
	return p.await(ctx, t)
}

// Execute appends task to the queue. It never blocks on other work.
func (p *fixedPool) Execute(task func()) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return p.reject()
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	p.mu.Unlock()
	p.accepted()
	return nil
}

// Health reports whether the pool accepts work.
func (p *fixedPool) Health(ctx context.Context) component.Health {
	h := component.Health{
		Name: p.name,
		Details: map[string]string{
			"workers": strconv.Itoa(p.workers),
			"queued":  strconv.Itoa(p.Queued()),
		},
	}
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if running {
		h.Status = component.StatusHealthy
	} else {
		h.Status = component.StatusUnhealthy
		h.Message = "not running"
	}
	return h
}

// Describe reports the pool topology.
func (p *fixedPool) Describe() component.Description {
	return component.Description{
		Name:    p.name,
		Type:    "scheduler",
		Details: fmt.Sprintf("workers=%d queue=fifo", p.workers),
	}
}

// Workers returns the configured worker count.
func (p *fixedPool) Workers() int { return p.workers }

// Queued returns the number of units waiting for a worker.
func (p *fixedPool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *fixedPool) work(id int64) func() error {
	return func() error {
		defer p.enter(id)()
		for {
			task, ok := p.next()
			if !ok {
				return nil
			}
			p.run(task)
		}
	}
}

// next blocks until a unit is queued, or returns false once the pool is
// closing and the queue is empty.
func (p *fixedPool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closing {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return task, true
}

// Computation is a bounded-parallel pool for CPU-bound work.
type Computation struct {
	*fixedPool
}

// NewComputation creates a Computation pool with runtime.NumCPU workers
// unless WithWorkers says otherwise.
func NewComputation(opts ...Option) *Computation {
	o := buildOptions(string(KindComputation), opts)
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	return &Computation{fixedPool: newFixedPool(o)}
}

// Single runs every unit on one worker in submission order.
type Single struct {
	*fixedPool
}

// NewSingle creates a Single pool. WithWorkers is ignored.
func NewSingle(opts ...Option) *Single {
	o := buildOptions(string(KindSingle), opts)
	o.workers = 1
	return &Single{fixedPool: newFixedPool(o)}
}
