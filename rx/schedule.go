package rx

import (
	"sync/atomic"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

// Scheduler accepts units of work for asynchronous execution.
// A non-nil error means the unit was rejected and will never run.
type Scheduler interface {
	Execute(task func()) error
}

// RunOn subscribes upstream inside one unit submitted to sch, so the
// emission and every downstream call it makes run there. Subscribe returns
// once the unit is submitted. A rejected unit is reported as OnError on the
// subscribing goroutine.
func (s *Source[T]) RunOn(sch Scheduler) *Source[T] {
	return &Source[T]{
		subscribe: func(down Sink[T]) {
			if sch == nil {
				down.OnError(errors.InvalidInput("scheduler", "must not be nil"))
				return
			}
			err := sch.Execute(func() { s.Subscribe(down) })
			if err != nil {
				down.OnError(err)
			}
		},
	}
}

// DeliverOn subscribes upstream on the calling goroutine and submits each
// event to sch as its own unit. Events keep their order only when sch runs
// units in submission order, as Single does. If sch rejects a unit, the
// rejection is delivered once as OnError and later events are discarded.
func (s *Source[T]) DeliverOn(sch Scheduler) *Source[T] {
	return &Source[T]{
		subscribe: func(down Sink[T]) {
			if sch == nil {
				down.OnError(errors.InvalidInput("scheduler", "must not be nil"))
				return
			}
			s.Subscribe(&deliverSink[T]{down: down, sch: sch})
		},
	}
}

type deliverSink[T any] struct {
	down     Sink[T]
	sch      Scheduler
	rejected atomic.Bool
}

func (d *deliverSink[T]) OnNext(item T) {
	d.submit(func() { d.down.OnNext(item) })
}

func (d *deliverSink[T]) OnError(err error) {
	d.submit(func() { d.down.OnError(err) })
}

func (d *deliverSink[T]) OnComplete() {
	d.submit(d.down.OnComplete)
}

func (d *deliverSink[T]) submit(task func()) {
	if d.rejected.Load() {
		return
	}
	err := d.sch.Execute(task)
	if err == nil {
		return
	}
	if d.rejected.CompareAndSwap(false, true) {
		logger.Get("rx").Warn("delivery rejected", logger.Fields(
			logger.FieldOperator, "deliverOn",
			logger.FieldError, err.Error(),
		))
		d.down.OnError(err)
	}
}
