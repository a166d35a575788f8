// Package scheduler provides the worker pools that reactive sources run on.
//
// Three topologies share one contract, Execute(task) error:
//
//   - Computation: a fixed number of workers (runtime.NumCPU by default)
//     draining an unbounded FIFO queue.
//   - Elastic: a worker is created whenever no idle worker can take a unit;
//     workers idle for longer than the idle timeout exit.
//   - Single: one worker running units strictly in submission order.
//
// Every pool is a component.Component. Execute before Start or after Stop
// returns a SCHEDULER_STOPPED error and the unit never runs. Stop refuses
// new units, lets accepted units finish, and waits for the workers until
// the context expires. Worker goroutines are tracked with a tomb so Stop
// can wait for all of them at once.
//
//	pool, err := scheduler.New(scheduler.Config{Kind: scheduler.KindIO})
//	err = scheduler.Use(ctx, pool, func(p scheduler.Pool) error {
//	    return p.Execute(func() { ... })
//	})
//
// A unit that panics is recovered and logged; the worker keeps running.
package scheduler
