// Package rx provides composable, push-based reactive sources.
//
// A Source is an immutable description of an emission. Nothing happens
// until it is subscribed; every subscription runs the emission afresh and
// builds its own chain of sinks, so a Source can be subscribed any number
// of times.
//
// # Operators
//
// Synchronous relays:
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//
// Concurrent:
//
//   - FlatMap: expand each value into a sub-source and merge all of them;
//     completes once the outer source and every sub-source completed
//   - RunOn: run the whole subscription as one unit on a Scheduler
//   - DeliverOn: deliver every event as its own unit on a Scheduler
//
// # Sink contract
//
// Every subscription delivers at most one terminal event (OnError or
// OnComplete) and no OnNext after it. The guard is applied by Subscribe, so
// emission logic that signals a terminal itself is tolerated.
//
// Faults are returned errors or panics from user code (emission logic,
// operator functions, mappers). Returned errors reach OnError as the same
// instance; panics arrive as an *errors.AppError with code PANIC.
//
// # Usage
//
//	src := rx.Just(1, 2, 3, 4, 5).RunOn(io)
//	tens := rx.Map(src, func(n int) (int, error) { return n * 10, nil })
//	out := tens.Filter(func(n int) (bool, error) { return n%20 == 0, nil }).DeliverOn(single)
//
//	token := out.SubscribeWithToken(rx.SinkFuncs[int]{
//	    Next: func(n int) { fmt.Println(n) },
//	})
//	defer token.Dispose()
//
// Disposing a token only stops delivery. The emission goroutine and any
// work already handed to a scheduler keep running to completion.
package rx
