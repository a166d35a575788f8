// Package testutil provides testing infrastructure for rxkit.
//
// Scheduler pools are components, so tests start them the same way
// production code does and stop them when the test ends:
//
//	func TestDeliverOn(t *testing.T) {
//	    single := scheduler.NewSingle()
//	    testutil.T(t).Setup(single)
//	    ...
//	}
//
// Recorder is a sink that records every event it receives and counts
// contract violations (a second terminal call, or OnNext after one), so
// tests can assert the sink contract directly:
//
//	rec := testutil.NewRecorder[int]()
//	src.Subscribe(rec)
//	if !rec.Wait(time.Second) { t.Fatal("no terminal event") }
//	rec.Items() // [1 2 3]
package testutil
