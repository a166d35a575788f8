package scheduler

import (
	"sync"

	"github.com/petermattis/goid"
)

// Worker identifies a pool worker goroutine.
type Worker struct {
	// Name is "<pool>-<n>", unique within the pool's lifetime.
	Name string
	// Pool is the name of the owning pool.
	Pool string
}

var workers sync.Map // goroutine id -> Worker

// CurrentWorker reports the pool worker running the calling goroutine.
// It returns false when called outside any pool.
func CurrentWorker() (Worker, bool) {
	v, ok := workers.Load(goid.Get())
	if !ok {
		return Worker{}, false
	}
	return v.(Worker), true
}

func register(w Worker) func() {
	id := goid.Get()
	workers.Store(id, w)
	return func() { workers.Delete(id) }
}
