package testutil

import (
	"sync"
	"time"
)

// Recorder is a thread-safe sink that records the events it receives.
//
// It does not enforce the sink contract. It counts
// terminal calls and events that arrive after a terminal, so tests can
// assert that the code under test enforces it.
type Recorder[T any] struct {
	mu        sync.Mutex
	items     []T
	err       error
	completed bool
	terminals int
	late      int
	overlaps  int
	inFlight  int
	onNext    func(T)
	done      chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{done: make(chan struct{})}
}

// OnItem registers a hook called (outside the lock) for every OnNext.
func (r *Recorder[T]) OnItem(fn func(T)) *Recorder[T] {
	r.onNext = fn
	return r
}

func (r *Recorder[T]) enter() {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > 1 {
		r.overlaps++
	}
	r.mu.Unlock()
}

func (r *Recorder[T]) leave() {
	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
}

func (r *Recorder[T]) OnNext(item T) {
	r.enter()
	defer r.leave()
	r.mu.Lock()
	if r.terminals > 0 {
		r.late++
	}
	r.items = append(r.items, item)
	r.mu.Unlock()
	if r.onNext != nil {
		r.onNext(item)
	}
}

func (r *Recorder[T]) OnError(err error) {
	r.enter()
	defer r.leave()
	r.terminal(func() { r.err = err })
}

func (r *Recorder[T]) OnComplete() {
	r.enter()
	defer r.leave()
	r.terminal(func() { r.completed = true })
}

func (r *Recorder[T]) terminal(set func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terminals++
	if r.terminals == 1 {
		set()
		close(r.done)
	}
}

// Done is closed on the first terminal event.
func (r *Recorder[T]) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the first terminal event or timeout and reports whether one arrived.
func (r *Recorder[T]) Wait(timeout time.Duration) bool {
	select {
	case <-r.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Items returns a copy of the items received so far.
func (r *Recorder[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Err returns the error of the first terminal event, if it was OnError.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completed reports whether the first terminal event was OnComplete.
func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminals returns how many terminal calls were received in total.
func (r *Recorder[T]) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminals
}

// Late returns how many OnNext calls arrived after a terminal call.
func (r *Recorder[T]) Late() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.late
}

// Overlaps returns how many calls started while another call was still running.
func (r *Recorder[T]) Overlaps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlaps
}
