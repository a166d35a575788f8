package rx

import (
	"sync"
	"sync/atomic"

	"github.com/kbukum/rxkit/errors"
)

// FlatMap derives a sub-source from each value with mapper and merges the
// values of all sub-sources into one sequence. Sub-sources may run
// concurrently; downstream calls are serialized.
//
// The result completes once the upstream and every sub-source have
// completed. The first error from any of them, or from mapper, is delivered
// and suppresses completion for good. A nil sub-source counts as an error.
func FlatMap[T, R any](src *Source[T], mapper func(T) (*Source[R], error)) *Source[R] {
	return &Source[R]{
		subscribe: func(down Sink[R]) {
			m := &merge[T, R]{down: down, mapper: mapper}
			m.pending.Store(1)
			src.Subscribe(m)
		},
	}
}

// merge is the per-subscription state of FlatMap. pending counts the
// upstream plus every sub-source that has not completed yet.
type merge[T, R any] struct {
	down   Sink[R]
	mapper func(T) (*Source[R], error)

	mu        sync.Mutex
	pending   atomic.Int32
	errorSeen atomic.Bool
}

// OnNext receives an upstream value. The slot for its sub-source is taken
// before mapper runs, so a sub-source that completes synchronously can never
// drive pending to zero while the upstream is still active.
func (m *merge[T, R]) OnNext(item T) {
	m.pending.Add(1)
	sub, err := m.derive(item)
	if err != nil {
		m.fail(err)
		m.release()
		return
	}
	sub.Subscribe(&mergeInner[T, R]{merge: m})
}

func (m *merge[T, R]) OnError(err error) { m.fail(err) }
func (m *merge[T, R]) OnComplete()       { m.release() }

func (m *merge[T, R]) derive(item T) (*Source[R], error) {
	var sub *Source[R]
	err := protect(func() error {
		var err error
		sub, err = m.mapper(item)
		return err
	})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.InvalidSource("flatMap")
	}
	return sub, nil
}

func (m *merge[T, R]) emit(item R) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down.OnNext(item)
}

// fail forwards err if no error was forwarded before.
func (m *merge[T, R]) fail(err error) {
	if !m.errorSeen.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down.OnError(err)
}

// release gives back one pending slot and completes on the last one.
func (m *merge[T, R]) release() {
	if m.pending.Add(-1) != 0 || m.errorSeen.Load() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down.OnComplete()
}

type mergeInner[T, R any] struct {
	merge *merge[T, R]
}

func (in *mergeInner[T, R]) OnNext(item R)     { in.merge.emit(item) }
func (in *mergeInner[T, R]) OnError(err error) { in.merge.fail(err) }
func (in *mergeInner[T, R]) OnComplete()       { in.merge.release() }
