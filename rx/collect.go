package rx

import (
	"context"
	"sync"

	"github.com/kbukum/rxkit/errors"
)

// Collect subscribes to src and blocks until it terminates or ctx is done.
// It returns the values received so far together with the terminal error,
// or a TIMEOUT error wrapping ctx.Err() if ctx ended first; in that case
// the subscription is disposed.
func Collect[T any](ctx context.Context, src *Source[T]) ([]T, error) {
	var (
		mu    sync.Mutex
		items []T
	)
	snapshot := func() []T {
		mu.Lock()
		defer mu.Unlock()
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	done := make(chan error, 1)
	token := src.SubscribeWithToken(SinkFuncs[T]{
		Next: func(item T) {
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
		},
		Error:    func(err error) { done <- err },
		Complete: func() { done <- nil },
	})

	select {
	case err := <-done:
		return snapshot(), err
	case <-ctx.Done():
		token.Dispose()
		return snapshot(), errors.Timeout("collect").WithCause(ctx.Err())
	}
}
