package rx

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/rxkit/logger"
)

// Token controls delivery for one asynchronous subscription.
type Token struct {
	id       string
	disposed atomic.Bool
	done     chan struct{}
}

func newToken() *Token {
	return &Token{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// Dispose stops delivery of further events to the subscriber. It does not
// interrupt the emission. Calling it more than once has no further effect.
func (t *Token) Dispose() {
	if t.disposed.CompareAndSwap(false, true) {
		logger.Get("rx").Debug("subscription disposed", logger.Fields(logger.FieldSubscription, t.id))
	}
}

// IsDisposed reports whether Dispose was called.
func (t *Token) IsDisposed() bool {
	return t.disposed.Load()
}

// ID returns the subscription id used in logs.
func (t *Token) ID() string {
	return t.id
}

// Done is closed when the emission goroutine returns, whether or not the
// token was disposed.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
