package rx

import (
	"fmt"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
)

// Source is an immutable, re-subscribable emission definition.
type Source[T any] struct {
	// subscribe drives one subscription. It receives an already guarded sink
	// and is responsible for delivering the terminal event.
	subscribe func(Sink[T])
}

// Create builds a Source from emission logic. When emit returns, the
// subscriber receives OnComplete, or OnError if emit returned an error or
// panicked.
func Create[T any](emit func(Sink[T]) error) *Source[T] {
	if emit == nil {
		return Fail[T](errors.InvalidSource("create"))
	}
	return &Source[T]{
		subscribe: func(sink Sink[T]) {
			if err := protect(func() error { return emit(sink) }); err != nil {
				sink.OnError(err)
				return
			}
			sink.OnComplete()
		},
	}
}

// Just emits items in order, then completes.
func Just[T any](items ...T) *Source[T] {
	return FromSlice(items)
}

// FromSlice emits the elements of items in order, then completes.
func FromSlice[T any](items []T) *Source[T] {
	return Create(func(sink Sink[T]) error {
		for _, item := range items {
			sink.OnNext(item)
		}
		return nil
	})
}

// Empty completes without emitting.
func Empty[T any]() *Source[T] {
	return &Source[T]{subscribe: func(sink Sink[T]) { sink.OnComplete() }}
}

// Fail signals err without emitting.
func Fail[T any](err error) *Source[T] {
	return &Source[T]{subscribe: func(sink Sink[T]) { sink.OnError(err) }}
}

// Subscribe runs the emission on the calling goroutine and returns when it
// does. With RunOn upstream it returns as soon as the unit is submitted.
func (s *Source[T]) Subscribe(sink Sink[T]) {
	s.subscribe(guard(sink))
}

// SubscribeWithToken runs the emission on a new goroutine and returns at
// once. Events reach sink only until the token is disposed.
func (s *Source[T]) SubscribeWithToken(sink Sink[T]) *Token {
	token := newToken()
	gated := &gatedSink[T]{down: sink, token: token}
	go func() {
		defer close(token.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Get("rx").Error("subscriber panicked", logger.Fields(
					logger.FieldSubscription, token.id,
					logger.FieldError, fmt.Sprint(r),
				))
			}
		}()
		s.Subscribe(gated)
	}()
	return token
}

// protect calls fn and converts a panic into a PANIC error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(r)
		}
	}()
	return fn()
}
