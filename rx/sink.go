package rx

import "sync/atomic"

// Sink receives the events of one subscription.
type Sink[T any] interface {
	OnNext(item T)
	OnError(err error)
	OnComplete()
}

// SinkFuncs adapts plain functions to a Sink. Nil fields ignore their event.
type SinkFuncs[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

func (f SinkFuncs[T]) OnNext(item T) {
	if f.Next != nil {
		f.Next(item)
	}
}

func (f SinkFuncs[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

func (f SinkFuncs[T]) OnComplete() {
	if f.Complete != nil {
		f.Complete()
	}
}

// guardedSink lets through at most one terminal event and no OnNext after it.
// It does not serialize calls; concurrent producers must do that themselves.
type guardedSink[T any] struct {
	down Sink[T]
	done atomic.Bool
}

func guard[T any](sink Sink[T]) *guardedSink[T] {
	return &guardedSink[T]{down: sink}
}

func (g *guardedSink[T]) OnNext(item T) {
	if g.done.Load() {
		return
	}
	g.down.OnNext(item)
}

func (g *guardedSink[T]) OnError(err error) {
	if g.done.CompareAndSwap(false, true) {
		g.down.OnError(err)
	}
}

func (g *guardedSink[T]) OnComplete() {
	if g.done.CompareAndSwap(false, true) {
		g.down.OnComplete()
	}
}

// gatedSink drops every event once its token is disposed.
type gatedSink[T any] struct {
	down  Sink[T]
	token *Token
}

func (s *gatedSink[T]) OnNext(item T) {
	if !s.token.IsDisposed() {
		s.down.OnNext(item)
	}
}

func (s *gatedSink[T]) OnError(err error) {
	if !s.token.IsDisposed() {
		s.down.OnError(err)
	}
}

func (s *gatedSink[T]) OnComplete() {
	if !s.token.IsDisposed() {
		s.down.OnComplete()
	}
}
