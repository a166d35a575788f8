package rx

// Map transforms each value using fn. When fn fails for an item, the error is
// delivered downstream and nothing is emitted for that item; the upstream is
// not cancelled.
func Map[T, R any](src *Source[T], fn func(T) (R, error)) *Source[R] {
	return &Source[R]{
		subscribe: func(down Sink[R]) {
			src.Subscribe(&mapSink[T, R]{down: down, fn: fn})
		},
	}
}

// Filter keeps only values that satisfy pred. A failing pred is handled like
// a failing Map function.
func Filter[T any](src *Source[T], pred func(T) (bool, error)) *Source[T] {
	return &Source[T]{
		subscribe: func(down Sink[T]) {
			src.Subscribe(&filterSink[T]{down: down, pred: pred})
		},
	}
}

// Filter is the method form of Filter.
func (s *Source[T]) Filter(pred func(T) (bool, error)) *Source[T] {
	return Filter(s, pred)
}

type mapSink[T, R any] struct {
	down Sink[R]
	fn   func(T) (R, error)
}

func (m *mapSink[T, R]) OnNext(item T) {
	var out R
	err := protect(func() error {
		var err error
		out, err = m.fn(item)
		return err
	})
	if err != nil {
		m.down.OnError(err)
		return
	}
	m.down.OnNext(out)
}

func (m *mapSink[T, R]) OnError(err error) { m.down.OnError(err) }
func (m *mapSink[T, R]) OnComplete()       { m.down.OnComplete() }

type filterSink[T any] struct {
	down Sink[T]
	pred func(T) (bool, error)
}

func (f *filterSink[T]) OnNext(item T) {
	var keep bool
	err := protect(func() error {
		var err error
		keep, err = f.pred(item)
		return err
	})
	if err != nil {
		f.down.OnError(err)
		return
	}
	if keep {
		f.down.OnNext(item)
	}
}

func (f *filterSink[T]) OnError(err error) { f.down.OnError(err) }
func (f *filterSink[T]) OnComplete()       { f.down.OnComplete() }
