package reactor

import (
	"context"
	"sync"

	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
)

// Future is a stream guaranteed to emit at most one value before
// terminating. Its replay policy is last(1), so a child attached after
// completion still observes the value: a child attached before
// completion receives the value as it is pushed, and a child attached
// after receives the buffered value and terminal event via the
// dispatcher on the next tick (spec.md §4.4).
type Future[T any] struct {
	stream   *Stream[T]
	complete func(Result[T])
}

func newFutureCore[T any](disp dispatch.Dispatcher, clk clock.Clock) *Future[T] {
	s := newStream[T](KindFuture, disp, clk, ReplayLast(1))
	f := &Future[T]{stream: s}

	var once sync.Once
	f.complete = func(res Result[T]) {
		once.Do(func() {
			disp.Execute(func() {
				if res.IsFailure() {
					s.push(Terminate[T](TermError(res.Err())), NoKey)
					return
				}
				s.push(Next(res.Value()), NoKey)
				s.push(Terminate[T](TermCompleted), NoKey)
			})
		})
	}
	return f
}

// NewFuture constructs a Future backed by a deferred task. task must
// call complete at most once; later calls are silently ignored (spec.md
// §7 "double-completion of a Future task ... ignored").
func NewFuture[T any](disp dispatch.Dispatcher, clk clock.Clock, task func(complete func(Result[T]))) *Future[T] {
	f := newFutureCore[T](disp, clk)
	go task(f.complete)
	return f
}

// CompletedFuture builds a Future that is already resolved (spec.md
// §6's Future.completed(T|error)).
func CompletedFuture[T any](disp dispatch.Dispatcher, clk clock.Clock, res Result[T]) *Future[T] {
	f := newFutureCore[T](disp, clk)
	f.complete(res)
	return f
}

// Stream exposes the underlying node for composition with the operator
// library.
func (f *Future[T]) Stream() *Stream[T] { return f.stream }

// Replay re-emits the buffered value (and terminal event) to children.
func (f *Future[T]) Replay() { f.stream.Replay() }

// Await blocks until the Future resolves or ctx is done. It is a
// SPEC_FULL.md addition: the original surface only ever observes a
// Future through attach-time handlers, but idiomatic Go call sites
// usually want a blocking request/response shape.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	type outcome struct {
		value T
		err   error
	}
	ch := make(chan outcome, 1)

	appendOperator(f.stream, func(prior *T, ev Event[T], emit func([]Event[T])) {
		switch {
		case ev.IsNext():
			select {
			case ch <- outcome{value: ev.Value}:
			default:
			}
		case ev.Term.Tag == Errored:
			select {
			case ch <- outcome{err: ev.Term.Err}:
			default:
			}
		case ev.Term.Tag == Cancelled:
			select {
			case ch <- outcome{err: context.Canceled}:
			default:
			}
		}
		emit([]Event[T]{ev})
	})

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// FutureInput is the imperative variant of spec.md §6: construction
// with no task, plus complete(value|error) called from outside.
type FutureInput[T any] struct {
	*Future[T]
}

// NewFutureInput constructs a FutureInput.
func NewFutureInput[T any](disp dispatch.Dispatcher, clk clock.Clock) *FutureInput[T] {
	return &FutureInput[T]{Future: newFutureCore[T](disp, clk)}
}

// Complete resolves the Future with a successful value.
func (fi *FutureInput[T]) Complete(value T) {
	fi.complete(Success(value))
}

// CompleteErr resolves the Future with a failure.
func (fi *FutureInput[T]) CompleteErr(err error) {
	fi.complete(Failure[T](err))
}
