package reactor

import (
	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
)

// Hot is a source that produces events regardless of whether anything
// is attached; late subscribers miss prior events unless a replay
// policy is set (spec.md §1, §6).
type Hot[T any] struct {
	stream *Stream[T]
}

// NewHot constructs an always-persistent Hot source: terminating its
// last child never cascades into terminating the Hot node itself
// (spec.md §4.1 "Hot inputs ... suppress pruning").
func NewHot[T any](disp dispatch.Dispatcher, clk clock.Clock, replay ReplayPolicy) *Hot[T] {
	s := newStream[T](KindHot, disp, clk, replay)
	s.Persist(true)
	return &Hot[T]{stream: s}
}

// Stream exposes the underlying node for composition with the operator
// library.
func (h *Hot[T]) Stream() *Stream[T] { return h.stream }

// Push injects a value into the hot stream, delivered to every current
// (and, per replay policy, every future) child.
func (h *Hot[T]) Push(value T) {
	h.stream.dispatch.Execute(func() {
		h.stream.push(Next(value), NoKey)
	})
}

// Terminate idempotently ends the stream.
func (h *Hot[T]) Terminate(reason Termination) {
	h.stream.dispatch.Execute(func() {
		h.stream.Terminate(reason)
	})
}

// HotInput is the imperative variant named directly in spec.md §6:
// Hot<T>() for construction, push(T)/terminate(reason) for injection.
// It is identical to Hot; the separate name mirrors the source
// language's Hot<T>()/HotInput<T>() pairing (plain construction vs.
// pre-wired imperative injection) while both resolve to the same
// underlying type in this port.
type HotInput[T any] = Hot[T]

// NewHotInput constructs a HotInput source.
func NewHotInput[T any](disp dispatch.Dispatcher, clk clock.Clock, replay ReplayPolicy) *HotInput[T] {
	return NewHot[T](disp, clk, replay)
}
