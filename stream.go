// Package reactor implements a composable reactive-streams dataflow
// engine: a directed acyclic graph of Hot, Cold, Future and Timer
// source nodes connected through a single generic operator primitive,
// with uniform termination, pruning, and keyed Cold request/response
// routing.
//
// All mutation of a single stream graph's state, downstream list, key
// set, and replay buffer happens on that graph's Dispatcher — the
// cooperative single-threaded executor named in spec.md §5. Events
// arriving from outside that dispatcher (timer fires, Cold task
// callbacks, Future completions) are re-posted onto it before they
// touch the graph.
package reactor

import (
	"sync"

	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
	"driftpursuit/reactor/internal/support"
)

// Diagnostic is a best-effort, non-blocking observability event fired
// on state transitions and pruned edges (SPEC_FULL.md §4.1).
type Diagnostic struct {
	Kind   Kind
	Event  string
	Detail string
}

// downstreamEdge is the type-erased view of a child plus its operator
// function that a Stream[T] keeps in its downstream list (spec.md's
// DownstreamProcessor).
type downstreamEdge[T any] interface {
	deliver(ev Event[T], key EventKey)
	childTerminated() bool
	coldKeyEdge() *coldEdge
}

// Stream is a node in the dataflow graph. One struct represents every
// variant (Hot, Cold, Future, Timer, and plain operator nodes); Kind
// plus the cold-specific fields distinguish variant-specific policy,
// per spec.md §9's "tagged enum tag + one struct" design note.
type Stream[T any] struct {
	mu sync.Mutex

	kind  Kind
	state State

	dispatch dispatch.Dispatcher
	clock    clock.Clock

	replayPolicy ReplayPolicy
	replayBuf    *support.CircularBuffer[Event[T]]
	// replayTerm holds the stream's terminal event outside replayBuf's
	// bounded next-event capacity, so last(n) always retains exactly n
	// next events plus this one trailing terminal (spec.md §4.1).
	replayTerm *Event[T]

	persist bool

	downstream []downstreamEdge[T]

	onTerminateHandlers []func(Termination)
	onTerminateInternal func(Termination)
	onParentTerminated  func()

	diagnostic func(Diagnostic)

	// Cold-only fields; zero value elsewhere. keys lives on a per-edge
	// coldEdge (see cold.go), not here, per spec.md §3's invariant
	// that a plain Stream never owns a non-empty key set — only the
	// Cold node's routing step (coldRoute) consults it.
	shareMode ShareMode

	// branchEdge is non-nil when this stream descends from a Cold
	// node through a specific forked branch (see cold.go); it lets
	// derived ColdBranch values issue Request calls scoped to the
	// right edge.
	branchEdge *coldEdge
}

func newStream[T any](kind Kind, disp dispatch.Dispatcher, clk clock.Clock, replay ReplayPolicy) *Stream[T] {
	s := &Stream[T]{
		kind:         kind,
		state:        StateActive,
		dispatch:     disp,
		clock:        clk,
		replayPolicy: replay,
	}
	if cap := replay.capacity(); cap >= 0 {
		s.replayBuf = support.NewCircularBuffer[Event[T]](cap)
	}
	return s
}

// State returns the stream's current lifecycle state.
func (s *Stream[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Kind returns the stream's behavioral category.
func (s *Stream[T]) Kind() Kind {
	return s.kind
}

// Persist marks the stream as exempt from pruning: terminating its last
// child never causes this node to terminate (spec.md §4.1).
func (s *Stream[T]) Persist(p bool) *Stream[T] {
	s.mu.Lock()
	s.persist = p
	s.mu.Unlock()
	return s
}

// OnDiagnostic installs a best-effort observability hook, fired for
// state transitions and pruned edges. SPEC_FULL.md §4.1.
func (s *Stream[T]) OnDiagnostic(f func(Diagnostic)) *Stream[T] {
	s.mu.Lock()
	s.diagnostic = f
	s.mu.Unlock()
	return s
}

func (s *Stream[T]) emitDiagnostic(d Diagnostic) {
	s.mu.Lock()
	hook := s.diagnostic
	s.mu.Unlock()
	if hook != nil {
		hook(d)
	}
}

// OnTerminate registers a handler invoked exactly once when this
// stream transitions to terminated.
func (s *Stream[T]) OnTerminate(h func(Termination)) *Stream[T] {
	s.mu.Lock()
	s.onTerminateHandlers = append(s.onTerminateHandlers, h)
	s.mu.Unlock()
	return s
}

// Terminate idempotently transitions the stream to terminated,
// emitting terminate(reason) to itself (spec.md §4.1).
func (s *Stream[T]) Terminate(reason Termination) {
	s.push(Event[T]{Tag: EventTerminate, Term: reason}, NoKey)
}

// Push is the entry point for parent -> child (or source -> self)
// event injection (spec.md §4.1's push(event, key)). It fires this
// node's onTerminateInternal hook on self-initiated termination.
func (s *Stream[T]) push(ev Event[T], key EventKey) {
	s.pushInternal(ev, key, true)
}

// pushRelayed is used by edgeNode.deliver when a parent forwards an
// event into this node through its operator edge. The edge already ran
// the operator with the real terminate event and a real emit, so
// onTerminateInternal (which only ever discards its output) must not
// fire a second time here.
func (s *Stream[T]) pushRelayed(ev Event[T], key EventKey) {
	s.pushInternal(ev, key, false)
}

func (s *Stream[T]) pushInternal(ev Event[T], key EventKey, fireInternal bool) {
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return
	}

	if ev.IsTerminate() {
		s.state = StateTerminated
		reason := ev.Term
		internalHook := s.onTerminateInternal
		handlers := append([]func(Termination){}, s.onTerminateHandlers...)
		downstreamSnapshot := append([]downstreamEdge[T]{}, s.downstream...)
		s.downstream = nil
		s.bufferLocked(ev)
		s.mu.Unlock()

		if fireInternal && internalHook != nil {
			internalHook(reason)
		}
		for _, h := range handlers {
			h(reason)
		}
		for _, d := range downstreamSnapshot {
			d.deliver(ev, key)
		}
		s.emitDiagnostic(Diagnostic{Kind: s.kind, Event: "terminated", Detail: reason.String()})
		if s.onParentTerminated != nil {
			s.onParentTerminated()
		}
		return
	}

	s.bufferLocked(ev)
	edges := append([]downstreamEdge[T]{}, s.downstream...)
	s.mu.Unlock()

	s.fanOut(ev, key, edges)
}

func (s *Stream[T]) bufferLocked(ev Event[T]) {
	if s.replayBuf == nil {
		return
	}
	if ev.IsNext() {
		s.replayBuf.Push(ev)
		return
	}
	if ev.IsTerminate() {
		termCopy := ev
		s.replayTerm = &termCopy
	}
}

func (s *Stream[T]) fanOut(ev Event[T], key EventKey, edges []downstreamEdge[T]) {
	for _, d := range edges {
		accept, deliverKey := true, key
		if s.kind == KindCold {
			accept, deliverKey = s.coldRoute(d.coldKeyEdge(), key)
		}
		if accept {
			d.deliver(ev, deliverKey)
		}
	}
}

// appendDownstream registers edge as a downstream processor and replays
// buffered events to it synchronously in insertion order (spec.md
// §4.1). The one exception is a terminated Future: its buffered value
// and terminal event are replayed via the dispatcher on the next tick.
func (s *Stream[T]) appendDownstream(edge downstreamEdge[T], replayTo func(Event[T])) {
	s.mu.Lock()
	if s.state == StateTerminated {
		buffered := s.replaySnapshotLocked()
		s.mu.Unlock()
		replay := func() {
			for _, ev := range buffered {
				replayTo(ev)
			}
		}
		if s.kind == KindFuture {
			s.dispatch.Execute(replay)
			return
		}
		replay()
		return
	}
	s.downstream = append(s.downstream, edge)
	buffered := s.replaySnapshotLocked()
	s.mu.Unlock()

	for _, ev := range buffered {
		replayTo(ev)
	}
}

func (s *Stream[T]) replaySnapshotLocked() []Event[T] {
	if s.replayBuf == nil {
		return nil
	}
	items := s.replayBuf.Items()
	out := make([]Event[T], len(items), len(items)+1)
	copy(out, items)
	if s.replayTerm != nil {
		out = append(out, *s.replayTerm)
	}
	return out
}

// Replay re-emits the replay buffer to children (spec.md §4.1).
func (s *Stream[T]) Replay() {
	s.mu.Lock()
	edges := append([]downstreamEdge[T]{}, s.downstream...)
	buffered := s.replaySnapshotLocked()
	s.mu.Unlock()

	for _, ev := range buffered {
		s.fanOut(ev, NoKey, edges)
	}
}

// removeChild drops edge from the downstream list; if the list becomes
// empty and this node is not persistent, the node terminates with
// cancelled, propagating pruning pressure further upstream (spec.md
// §4.1 "Pruning").
func (s *Stream[T]) removeChild(edge downstreamEdge[T]) {
	s.mu.Lock()
	if s.state == StateTerminated {
		s.mu.Unlock()
		return
	}
	idx := -1
	for i, d := range s.downstream {
		if any(d) == any(edge) {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}
	s.downstream = append(s.downstream[:idx], s.downstream[idx+1:]...)
	empty := len(s.downstream) == 0
	persist := s.persist
	kind := s.kind
	s.mu.Unlock()

	if empty && !persist && kind != KindHot {
		s.emitDiagnostic(Diagnostic{Kind: kind, Event: "pruned"})
		s.Terminate(TermCancelled)
	}
}

// setParentNotify wires the callback append() uses to propagate
// pruning pressure to the parent when this stream terminates.
func (s *Stream[T]) setParentNotify(f func()) {
	s.mu.Lock()
	s.onParentTerminated = f
	s.mu.Unlock()
}

// downstreamCount reports the number of active children, for tests and
// diagnostics.
func (s *Stream[T]) downstreamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.downstream)
}
