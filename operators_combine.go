package reactor

import "sync"

// Merge interleaves values from both parents as received; the child
// terminates once both parents have terminated (spec.md §4.2's
// merge(Stream<U>), §8's quantified invariant on merge).
func Merge[T any](a, b *Stream[T]) *Stream[T] {
	child := newStream[T](KindBase, a.dispatch, a.clock, a.replayPolicy)
	child.branchEdge = a.branchEdge

	var mu sync.Mutex
	doneA, doneB := false, false

	edgeA := &relayEdge[T]{
		onNext: func(ev Event[T]) { child.pushRelayed(ev, NoKey) },
		onTerm: func(Termination) {
			mu.Lock()
			doneA = true
			both := doneA && doneB
			mu.Unlock()
			if both {
				child.push(Terminate[T](TermCompleted), NoKey)
			}
		},
	}
	edgeB := &relayEdge[T]{
		onNext: func(ev Event[T]) { child.pushRelayed(ev, NoKey) },
		onTerm: func(Termination) {
			mu.Lock()
			doneB = true
			both := doneA && doneB
			mu.Unlock()
			if both {
				child.push(Terminate[T](TermCompleted), NoKey)
			}
		},
	}

	child.setParentNotify(func() {
		a.removeChild(edgeA)
		b.removeChild(edgeB)
	})
	a.appendDownstream(edgeA, func(ev Event[T]) { edgeA.deliver(ev, NoKey) })
	b.appendDownstream(edgeB, func(ev Event[T]) { edgeB.deliver(ev, NoKey) })

	return child
}

// Zip pairs values from a and b by arrival index. When buffer > 0, each
// side's backlog is capped at buffer entries, dropping the oldest
// buffered value on overflow (spec.md §4.2's zip(Stream<U>, buffer?)).
func Zip[A, B any](a *Stream[A], b *Stream[B], buffer int) *Stream[Pair[A, B]] {
	child := newStream[Pair[A, B]](KindBase, a.dispatch, a.clock, a.replayPolicy)
	child.branchEdge = a.branchEdge

	var mu sync.Mutex
	var bufA []A
	var bufB []B

	drain := func() []Pair[A, B] {
		var out []Pair[A, B]
		for len(bufA) > 0 && len(bufB) > 0 {
			out = append(out, Pair[A, B]{First: bufA[0], Second: bufB[0]})
			bufA = bufA[1:]
			bufB = bufB[1:]
		}
		return out
	}

	edgeA := &relayEdge[A]{
		onNext: func(ev Event[A]) {
			mu.Lock()
			bufA = append(bufA, ev.Value)
			if buffer > 0 && len(bufA) > buffer {
				bufA = bufA[len(bufA)-buffer:]
			}
			out := drain()
			mu.Unlock()
			for _, p := range out {
				child.pushRelayed(Next(p), NoKey)
			}
		},
		onTerm: func(term Termination) { child.push(Terminate[Pair[A, B]](term), NoKey) },
	}
	edgeB := &relayEdge[B]{
		onNext: func(ev Event[B]) {
			mu.Lock()
			bufB = append(bufB, ev.Value)
			if buffer > 0 && len(bufB) > buffer {
				bufB = bufB[len(bufB)-buffer:]
			}
			out := drain()
			mu.Unlock()
			for _, p := range out {
				child.pushRelayed(Next(p), NoKey)
			}
		},
		onTerm: func(term Termination) { child.push(Terminate[Pair[A, B]](term), NoKey) },
	}

	child.setParentNotify(func() {
		a.removeChild(edgeA)
		b.removeChild(edgeB)
	})
	a.appendDownstream(edgeA, func(ev Event[A]) { edgeA.deliver(ev, NoKey) })
	b.appendDownstream(edgeB, func(ev Event[B]) { edgeB.deliver(ev, NoKey) })

	return child
}

// Combine emits a tuple whenever either parent produces a value. With
// latest=true, the other side's most recent value is reused (no
// emission until both sides have produced at least once); with
// latest=false, values pair one-for-one by arrival order and excess is
// dropped (spec.md §4.2's combine(Stream<U>, latest), §9's Open
// Question resolution for the out-of-lock-step case).
func Combine[A, B any](a *Stream[A], b *Stream[B], latest bool) *Stream[Pair[A, B]] {
	child := newStream[Pair[A, B]](KindBase, a.dispatch, a.clock, a.replayPolicy)
	child.branchEdge = a.branchEdge

	var mu sync.Mutex
	var curA A
	var curB B
	haveA, haveB := false, false
	pendA, pendB := false, false

	edgeA := &relayEdge[A]{
		onNext: func(ev Event[A]) {
			mu.Lock()
			curA, haveA = ev.Value, true
			var out Pair[A, B]
			ready := false
			if latest {
				if haveA && haveB {
					out, ready = Pair[A, B]{First: curA, Second: curB}, true
				}
			} else {
				pendA = true
				if pendB {
					out, ready = Pair[A, B]{First: curA, Second: curB}, true
					pendA, pendB = false, false
				}
			}
			mu.Unlock()
			if ready {
				child.pushRelayed(Next(out), NoKey)
			}
		},
		onTerm: func(term Termination) { child.push(Terminate[Pair[A, B]](term), NoKey) },
	}
	edgeB := &relayEdge[B]{
		onNext: func(ev Event[B]) {
			mu.Lock()
			curB, haveB = ev.Value, true
			var out Pair[A, B]
			ready := false
			if latest {
				if haveA && haveB {
					out, ready = Pair[A, B]{First: curA, Second: curB}, true
				}
			} else {
				pendB = true
				if pendA {
					out, ready = Pair[A, B]{First: curA, Second: curB}, true
					pendA, pendB = false, false
				}
			}
			mu.Unlock()
			if ready {
				child.pushRelayed(Next(out), NoKey)
			}
		},
		onTerm: func(term Termination) { child.push(Terminate[Pair[A, B]](term), NoKey) },
	}

	child.setParentNotify(func() {
		a.removeChild(edgeA)
		b.removeChild(edgeB)
	})
	a.appendDownstream(edgeA, func(ev Event[A]) { edgeA.deliver(ev, NoKey) })
	b.appendDownstream(edgeB, func(ev Event[B]) { edgeB.deliver(ev, NoKey) })

	return child
}

// TakeUntilSignal forwards parent's values until signal produces its
// first value, at which point the derived stream terminates with
// cancelled (SPEC_FULL.md §4.2 addition).
func TakeUntilSignal[T, S any](parent *Stream[T], signal *Stream[S]) *Stream[T] {
	child := newStream[T](KindBase, parent.dispatch, parent.clock, parent.replayPolicy)
	child.branchEdge = parent.branchEdge

	mainEdge := &relayEdge[T]{
		onNext: func(ev Event[T]) { child.pushRelayed(ev, NoKey) },
		onTerm: func(term Termination) { child.push(Terminate[T](term), NoKey) },
	}
	child.setParentNotify(func() {
		parent.removeChild(mainEdge)
	})
	parent.appendDownstream(mainEdge, func(ev Event[T]) { mainEdge.deliver(ev, NoKey) })

	var once sync.Once
	appendOperator(signal, func(prior *S, ev Event[S], emit func([]Event[S])) {
		if ev.IsNext() {
			once.Do(func() {
				child.Terminate(TermCancelled)
			})
		}
		emit([]Event[S]{ev})
	})

	return child
}
