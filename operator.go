package reactor

// OperatorFunc is the single abstraction every operator in the catalog
// is built from (spec.md §4.2). prior is the previous next(T) value
// observed on this edge, or nil before the first one. emit may be
// called zero or more times, synchronously or from a later dispatcher
// tick (async map, delay); each call delivers zero or more output
// events to the child.
type OperatorFunc[T, U any] func(prior *T, next Event[T], emit func([]Event[U]))

// Emitter is the concrete emit callback handed to an OperatorFunc.
type Emitter[U any] func([]Event[U])

// edgeNode connects a parent Stream[T] to a child Stream[U] through one
// OperatorFunc — the concrete type behind downstreamEdge[T].
type edgeNode[T, U any] struct {
	child *Stream[U]
	op    OperatorFunc[T, U]
	prior *T
	edge  *coldEdge
}

func (e *edgeNode[T, U]) deliver(ev Event[T], key EventKey) {
	emit := func(outs []Event[U]) {
		for _, out := range outs {
			e.child.pushRelayed(out, key)
		}
	}
	e.op(e.prior, ev, emit)
	if ev.IsNext() {
		v := ev.Value
		e.prior = &v
	}
}

func (e *edgeNode[T, U]) childTerminated() bool {
	return e.child.State() == StateTerminated
}

func (e *edgeNode[T, U]) coldKeyEdge() *coldEdge {
	return e.edge
}

// appendOperator is the operator primitive of spec.md §4.2: allocate a
// new downstream node, wire it to parent via op, and register it so
// terminate events drive op with a synthetic terminate input exactly
// once.
func appendOperator[T, U any](parent *Stream[T], op OperatorFunc[T, U]) *Stream[U] {
	child := newStream[U](KindBase, parent.dispatch, parent.clock, parent.replayPolicy)

	parent.mu.Lock()
	branchEdge := parent.branchEdge
	parent.mu.Unlock()
	child.branchEdge = branchEdge

	edge := &edgeNode[T, U]{child: child, op: op, edge: nil}
	if parent.kind == KindCold {
		edge.edge = newColdEdge()
		child.branchEdge = edge.edge
	}

	child.onTerminateInternal = func(reason Termination) {
		discard := func([]Event[U]) {}
		op(edge.prior, Event[T]{Tag: EventTerminate, Term: reason}, discard)
	}
	child.setParentNotify(func() {
		parent.removeChild(edge)
	})

	parent.appendDownstream(edge, func(ev Event[T]) {
		edge.deliver(ev, NoKey)
	})

	return child
}

// relayEdge is a minimal downstreamEdge[T] used by operators that join
// more than one parent (merge, zip, combine, takeUntilSignal): it has
// no operator function of its own, just onNext/onTerm callbacks wired
// up by the caller.
type relayEdge[T any] struct {
	onNext func(ev Event[T])
	onTerm func(term Termination)
}

func (e *relayEdge[T]) deliver(ev Event[T], key EventKey) {
	if ev.IsTerminate() {
		if e.onTerm != nil {
			e.onTerm(ev.Term)
		}
		return
	}
	if e.onNext != nil {
		e.onNext(ev)
	}
}

func (e *relayEdge[T]) childTerminated() bool { return false }

func (e *relayEdge[T]) coldKeyEdge() *coldEdge { return nil }
