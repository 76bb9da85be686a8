package reactor

import "driftpursuit/reactor/internal/support"

// Using maintains a weak back-reference to obj, emitting (obj, value)
// pairs while it is alive; the first value observed once obj has been
// collected instead terminates with then (spec.md §4.2's using(obj,
// then), §5's "the using operator holds a weak reference to an
// external object").
func Using[T, O any](parent *Stream[T], obj *O, then Termination) *Stream[Pair[*O, T]] {
	box := support.NewWeakBox(obj)
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[Pair[*O, T]])) {
		if ev.IsTerminate() {
			emit([]Event[Pair[*O, T]]{Terminate[Pair[*O, T]](ev.Term)})
			return
		}
		ref, alive := box.Get()
		if !alive {
			emit([]Event[Pair[*O, T]]{Terminate[Pair[*O, T]](then)})
			return
		}
		emit([]Event[Pair[*O, T]]{Next(Pair[*O, T]{First: ref, Second: ev.Value})})
	})
}

// LifeOf is using(obj, then).map(value) (spec.md §4.2's
// lifeOf(obj, then) ≡ using(obj,then).map(_.1)).
func LifeOf[T, O any](parent *Stream[T], obj *O, then Termination) *Stream[T] {
	return MapAll(Using(parent, obj, then), func(p Pair[*O, T]) T { return p.Second })
}

// Flatten emits each element of every incoming slice, in order
// (spec.md §4.2's flatten() ≡ flatMap(identity)).
func Flatten[T any](parent *Stream[[]T]) *Stream[T] {
	return FlatMap(parent, func(v []T) []T { return v })
}

// Peek invokes h for every event (next or terminate) without altering
// it (SPEC_FULL.md §4.2 addition, for debugging/observability chains).
func Peek[T any](parent *Stream[T], h func(Event[T])) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		h(ev)
		emit([]Event[T]{ev})
	})
}

// IgnoreElements suppresses every next event but still forwards
// termination (SPEC_FULL.md §4.2 addition).
func IgnoreElements[T any](parent *Stream[T]) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		emit(nil)
	})
}

// CatchError intercepts an error(e) termination: handler may supply a
// fallback value to emit before terminating with a (possibly
// different) Termination, or decline recovery and let then apply
// directly (SPEC_FULL.md §4.2 addition, paralleling onError for plain,
// non-Result-carrying streams).
func CatchError[T any](parent *Stream[T], handler func(err error) (fallback T, recover bool, then Termination)) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() && ev.Term.Tag == Errored {
			fallback, recover, then := handler(ev.Term.Err)
			if recover {
				emit([]Event[T]{Next(fallback), Terminate[T](then)})
				return
			}
			emit([]Event[T]{Terminate[T](then)})
			return
		}
		emit([]Event[T]{ev})
	})
}

// AsyncMap is the async variant of map: complete MUST be invoked at
// most once; ok=false suppresses emission for that value (spec.md §4.2's
// map(T, (Result<U>?)→void)).
func AsyncMap[T, U any](parent *Stream[T], f func(value T, complete func(res Result[U], ok bool))) *Stream[U] {
	disp := parent.dispatch
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[U])) {
		if ev.IsTerminate() {
			emit([]Event[U]{Terminate[U](ev.Term)})
			return
		}
		go f(ev.Value, func(res Result[U], ok bool) {
			disp.Execute(func() {
				if !ok {
					emit(nil)
					return
				}
				if res.IsFailure() {
					emit([]Event[U]{Terminate[U](TermError(res.Err()))})
					return
				}
				emit([]Event[U]{Next(res.Value())})
			})
		})
	})
}
