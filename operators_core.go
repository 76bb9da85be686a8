package reactor

// On invokes h for every next(value) and passes the event through
// unchanged (spec.md §4.2's on(h)).
func On[T any](parent *Stream[T], h func(T)) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsNext() {
			h(ev.Value)
		}
		emit([]Event[T]{ev})
	})
}

// OnTransition invokes h with the previous and current value for every
// next event after the first, passing the event through unchanged.
func OnTransition[T any](parent *Stream[T], h func(prior, next T)) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsNext() && prior != nil {
			h(*prior, ev.Value)
		}
		emit([]Event[T]{ev})
	})
}

// OnTerminate invokes h exactly once when the stream terminates.
func OnTerminate[T any](parent *Stream[T], h func(Termination)) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			h(ev.Term)
		}
		emit([]Event[T]{ev})
	})
}

// Map emits f(value) for every next event; f returning false as its
// second result suppresses emission for that value (spec.md §4.2's
// map(T→U?), modeled in Go as a second bool return rather than a
// nilable value type).
func Map[T, U any](parent *Stream[T], f func(T) (U, bool)) *Stream[U] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[U])) {
		if ev.IsTerminate() {
			emit([]Event[U]{Terminate[U](ev.Term)})
			return
		}
		out, ok := f(ev.Value)
		if !ok {
			emit(nil)
			return
		}
		emit([]Event[U]{Next(out)})
	})
}

// MapAll is the common case of Map where every value maps to an output.
func MapAll[T, U any](parent *Stream[T], f func(T) U) *Stream[U] {
	return Map(parent, func(v T) (U, bool) { return f(v), true })
}

// MapResult emits next(U) on success(U) and terminate(error(e)) on
// failure(e) (spec.md §4.2's map(T→Result<U>)).
func MapResult[T, U any](parent *Stream[T], f func(T) Result[U]) *Stream[U] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[U])) {
		if ev.IsTerminate() {
			emit([]Event[U]{Terminate[U](ev.Term)})
			return
		}
		res := f(ev.Value)
		if res.IsFailure() {
			emit([]Event[U]{Terminate[U](TermError(res.Err()))})
			return
		}
		emit([]Event[U]{Next(res.Value())})
	})
}

// Filter passes through values for which pred is true (spec.md §4.2's
// filter(pred)).
func Filter[T any](parent *Stream[T], pred func(T) bool) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if pred(ev.Value) {
			emit([]Event[T]{ev})
			return
		}
		emit(nil)
	})
}

// FlatMap emits every element of f(value), in order, for each next
// event (spec.md §4.2's flatMap(T→[U])).
func FlatMap[T, U any](parent *Stream[T], f func(T) []U) *Stream[U] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[U])) {
		if ev.IsTerminate() {
			emit([]Event[U]{Terminate[U](ev.Term)})
			return
		}
		values := f(ev.Value)
		if len(values) == 0 {
			emit(nil)
			return
		}
		out := make([]Event[U], len(values))
		for i, v := range values {
			out[i] = Next(v)
		}
		emit(out)
	})
}

// Scan emits the running accumulator for each value (spec.md §4.2's
// scan(initial, (acc, T)→U)).
func Scan[T, U any](parent *Stream[T], initial U, f func(acc U, next T) U) *Stream[U] {
	acc := initial
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[U])) {
		if ev.IsTerminate() {
			emit([]Event[U]{Terminate[U](ev.Term)})
			return
		}
		acc = f(acc, ev.Value)
		emit([]Event[U]{Next(acc)})
	})
}

// OnError converts a Result-carrying stream into a plain value stream:
// success(v) passes through as next(v); failure(e) is handed to onErr,
// which may return a Termination to apply or false to remain active
// (spec.md §4.3's onError operator).
func OnError[T any](parent *Stream[Result[T]], onErr func(error) (Termination, bool)) *Stream[T] {
	return appendOperator(parent, func(prior *Result[T], ev Event[Result[T]], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{Terminate[T](ev.Term)})
			return
		}
		res := ev.Value
		if res.IsFailure() {
			if term, shouldTerminate := onErr(res.Err()); shouldTerminate {
				emit([]Event[T]{Terminate[T](term)})
			} else {
				emit(nil)
			}
			return
		}
		emit([]Event[T]{Next(res.Value())})
	})
}
