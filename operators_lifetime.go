package reactor

// First emits the first value observed, then terminates with completed
// (spec.md §4.2's first()).
func First[T any](parent *Stream[T]) *Stream[T] {
	return firstImpl(parent, 1, TermCompleted)
}

// FirstN emits the first n values, then terminates with then (spec.md
// §4.2's first(n, then=cancelled)).
func FirstN[T any](parent *Stream[T], n int, then Termination) *Stream[T] {
	return firstImpl(parent, n, then)
}

func firstImpl[T any](parent *Stream[T], n int, then Termination) *Stream[T] {
	count := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if count >= n {
			emit(nil)
			return
		}
		count++
		if count == n {
			emit([]Event[T]{ev, Terminate[T](then)})
			return
		}
		emit([]Event[T]{ev})
	})
}

// Last buffers the most recent value and emits it on termination
// (spec.md §4.2's last()).
func Last[T any](parent *Stream[T]) *Stream[T] {
	return LastN(parent, 1, true)
}

// LastN buffers the last n values and emits them on termination;
// partial=false drops an under-filled buffer (spec.md §4.2's
// last(n, partial)).
func LastN[T any](parent *Stream[T], n int, partial bool) *Stream[T] {
	if n < 1 {
		n = 1
	}
	buf := make([]T, 0, n)
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			if len(buf) == 0 || (len(buf) < n && !partial) {
				emit([]Event[T]{ev})
				return
			}
			out := make([]Event[T], 0, len(buf)+1)
			for _, v := range buf {
				out = append(out, Next(v))
			}
			out = append(out, ev)
			emit(out)
			return
		}
		buf = append(buf, ev.Value)
		if len(buf) > n {
			buf = buf[len(buf)-n:]
		}
		emit(nil)
	})
}

// Reduce folds every value into U, emitting the final accumulator on
// termination (spec.md §4.2's reduce(initial, r) ≡ scan(initial, r).last()).
func Reduce[T, U any](parent *Stream[T], initial U, f func(acc U, next T) U) *Stream[U] {
	return Last(Scan(parent, initial, f))
}

// DoWhile passes values through while pred holds, then terminates with
// then on the first value for which pred is false (spec.md §4.2).
func DoWhile[T any](parent *Stream[T], pred func(T) bool, then Termination) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if pred(ev.Value) {
			emit([]Event[T]{ev})
			return
		}
		emit([]Event[T]{ev, Terminate[T](then)})
	})
}

// Until passes values through until pred first holds, then terminates
// with then on that value (spec.md §4.2).
func Until[T any](parent *Stream[T], pred func(T) bool, then Termination) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if pred(ev.Value) {
			emit([]Event[T]{ev, Terminate[T](then)})
			return
		}
		emit([]Event[T]{ev})
	})
}

// Skip drops the first n values (spec.md §4.2's skip(n)).
func Skip[T any](parent *Stream[T], n int) *Stream[T] {
	seen := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if seen < n {
			seen++
			emit(nil)
			return
		}
		emit([]Event[T]{ev})
	})
}

// TakeN passes the first n values through, then terminates with then
// (spec.md §4.2's next(n, then=cancelled); renamed to avoid colliding
// with the Next event constructor).
func TakeN[T any](parent *Stream[T], n int, then Termination) *Stream[T] {
	taken := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if taken >= n {
			emit([]Event[T]{Terminate[T](then)})
			return
		}
		taken++
		if taken == n {
			emit([]Event[T]{ev, Terminate[T](then)})
			return
		}
		emit([]Event[T]{ev})
	})
}

// StartWith emits prefix once, before the first value observed (spec.md
// §4.2's start(with:[T])).
func StartWith[T any](parent *Stream[T], prefix []T) *Stream[T] {
	emitted := false
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if !emitted {
			emitted = true
			out := make([]Event[T], 0, len(prefix)+1)
			for _, v := range prefix {
				out = append(out, Next(v))
			}
			out = append(out, ev)
			emit(out)
			return
		}
		emit([]Event[T]{ev})
	})
}

// Concat emits tail's values on termination, before forwarding the
// terminate event (spec.md §4.2's concat([T])).
func Concat[T any](parent *Stream[T], tail []T) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			out := make([]Event[T], 0, len(tail)+1)
			for _, v := range tail {
				out = append(out, Next(v))
			}
			out = append(out, ev)
			emit(out)
			return
		}
		emit([]Event[T]{ev})
	})
}

// DefaultValue emits v before the terminate event if the stream ends
// without ever having emitted (spec.md §4.2's defaultValue(v)).
func DefaultValue[T any](parent *Stream[T], v T) *Stream[T] {
	emitted := false
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			if !emitted {
				emit([]Event[T]{Next(v), ev})
				return
			}
			emit([]Event[T]{ev})
			return
		}
		emitted = true
		emit([]Event[T]{ev})
	})
}

// Stride emits every nth value, n≥1 (spec.md §4.2's stride(n)).
func Stride[T any](parent *Stream[T], n int) *Stream[T] {
	if n < 1 {
		n = 1
	}
	count := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		count++
		if count%n == 0 {
			emit([]Event[T]{ev})
			return
		}
		emit(nil)
	})
}
