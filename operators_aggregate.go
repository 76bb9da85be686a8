package reactor

import "cmp"

// Count emits a 1-indexed counter per incoming value, not the value
// itself (spec.md §4.2's count()).
func Count[T any](parent *Stream[T]) *Stream[int] {
	n := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[int])) {
		if ev.IsTerminate() {
			emit([]Event[int]{Terminate[int](ev.Term)})
			return
		}
		n++
		emit([]Event[int]{Next(n)})
	})
}

// Pair is the tuple type used by stamp/countStamp/zip/combine.
type Pair[A, B any] struct {
	First  A
	Second B
}

// CountStamp emits (value, 1-indexed counter) pairs (spec.md §4.2's
// countStamp()).
func CountStamp[T any](parent *Stream[T]) *Stream[Pair[T, int]] {
	n := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[Pair[T, int]])) {
		if ev.IsTerminate() {
			emit([]Event[Pair[T, int]]{Terminate[Pair[T, int]](ev.Term)})
			return
		}
		n++
		emit([]Event[Pair[T, int]]{Next(Pair[T, int]{First: ev.Value, Second: n})})
	})
}

// Stamp emits (value, f(value)) pairs (spec.md §4.2's stamp(T→U)).
func Stamp[T, U any](parent *Stream[T], f func(T) U) *Stream[Pair[T, U]] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[Pair[T, U]])) {
		if ev.IsTerminate() {
			emit([]Event[Pair[T, U]]{Terminate[Pair[T, U]](ev.Term)})
			return
		}
		emit([]Event[Pair[T, U]]{Next(Pair[T, U]{First: ev.Value, Second: f(ev.Value)})})
	})
}

// TimeStamp emits (value, now()) pairs (spec.md §4.2's timeStamp(),
// ≡ stamp(_ → now())).
func TimeStamp[T any](parent *Stream[T]) *Stream[Pair[T, int64]] {
	clk := parent.clock
	return Stamp(parent, func(T) int64 { return clk.Now().UnixNano() })
}

// Distinct passes the first value unconditionally; subsequent values
// pass iff pred(prior, next) is true (spec.md §4.2's distinct(pred)).
func Distinct[T any](parent *Stream[T], pred func(prior, next T) bool) *Stream[T] {
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if prior == nil || pred(*prior, ev.Value) {
			emit([]Event[T]{ev})
			return
		}
		emit(nil)
	})
}

// MinBy emits only when a new extremum is observed under cmp; the
// first value always passes (spec.md §4.2's min/max(cmp)).
func MinBy[T any](parent *Stream[T], cmp func(a, b T) int) *Stream[T] {
	return extremum(parent, func(candidate, current T) bool { return cmp(candidate, current) < 0 })
}

// MaxBy emits only when a new extremum is observed under cmp.
func MaxBy[T any](parent *Stream[T], cmp func(a, b T) int) *Stream[T] {
	return extremum(parent, func(candidate, current T) bool { return cmp(candidate, current) > 0 })
}

func extremum[T any](parent *Stream[T], better func(candidate, current T) bool) *Stream[T] {
	var best T
	seen := false
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{ev})
			return
		}
		if !seen || better(ev.Value, best) {
			seen = true
			best = ev.Value
			emit([]Event[T]{ev})
			return
		}
		emit(nil)
	})
}

// Min is the comparable-type shortcut over MinBy (spec.md §4.2's
// min()).
func Min[T cmp.Ordered](parent *Stream[T]) *Stream[T] {
	return MinBy(parent, cmp.Compare[T])
}

// Max is the comparable-type shortcut over MaxBy (spec.md §4.2's
// max()).
func Max[T cmp.Ordered](parent *Stream[T]) *Stream[T] {
	return MaxBy(parent, cmp.Compare[T])
}

// Number constrains the arithmetic types Average and Sum operate on.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sum emits the running sum of all values observed so far (spec.md
// §4.2's sum()).
func Sum[T Number](parent *Stream[T]) *Stream[T] {
	var total T
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			emit([]Event[T]{Terminate[T](ev.Term)})
			return
		}
		total += ev.Value
		emit([]Event[T]{Next(total)})
	})
}

// Average emits the running mean of all values observed so far
// (spec.md §4.2's average()).
func Average[T Number](parent *Stream[T]) *Stream[float64] {
	var total T
	count := 0
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[float64])) {
		if ev.IsTerminate() {
			emit([]Event[float64]{Terminate[float64](ev.Term)})
			return
		}
		total += ev.Value
		count++
		emit([]Event[float64]{Next(float64(total) / float64(count))})
	})
}
