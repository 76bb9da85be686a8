package reactor

import "time"

// Buffer collects values into fixed-size lists, emitting each list once
// size values have accumulated; on termination, the partial list is
// emitted iff partial is true (spec.md §4.2's buffer(size, partial)).
func Buffer[T any](parent *Stream[T], size int, partial bool) *Stream[[]T] {
	if size < 1 {
		size = 1
	}
	buf := make([]T, 0, size)
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[[]T])) {
		if ev.IsTerminate() {
			if len(buf) > 0 && partial {
				out := append([]T(nil), buf...)
				emit([]Event[[]T]{Next(out), Terminate[[]T](ev.Term)})
				return
			}
			emit([]Event[[]T]{Terminate[[]T](ev.Term)})
			return
		}
		buf = append(buf, ev.Value)
		if len(buf) == size {
			out := append([]T(nil), buf...)
			buf = buf[:0]
			emit([]Event[[]T]{Next(out)})
			return
		}
		emit(nil)
	})
}

// WindowSize emits the sliding window of the last size values for every
// incoming value; partial controls whether an under-filled window is
// emitted (spec.md §4.2's window(size:int, partial)).
func WindowSize[T any](parent *Stream[T], size int, partial bool) *Stream[[]T] {
	if size < 1 {
		size = 1
	}
	var buf []T
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[[]T])) {
		if ev.IsTerminate() {
			emit([]Event[[]T]{Terminate[[]T](ev.Term)})
			return
		}
		buf = append(buf, ev.Value)
		if len(buf) > size {
			buf = buf[len(buf)-size:]
		}
		if len(buf) < size && !partial {
			emit(nil)
			return
		}
		out := append([]T(nil), buf...)
		emit([]Event[[]T]{Next(out)})
	})
}

// WindowDuration emits every value received within the last size of
// wall-clock time, truncated to limit entries when limit > 0 (spec.md
// §4.2's window(size:duration, limit?)).
func WindowDuration[T any](parent *Stream[T], size time.Duration, limit int) *Stream[[]T] {
	clk := parent.clock
	type stamped struct {
		at time.Time
		v  T
	}
	var buf []stamped
	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[[]T])) {
		if ev.IsTerminate() {
			emit([]Event[[]T]{Terminate[[]T](ev.Term)})
			return
		}
		now := clk.Now()
		buf = append(buf, stamped{at: now, v: ev.Value})
		cutoff := now.Add(-size)
		drop := 0
		for drop < len(buf) && buf[drop].at.Before(cutoff) {
			drop++
		}
		if drop > 0 {
			buf = buf[drop:]
		}
		if limit > 0 && len(buf) > limit {
			buf = buf[len(buf)-limit:]
		}
		out := make([]T, len(buf))
		for i, s := range buf {
			out[i] = s.v
		}
		emit([]Event[[]T]{Next(out)})
	})
}
