package reactor

import (
	"sync"
	"time"
)

// Delay schedules each value's emission at now+d via the dispatcher.
// Termination waits for every already-scheduled emission to drain
// before it is observed downstream (spec.md §4.2's delay(d), §5's
// "pending delayed emissions ... MUST NOT bypass queued prior events").
func Delay[T any](parent *Stream[T], d time.Duration) *Stream[T] {
	disp := parent.dispatch

	var mu sync.Mutex
	pending := 0
	var pendingTerm *Event[T]

	return appendOperator(parent, func(prior *T, ev Event[T], emit func([]Event[T])) {
		if ev.IsTerminate() {
			mu.Lock()
			if pending == 0 {
				mu.Unlock()
				emit([]Event[T]{ev})
				return
			}
			termCopy := ev
			pendingTerm = &termCopy
			mu.Unlock()
			return
		}

		mu.Lock()
		pending++
		mu.Unlock()

		disp.After(d, func() {
			emit([]Event[T]{ev})

			mu.Lock()
			pending--
			var flush *Event[T]
			if pending == 0 && pendingTerm != nil {
				flush = pendingTerm
				pendingTerm = nil
			}
			mu.Unlock()

			if flush != nil {
				emit([]Event[T]{*flush})
			}
		})
	})
}
