// Package timerfactory provides the injected periodic-timer collaborator
// named in spec.md §6 ("TimerFactory: schedule(interval, repeats, fire)
// → Token; cancel(Token)"), backing the Timer source (spec.md §4.5).
package timerfactory

import (
	"sync"
	"time"
)

// Token identifies a scheduled timer for later cancellation.
type Token interface{}

// Factory schedules and cancels periodic or one-shot callbacks.
type Factory interface {
	Schedule(interval time.Duration, repeats bool, fire func()) Token
	Cancel(Token)
}

type handle struct {
	mu        sync.Mutex
	timer     *time.Timer
	cancelled bool
}

// System is the real Factory, backed by time.AfterFunc self-rescheduled
// for the repeating case.
type System struct{}

// Schedule starts the timer. If repeats is true, fire is invoked every
// interval until Cancel is called; otherwise it fires once.
func (System) Schedule(interval time.Duration, repeats bool, fire func()) Token {
	h := &handle{}
	var scheduleOne func()
	scheduleOne = func() {
		h.mu.Lock()
		if h.cancelled {
			h.mu.Unlock()
			return
		}
		h.timer = time.AfterFunc(interval, func() {
			fire()
			if repeats {
				scheduleOne()
			}
		})
		h.mu.Unlock()
	}
	scheduleOne()
	return h
}

// Cancel stops a scheduled timer. Safe to call more than once.
func (System) Cancel(tok Token) {
	h, ok := tok.(*handle)
	if !ok || h == nil {
		return
	}
	h.mu.Lock()
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mu.Unlock()
}

// Default is the process-wide default Factory.
var Default Factory = System{}
