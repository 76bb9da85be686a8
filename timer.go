package reactor

import (
	"sync"
	"time"

	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
	"driftpursuit/reactor/internal/timerfactory"
)

// Timer is a repeating source of void (struct{}) ticks (spec.md §4.5).
type Timer struct {
	stream  *Stream[struct{}]
	disp    dispatch.Dispatcher
	factory timerfactory.Factory

	mu          sync.Mutex
	interval    time.Duration
	token       timerfactory.Token
	timerActive bool
	terminated  bool
}

// NewTimer constructs a Timer with the given interval. factory is the
// injectable scheduling primitive named in spec.md §4.5's "scheduling
// primitive is injectable to support tests".
func NewTimer(disp dispatch.Dispatcher, clk clock.Clock, factory timerfactory.Factory, interval time.Duration) *Timer {
	s := newStream[struct{}](KindHot, disp, clk, NoReplay)
	s.Persist(true)
	return &Timer{
		stream:   s,
		disp:     disp,
		factory:  factory,
		interval: interval,
	}
}

// Stream exposes the underlying tick source for composition.
func (t *Timer) Stream() *Stream[struct{}] { return t.stream }

// IsActive reports whether the timer has not been terminated. It stays
// true across Stop()/Start() cycles.
func (t *Timer) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.terminated
}

// IsTimerActive reports whether the timer is currently scheduled.
func (t *Timer) IsTimerActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timerActive
}

// Count returns a derived stream emitting a 1-indexed tick counter
// (spec.md §4.5's count() convenience, built on the count() operator).
func (t *Timer) Count() *Stream[int] {
	return Count(t.stream)
}

// Start begins scheduling ticks. Idempotent: calling Start while
// already scheduled is a no-op (spec.md §8 scenario 5). If
// delayFirst is false, one tick fires synchronously before the
// repeating schedule begins.
func (t *Timer) Start(delayFirst bool) {
	t.mu.Lock()
	if t.terminated || t.timerActive {
		t.mu.Unlock()
		return
	}
	t.timerActive = true
	interval := t.interval
	t.mu.Unlock()

	if !delayFirst {
		t.fire()
	}

	t.mu.Lock()
	if t.terminated || !t.timerActive {
		t.mu.Unlock()
		return
	}
	t.token = t.factory.Schedule(interval, true, t.fire)
	t.mu.Unlock()
}

func (t *Timer) fire() {
	t.disp.Execute(func() {
		t.mu.Lock()
		active := t.timerActive && !t.terminated
		t.mu.Unlock()
		if !active {
			return
		}
		t.stream.push(Next(struct{}{}), NoKey)
	})
}

// Stop cancels the schedule but leaves the stream active and
// resumable (spec.md §8: "stop() leaves isActive=true,
// isTimerActive=false").
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.timerActive {
		t.mu.Unlock()
		return
	}
	t.timerActive = false
	token := t.token
	t.token = nil
	t.mu.Unlock()

	if token != nil {
		t.factory.Cancel(token)
	}
}

// Restart stops the timer, updates its interval, and starts it again
// with delayFirst=true.
func (t *Timer) Restart(interval time.Duration) {
	t.Stop()
	t.mu.Lock()
	t.interval = interval
	t.mu.Unlock()
	t.Start(true)
}

// Terminate stops scheduling and transitions the stream to terminated;
// both isActive and isTimerActive become false (spec.md §8).
func (t *Timer) Terminate(reason Termination) {
	t.Stop()
	t.mu.Lock()
	t.terminated = true
	t.mu.Unlock()
	t.stream.Terminate(reason)
}
