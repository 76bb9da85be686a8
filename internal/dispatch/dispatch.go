// Package dispatch provides the single-threaded cooperative executor
// spec.md §5 requires: "all operations on a single stream graph are
// serialized through one dispatcher." It is the concrete default for
// the injected Dispatcher collaborator named in spec.md §6
// (execute(f), after(d, f)).
package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dispatcher serializes work for one stream graph. Execute and After
// both post to the same internal queue so no two posted functions ever
// run concurrently with each other.
type Dispatcher interface {
	// Execute enqueues f to run on the dispatcher's single worker.
	Execute(f func())
	// After schedules f to run on the dispatcher's single worker no
	// sooner than d from now.
	After(d time.Duration, f func())
}

// Queue is the default Dispatcher: a single worker goroutine draining a
// FIFO channel of posted functions, so sibling ordering (spec.md §5:
// "for siblings, delivery order equals registration order") falls out
// of plain channel semantics rather than needing an explicit sequence
// number.
//
// Every post is additionally tracked by an errgroup.Group so Drain can
// wait for work queued-before-the-call to actually finish running (not
// merely be accepted into the channel) before returning — the teacher
// lineage pulls in golang.org/x/sync directly (rclone-rclone/go.mod)
// for this kind of goroutine-lifecycle bookkeeping.
type Queue struct {
	mu     sync.Mutex
	queue  chan func()
	group  *errgroup.Group
	closed bool
	timers map[*time.Timer]struct{}
}

// NewQueue constructs a running Queue with the given channel depth.
// depth <= 0 defaults to 256.
func NewQueue(depth int) *Queue {
	if depth <= 0 {
		depth = 256
	}
	q := &Queue{
		queue:  make(chan func(), depth),
		group:  new(errgroup.Group),
		timers: make(map[*time.Timer]struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for f := range q.queue {
		f()
	}
}

// Execute enqueues f. If the queue has been stopped, f is dropped
// silently — matching spec.md §7's "contract violation ... ignored"
// policy for posts racing a shutdown.
func (q *Queue) Execute(f func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	ran := make(chan struct{})
	q.group.Go(func() error {
		<-ran
		return nil
	})
	q.queue <- func() { f(); close(ran) }
}

// After schedules f to run on the worker no sooner than d from now.
func (q *Queue) After(d time.Duration, f func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		q.mu.Lock()
		delete(q.timers, timer)
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}
		q.Execute(f)
	})
	q.timers[timer] = struct{}{}
	q.mu.Unlock()
}

// Drain waits for every function posted before the call to finish
// running, or ctx to expire.
func (q *Queue) Drain(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- q.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels pending delayed timers and stops accepting new work.
// Matches spec.md §5: "pending delayed emissions are discarded when
// their owning node terminates."
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for t := range q.timers {
		t.Stop()
	}
	q.timers = nil
	q.mu.Unlock()
}
