package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftpursuit/reactor/internal/clock"
	"driftpursuit/reactor/internal/dispatch"
)

func TestWindowDurationTrimsByWallClock(t *testing.T) {
	q := dispatch.NewQueue(16)
	t.Cleanup(q.Stop)
	fixed := clock.NewFixed(time.Unix(0, 0))

	hot := NewHot[int](q, fixed, NoReplay)
	windowed := WindowDuration(hot.Stream(), time.Second, 0)

	var got [][]int
	On(windowed, func(v []int) { got = append(got, v) })

	hot.Push(1)
	drain(t, q)
	fixed.Advance(500 * time.Millisecond)
	hot.Push(2)
	drain(t, q)
	fixed.Advance(600 * time.Millisecond)
	hot.Push(3)
	drain(t, q)

	require.Equal(t, [][]int{{1}, {1, 2}, {2, 3}}, got)
}

// TestDelayDeliversAfterDurationAndFlushesTerminationLast covers
// spec.md §5's "pending delayed emissions ... MUST NOT bypass queued
// prior events": terminate is held back until every scheduled delayed
// value has drained.
func TestDelayDeliversAfterDurationAndFlushesTerminationLast(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	delayed := Delay(hot.Stream(), 10*time.Millisecond)

	var got []int
	var terminated bool
	On(delayed, func(v int) { got = append(got, v) })
	delayed.OnTerminate(func(Termination) { terminated = true })

	hot.Push(1)
	hot.Terminate(TermCompleted)
	drain(t, disp)
	require.False(t, terminated)

	time.Sleep(30 * time.Millisecond)
	drain(t, disp)

	require.Equal(t, []int{1}, got)
	require.True(t, terminated)
}
