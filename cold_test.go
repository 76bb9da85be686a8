package reactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftpursuit/reactor/internal/idgen"
)

func echoTask(delta int) ColdTask[int, int] {
	return func(ctx context.Context, req int, complete func(Result[int])) {
		complete(Success(req + delta))
	}
}

// TestColdBranchNoCrosstalk covers spec.md §8 scenario 6: two branches
// off the same Cold node each receive only their own responses when
// the node is not shared.
func TestColdBranchNoCrosstalk(t *testing.T) {
	disp, clk := newTestGraph(t)

	cold := NewCold[int, int](disp, clk, idgen.Default, 0, echoTask(1))
	branchA := cold.Branch()
	branchB := cold.Branch()

	var gotA, gotB []int
	On(branchA.Values(), func(v int) { gotA = append(gotA, v) })
	On(branchB.Values(), func(v int) { gotB = append(gotB, v) })

	branchA.Request(context.Background(), 3)
	drain(t, disp)

	require.Equal(t, []int{4}, gotA)
	require.Empty(t, gotB)
}

// TestColdShareSharedBroadcastsToAllBranches covers spec.md §4.3's
// share(true): once shared, a response is observed by every branch
// regardless of which branch issued the request.
func TestColdShareSharedBroadcastsToAllBranches(t *testing.T) {
	disp, clk := newTestGraph(t)

	cold := NewCold[int, int](disp, clk, idgen.Default, 0, echoTask(10))
	cold.Share(ShareShared)
	branchA := cold.Branch()
	branchB := cold.Branch()

	var gotA, gotB []int
	On(branchA.Values(), func(v int) { gotA = append(gotA, v) })
	On(branchB.Values(), func(v int) { gotB = append(gotB, v) })

	branchA.Request(context.Background(), 5)
	drain(t, disp)

	require.Equal(t, []int{15}, gotA)
	require.Equal(t, []int{15}, gotB)
}

// TestColdRequestTimeoutDropsKey covers SPEC_FULL.md §4.3's
// request-timeout watchdog: a task that never completes still lets the
// node drop the pending key once requestTimeout elapses.
func TestColdRequestTimeoutDropsKey(t *testing.T) {
	disp, clk := newTestGraph(t)

	neverTask := func(ctx context.Context, req int, complete func(Result[int])) {}
	cold := NewCold[int, int](disp, clk, idgen.Default, 20*time.Millisecond, ColdTask[int, int](neverTask))
	branch := cold.Branch()

	var got []int
	On(branch.Values(), func(v int) { got = append(got, v) })

	branch.Request(context.Background(), 1)
	time.Sleep(50 * time.Millisecond)
	drain(t, disp)

	require.Empty(t, got)
}

// TestColdRequestCancelledByContext covers spec.md §9's handling of a
// request whose context is cancelled before the task completes: the
// pending key is dropped and no response is observed even if the task
// later calls complete.
func TestColdRequestCancelledByContext(t *testing.T) {
	disp, clk := newTestGraph(t)

	release := make(chan struct{})
	task := func(ctx context.Context, req int, complete func(Result[int])) {
		<-release
		complete(Success(req))
	}
	cold := NewCold[int, int](disp, clk, idgen.Default, 0, task)
	branch := cold.Branch()

	var got []int
	On(branch.Values(), func(v int) { got = append(got, v) })

	ctx, cancel := context.WithCancel(context.Background())
	branch.Request(ctx, 7)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)
	drain(t, disp)

	require.Empty(t, got)
}

// TestMappedRequestStreamForwardsAdaptedRequest covers spec.md §4.3's
// newMappedRequestStream(f: U→Request): requesting a string forwards
// its length (via f) to the wrapped node's task, and the adapted
// view's forked branch never observes another branch's response.
func TestMappedRequestStreamForwardsAdaptedRequest(t *testing.T) {
	disp, clk := newTestGraph(t)

	cold := NewCold[int, int](disp, clk, idgen.Default, 0, echoTask(0))
	mapped := NewMappedRequestStream[string](cold, func(s string) int { return len(s) })
	otherBranch := cold.Branch()

	var got []int
	var gotOther []int
	On(mapped.Values(), func(v int) { got = append(got, v) })
	On(otherBranch.Values(), func(v int) { gotOther = append(gotOther, v) })

	mapped.Request(context.Background(), "hello")
	drain(t, disp)

	require.Equal(t, []int{5}, got)
	require.Empty(t, gotOther)
}
