package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstNTerminatesAfterNValues(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	first := FirstN(hot.Stream(), 2, TermCancelled)

	var got []int
	var term Termination
	On(first, func(v int) { got = append(got, v) })
	first.OnTerminate(func(r Termination) { term = r })

	for _, v := range []int{1, 2, 3} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{1, 2}, got)
	require.Equal(t, Cancelled, term.Tag)
}

func TestLastNBuffersTailUntilTermination(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	last := LastN(hot.Stream(), 2, true)

	var got []int
	On(last, func(v int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3, 4} {
		hot.Push(v)
	}
	require.Empty(t, got)

	hot.Terminate(TermCompleted)
	drain(t, disp)

	require.Equal(t, []int{3, 4}, got)
}

func TestLastNDropsUnderfilledBufferWhenNotPartial(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	last := LastN(hot.Stream(), 3, false)

	var got []int
	On(last, func(v int) { got = append(got, v) })

	hot.Push(1)
	hot.Terminate(TermCompleted)
	drain(t, disp)

	require.Empty(t, got)
}

func TestReduceEmitsFinalAccumulatorOnTermination(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	reduced := Reduce(hot.Stream(), 0, func(acc, next int) int { return acc + next })

	var got []int
	On(reduced, func(v int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3} {
		hot.Push(v)
	}
	hot.Terminate(TermCompleted)
	drain(t, disp)

	require.Equal(t, []int{6}, got)
}

func TestDoWhileStopsOnFirstFalsePredicate(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	gated := DoWhile(hot.Stream(), func(v int) bool { return v < 3 }, TermCancelled)

	var got []int
	var term Termination
	On(gated, func(v int) { got = append(got, v) })
	gated.OnTerminate(func(r Termination) { term = r })

	for _, v := range []int{1, 2, 3, 4} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{1, 2, 3}, got)
	require.Equal(t, Cancelled, term.Tag)
}

func TestSkipDropsLeadingValues(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	skipped := Skip(hot.Stream(), 2)

	var got []int
	On(skipped, func(v int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3, 4} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{3, 4}, got)
}

func TestTakeNTerminatesAfterNValues(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	taken := TakeN(hot.Stream(), 2, TermCancelled)

	var got []int
	On(taken, func(v int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{1, 2}, got)
}

func TestStartWithEmitsPrefixBeforeFirstValue(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	prefixed := StartWith(hot.Stream(), []int{-1, 0})

	var got []int
	On(prefixed, func(v int) { got = append(got, v) })

	hot.Push(1)
	hot.Push(2)
	drain(t, disp)

	require.Equal(t, []int{-1, 0, 1, 2}, got)
}

func TestConcatEmitsTailOnTermination(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	tailed := Concat(hot.Stream(), []int{9, 10})

	var got []int
	On(tailed, func(v int) { got = append(got, v) })

	hot.Push(1)
	hot.Terminate(TermCompleted)
	drain(t, disp)

	require.Equal(t, []int{1, 9, 10}, got)
}

func TestDefaultValueOnlyFiresIfStreamNeverEmitted(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	defaulted := DefaultValue(hot.Stream(), -1)

	var got []int
	On(defaulted, func(v int) { got = append(got, v) })

	hot.Terminate(TermCompleted)
	drain(t, disp)

	require.Equal(t, []int{-1}, got)
}

func TestStrideEmitsEveryNthValue(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	strided := Stride(hot.Stream(), 3)

	var got []int
	On(strided, func(v int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3, 4, 5, 6} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{3, 6}, got)
}
