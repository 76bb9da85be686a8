package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZipPairsByArrivalIndex(t *testing.T) {
	disp, clk := newTestGraph(t)

	a := NewHot[int](disp, clk, NoReplay)
	b := NewHot[string](disp, clk, NoReplay)
	zipped := Zip[int, string](a.Stream(), b.Stream(), 0)

	var got []Pair[int, string]
	On(zipped, func(p Pair[int, string]) { got = append(got, p) })

	a.Push(1)
	a.Push(2)
	b.Push("x")
	drain(t, disp)

	require.Equal(t, []Pair[int, string]{{First: 1, Second: "x"}}, got)

	b.Push("y")
	drain(t, disp)

	require.Equal(t, []Pair[int, string]{{First: 1, Second: "x"}, {First: 2, Second: "y"}}, got)
}

func TestCombineLatestReusesMostRecentOtherSide(t *testing.T) {
	disp, clk := newTestGraph(t)

	a := NewHot[int](disp, clk, NoReplay)
	b := NewHot[string](disp, clk, NoReplay)
	combined := Combine[int, string](a.Stream(), b.Stream(), true)

	var got []Pair[int, string]
	On(combined, func(p Pair[int, string]) { got = append(got, p) })

	a.Push(1)
	drain(t, disp)
	require.Empty(t, got)

	b.Push("x")
	drain(t, disp)
	require.Equal(t, []Pair[int, string]{{First: 1, Second: "x"}}, got)

	a.Push(2)
	drain(t, disp)
	require.Equal(t, []Pair[int, string]{{First: 1, Second: "x"}, {First: 2, Second: "x"}}, got)
}

func TestTakeUntilSignalTerminatesOnFirstSignalValue(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	signal := NewHot[struct{}](disp, clk, NoReplay)
	taken := TakeUntilSignal(hot.Stream(), signal.Stream())

	var got []int
	var term Termination
	On(taken, func(v int) { got = append(got, v) })
	taken.OnTerminate(func(r Termination) { term = r })

	hot.Push(1)
	drain(t, disp)

	signal.Push(struct{}{})
	hot.Push(2)
	drain(t, disp)

	require.Equal(t, []int{1}, got)
	require.Equal(t, Cancelled, term.Tag)
}
