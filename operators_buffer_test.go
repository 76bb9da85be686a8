package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowSizeEmitsSlidingWindowWithPartial(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	windowed := WindowSize(hot.Stream(), 2, true)

	var got [][]int
	On(windowed, func(v []int) { got = append(got, v) })

	for _, v := range []int{1, 2, 3} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, [][]int{{1}, {1, 2}, {2, 3}}, got)
}

func TestWindowSizeSuppressesUnderfilledWindowWithoutPartial(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	windowed := WindowSize(hot.Stream(), 2, false)

	var got [][]int
	On(windowed, func(v []int) { got = append(got, v) })

	hot.Push(1)
	drain(t, disp)
	require.Empty(t, got)

	hot.Push(2)
	drain(t, disp)
	require.Equal(t, [][]int{{1, 2}}, got)
}
