package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMaxRunningExtremum(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	mins := Min(hot.Stream())
	maxes := Max(hot.Stream())

	var gotMin, gotMax []int
	On(mins, func(v int) { gotMin = append(gotMin, v) })
	On(maxes, func(v int) { gotMax = append(gotMax, v) })

	for _, v := range []int{5, 3, 8, 1, 9} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{5, 3, 1}, gotMin)
	require.Equal(t, []int{5, 8, 9}, gotMax)
}

func TestSumAndAverageRunningTotals(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	sums := Sum(hot.Stream())
	averages := Average(hot.Stream())

	var gotSum []int
	var gotAvg []float64
	On(sums, func(v int) { gotSum = append(gotSum, v) })
	On(averages, func(v float64) { gotAvg = append(gotAvg, v) })

	for _, v := range []int{1, 2, 3} {
		hot.Push(v)
	}
	drain(t, disp)

	require.Equal(t, []int{1, 3, 6}, gotSum)
	require.Equal(t, []float64{1, 1.5, 2}, gotAvg)
}

func TestStampPairsEachValueWithDerivedField(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	stamped := Stamp(hot.Stream(), func(v int) int { return v * v })

	var got []Pair[int, int]
	On(stamped, func(p Pair[int, int]) { got = append(got, p) })

	hot.Push(3)
	hot.Push(4)
	drain(t, disp)

	require.Equal(t, []Pair[int, int]{{First: 3, Second: 9}, {First: 4, Second: 16}}, got)
}

func TestCountStampCombinesValueAndRunningCount(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[string](disp, clk, NoReplay)
	stamped := CountStamp(hot.Stream())

	var got []Pair[string, int]
	On(stamped, func(p Pair[string, int]) { got = append(got, p) })

	hot.Push("a")
	hot.Push("b")
	drain(t, disp)

	require.Equal(t, []Pair[string, int]{{First: "a", Second: 1}, {First: "b", Second: 2}}, got)
}
