package reactor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotPersistsAcrossLastChildTermination(t *testing.T) {
	disp, clk := newTestGraph(t)

	hot := NewHot[int](disp, clk, NoReplay)
	child := MapAll(hot.Stream(), func(v int) int { return v })
	child.Terminate(TermCompleted)
	drain(t, disp)

	require.NotEqual(t, StateTerminated, hot.Stream().State())

	var got []int
	On(hot.Stream(), func(v int) { got = append(got, v) })
	hot.Push(9)
	drain(t, disp)

	require.Equal(t, []int{9}, got)
}

func TestHotInputIsHotAlias(t *testing.T) {
	disp, clk := newTestGraph(t)

	hi := NewHotInput[string](disp, clk, NoReplay)
	var got []string
	On(hi.Stream(), func(v string) { got = append(got, v) })

	hi.Push("a")
	drain(t, disp)

	require.Equal(t, []string{"a"}, got)
}
