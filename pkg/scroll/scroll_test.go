package scroll

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstObservationNeverFires(t *testing.T) {
	var o Observer
	require.False(t, o.Observe(800, true), "no direction known yet")
}

func TestFiresOnDownwardEntry(t *testing.T) {
	var o Observer
	o.Observe(900, false)
	require.True(t, o.Observe(600, true), "sentinel entered viewport while scrolling down")
}

func TestUpwardEntryDoesNotFire(t *testing.T) {
	var o Observer
	o.Observe(-200, false) // sentinel above the viewport
	require.False(t, o.Observe(100, true), "re-entry while scrolling up must not paginate")
}

func TestNoEdgeWhileStayingVisible(t *testing.T) {
	var o Observer
	o.Observe(900, false)
	require.True(t, o.Observe(600, true))
	require.False(t, o.Observe(400, true), "still visible, no new edge")
	require.False(t, o.Observe(200, true))
}

func TestRefiresAfterLeavingViewport(t *testing.T) {
	var o Observer
	o.Observe(900, false)
	require.True(t, o.Observe(600, true))
	require.False(t, o.Observe(900, false), "pushed below viewport by appended results")
	require.True(t, o.Observe(500, true), "next downward entry fires again")
}

func TestEqualOffsetIsNotDownward(t *testing.T) {
	var o Observer
	o.Observe(700, false)
	require.False(t, o.Observe(700, true))
}

func TestResetForgetsDirection(t *testing.T) {
	var o Observer
	o.Observe(900, false)
	o.Reset()
	require.False(t, o.Observe(600, true), "first observation after reset only primes")
}
