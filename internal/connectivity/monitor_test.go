package connectivity

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOnline(t *testing.T) {
	assert.True(t, NewMonitor(true).IsOnline())
	assert.False(t, NewMonitor(false).IsOnline())
}

func TestSetOnline_TracksState(t *testing.T) {
	m := NewMonitor(false)

	m.SetOnline(true)
	assert.True(t, m.IsOnline())

	m.SetOnline(false)
	assert.False(t, m.IsOnline())
}

func TestOnTransitionToOnline_FiresOncePerEdge(t *testing.T) {
	m := NewMonitor(false)

	var fired atomic.Int32
	m.OnTransitionToOnline(func() { fired.Add(1) })

	m.SetOnline(true)
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Same state again: no new edge, no new firing.
	m.SetOnline(true)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	// A full offline/online cycle fires once more.
	m.SetOnline(false)
	m.SetOnline(true)
	assert.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestOnTransitionToOnline_NoFireOnRegistration(t *testing.T) {
	m := NewMonitor(true)

	var fired atomic.Int32
	m.OnTransitionToOnline(func() { fired.Add(1) })

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestOnTransitionToOnline_NoFireGoingOffline(t *testing.T) {
	m := NewMonitor(true)

	var fired atomic.Int32
	m.OnTransitionToOnline(func() { fired.Add(1) })

	m.SetOnline(false)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestOnTransitionToOnline_MultipleCallbacks(t *testing.T) {
	m := NewMonitor(false)

	var first, second atomic.Int32
	m.OnTransitionToOnline(func() { first.Add(1) })
	m.OnTransitionToOnline(func() { second.Add(1) })

	m.SetOnline(true)
	assert.Eventually(t, func() bool {
		return first.Load() == 1 && second.Load() == 1
	}, time.Second, 5*time.Millisecond)
}
