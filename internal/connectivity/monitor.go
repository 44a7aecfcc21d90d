// Package connectivity tracks the device's online/offline state. The host
// application pushes platform network-change notifications into the monitor;
// registered callbacks fire exactly once per offline-to-online edge.
package connectivity

import (
	"sync"

	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
)

// Monitor holds the current connectivity state.
type Monitor struct {
	mu        sync.RWMutex
	online    bool
	callbacks []func()
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// IsOnline reports the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline records a state change pushed by the host platform. Callbacks
// run only on an offline-to-online transition, each on its own goroutine so
// the platform notification path never blocks on them.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	callbacks := m.callbacks
	m.mu.Unlock()

	if wasOnline == online {
		return
	}

	logging.Info("connectivity changed", map[string]interface{}{
		"was_online": wasOnline,
		"is_online":  online,
	})

	if !wasOnline && online {
		for _, cb := range callbacks {
			go cb()
		}
	}
}

// OnTransitionToOnline registers a callback invoked once per transition to
// online. Registration never fires the callback immediately, even when the
// monitor is already online; callers needing the current state use IsOnline.
func (m *Monitor) OnTransitionToOnline(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}
