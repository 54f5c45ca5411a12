package lesson

import (
	"sync"
	"time"
)

// Scheduler runs f once after d. Callbacks are fire-and-forget; stale ones
// are filtered by the engines' epoch checks rather than cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on real timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ManualScheduler queues callbacks until Advance is called. It is meant for
// tests and tools that need to step through timed transitions.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []manualTimer
}

type manualTimer struct {
	at time.Duration
	f  func()
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	m.pending = append(m.pending, manualTimer{at: m.now + d, f: f})
	m.mu.Unlock()
}

// Pending reports how many callbacks have not fired yet.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d and fires every callback that became
// due, in schedule order. Callbacks scheduled while firing are picked up if
// they also fall within the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		idx := -1
		for i, t := range m.pending {
			if t.at <= target && (idx == -1 || t.at < m.pending[idx].at) {
				idx = i
			}
		}
		if idx == -1 {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.pending[idx]
		m.pending = append(m.pending[:idx], m.pending[idx+1:]...)
		m.now = t.at
		m.mu.Unlock()

		t.f()
	}
}

// Flush fires everything that is pending, however far in the future.
func (m *ManualScheduler) Flush() {
	m.Advance(24 * time.Hour)
}
