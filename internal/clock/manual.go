package clock

import (
	"sync"
	"time"
)

// Manual is a controllable clock for tests. Sleepers block until Advance
// moves the current time past their deadline.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	waiters []*waiter
}

type waiter struct {
	until time.Time
	ch    chan struct{}
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the mocked time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep registers a sleeper and blocks until released by Advance or done.
func (m *Manual) Sleep(d time.Duration, done <-chan struct{}) bool {
	select {
	case <-done:
		return false
	default:
	}

	m.mu.Lock()
	m.sleeps = append(m.sleeps, d)
	if d <= 0 {
		m.mu.Unlock()
		return true
	}
	w := &waiter{until: m.now.Add(d), ch: make(chan struct{})}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	select {
	case <-w.ch:
		return true
	case <-done:
		m.remove(w)
		return false
	}
}

func (m *Manual) remove(target *waiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.waiters[:0]
	for _, w := range m.waiters {
		if w != target {
			kept = append(kept, w)
		}
	}
	m.waiters = kept
}

// Advance moves time forward and wakes every sleeper whose deadline passed.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	kept := m.waiters[:0]
	for _, w := range m.waiters {
		if !w.until.After(m.now) {
			close(w.ch)
			continue
		}
		kept = append(kept, w)
	}
	m.waiters = kept
}

// Waiters returns the number of goroutines currently blocked in Sleep.
func (m *Manual) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// Sleeps returns every duration passed to Sleep so far, in call order.
func (m *Manual) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

// WaitForWaiters polls until at least n sleepers are blocked or timeout
// elapses. It reports whether the count was reached.
func (m *Manual) WaitForWaiters(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.Waiters() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return m.Waiters() >= n
}
