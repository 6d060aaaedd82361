// Package battery models the launcher battery: a fixed set of slots consumed
// by firing and reloaded one at a time by a background worker.
package battery

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomz197/flak/internal/clock"
)

// Battery is a fixed-length set of launcher slots guarded by one mutex and
// one condition variable. The slot count never changes after New.
type Battery struct {
	mu      sync.Mutex
	notFull *sync.Cond // Signalled when a slot may need reloading, or on stop
	slots   []bool     // true = loaded
	delay   time.Duration
	clock   clock.Clock
	stopped bool
	done    chan struct{}
	once    sync.Once

	// OnLoad, when set, is called after a slot is reloaded. It runs without
	// the battery lock held.
	OnLoad func(slot int)
}

// New creates a battery of k loaded slots that reloads one slot per delay.
func New(k int, delay time.Duration, clk clock.Clock) *Battery {
	if k <= 0 {
		panic(fmt.Sprintf("battery: slot count must be positive, got %d", k))
	}
	if clk == nil {
		clk = clock.New()
	}
	b := &Battery{
		slots: make([]bool, k),
		delay: delay,
		clock: clk,
		done:  make(chan struct{}),
	}
	b.notFull = sync.NewCond(&b.mu)
	for i := range b.slots {
		b.slots[i] = true
	}
	return b
}

// TryConsume empties the lowest-index loaded slot and returns its index.
// It never blocks; ok is false when every slot is empty.
func (b *Battery) TryConsume() (slot int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, loaded := range b.slots {
		if loaded {
			b.consumeLocked(i)
			// The freed slot is a reload candidate right away.
			b.notFull.Signal()
			return i, true
		}
	}
	return -1, false
}

func (b *Battery) consumeLocked(i int) {
	if !b.slots[i] {
		panic(fmt.Sprintf("battery: slot %d consumed while already empty", i))
	}
	b.slots[i] = false
}

// Notify wakes the refill worker if it is waiting. Spurious notifications
// are harmless: the worker re-checks the slots after every wake.
func (b *Battery) Notify() {
	b.mu.Lock()
	b.notFull.Signal()
	b.mu.Unlock()
}

// Stop makes RunRefill return, waking it if blocked or sleeping.
func (b *Battery) Stop() {
	b.once.Do(func() {
		b.mu.Lock()
		b.stopped = true
		close(b.done)
		b.notFull.Broadcast()
		b.mu.Unlock()
	})
}

// RunRefill is the refill worker. It reloads empty slots in index order, one
// per delay, and blocks while every slot is loaded. Returns after Stop.
func (b *Battery) RunRefill() {
	for {
		b.mu.Lock()
		for !b.stopped && b.fullLocked() {
			b.notFull.Wait()
		}
		if b.stopped {
			b.mu.Unlock()
			return
		}

		for i := range b.slots {
			if b.slots[i] {
				continue
			}

			b.mu.Unlock()
			slept := b.clock.Sleep(b.delay, b.done)
			b.mu.Lock()

			if !slept || b.stopped {
				b.mu.Unlock()
				return
			}
			// Only this worker loads slots, but a stale read here must never
			// double-load.
			if b.slots[i] {
				continue
			}
			b.slots[i] = true
			b.notFull.Signal()

			if b.OnLoad != nil {
				b.mu.Unlock()
				b.OnLoad(i)
				b.mu.Lock()
				if b.stopped {
					b.mu.Unlock()
					return
				}
			}
		}
		b.mu.Unlock()
	}
}

func (b *Battery) fullLocked() bool {
	for _, loaded := range b.slots {
		if !loaded {
			return false
		}
	}
	return true
}

// Len returns the fixed slot count.
func (b *Battery) Len() int {
	return len(b.slots)
}

// Loaded returns the number of loaded slots.
func (b *Battery) Loaded() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, loaded := range b.slots {
		if loaded {
			n++
		}
	}
	return n
}

// Slots returns a copy of the slot states.
func (b *Battery) Slots() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bool, len(b.slots))
	copy(out, b.slots)
	return out
}
