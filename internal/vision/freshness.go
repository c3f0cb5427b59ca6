package vision

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const DefaultStaleAfter = 10 * time.Second

// FreshnessTracker derives idle/fresh/stale from the time of the last
// accepted insight. The timer only drives OnChange notifications; Status is
// always computed from the clock.
type FreshnessTracker struct {
	clock      clock.Clock
	staleAfter time.Duration

	mu       sync.Mutex
	active   bool
	touched  time.Time
	timer    *clock.Timer
	gen      uint64
	onChange func(Freshness)
}

func NewFreshnessTracker(clk clock.Clock, staleAfter time.Duration) *FreshnessTracker {
	if clk == nil {
		clk = clock.New()
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &FreshnessTracker{
		clock:      clk,
		staleAfter: staleAfter,
	}
}

func (f *FreshnessTracker) OnChange(fn func(Freshness)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// Touch marks an accepted insight: fresh now, stale after the timeout unless
// touched again first.
func (f *FreshnessTracker) Touch() {
	f.mu.Lock()
	prev := f.statusLocked()
	f.stopTimerLocked()
	f.active = true
	f.touched = f.clock.Now()
	f.gen++
	gen := f.gen
	f.timer = f.clock.AfterFunc(f.staleAfter, func() { f.expire(gen) })
	notify := f.onChange
	f.mu.Unlock()

	if notify != nil && prev != FreshnessFresh {
		notify(FreshnessFresh)
	}
}

// Reset cancels any pending timer and returns to idle.
func (f *FreshnessTracker) Reset() {
	f.mu.Lock()
	prev := f.statusLocked()
	f.stopTimerLocked()
	f.active = false
	f.touched = time.Time{}
	f.gen++
	notify := f.onChange
	f.mu.Unlock()

	if notify != nil && prev != FreshnessIdle {
		notify(FreshnessIdle)
	}
}

func (f *FreshnessTracker) Status() Freshness {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusLocked()
}

func (f *FreshnessTracker) LastTouched() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

func (f *FreshnessTracker) statusLocked() Freshness {
	if !f.active {
		return FreshnessIdle
	}
	if f.clock.Since(f.touched) >= f.staleAfter {
		return FreshnessStale
	}
	return FreshnessFresh
}

func (f *FreshnessTracker) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *FreshnessTracker) expire(gen uint64) {
	f.mu.Lock()
	if gen != f.gen || !f.active {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	notify := f.onChange
	f.mu.Unlock()

	if notify != nil {
		notify(FreshnessStale)
	}
}
