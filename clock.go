package framekit

import (
	"sync"
	"time"
)

// TimeSource returns the current instant. time.Now is the default.
type TimeSource func() time.Time

// Clock is a monotonic elapsed-time source, independent of the rate at which frames are drawn.
type Clock struct {
	source TimeSource
	start  time.Time
	last   float64
}

// NewClock creates a new Clock, started at the current time.
func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource creates a new Clock reading time from the provided TimeSource.
func NewClockWithSource(source TimeSource) *Clock {
	if source == nil {
		source = time.Now
	}
	clock := &Clock{source: source}
	clock.Reset()
	return clock
}

// Elapsed returns the time in seconds since the Clock was last reset. The returned value never decreases
// between resets, even if the TimeSource steps backwards.
func (clock *Clock) Elapsed() float64 {
	elapsed := clock.source().Sub(clock.start).Seconds()
	if elapsed < clock.last {
		return clock.last
	}
	clock.last = elapsed
	return elapsed
}

// Reset restarts the Clock from zero.
func (clock *Clock) Reset() {
	clock.start = clock.source()
	clock.last = 0
}

// ManualTimeSource is a TimeSource that only moves when told to; it's useful for replays and tests.
type ManualTimeSource struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualTimeSource returns a ManualTimeSource starting at the given instant.
func NewManualTimeSource(start time.Time) *ManualTimeSource {
	return &ManualTimeSource{now: start}
}

// Now returns the current manual instant.
func (mts *ManualTimeSource) Now() time.Time {
	mts.mu.Lock()
	defer mts.mu.Unlock()
	return mts.now
}

// Advance moves the manual instant forward by d.
func (mts *ManualTimeSource) Advance(d time.Duration) {
	mts.mu.Lock()
	mts.now = mts.now.Add(d)
	mts.mu.Unlock()
}

// Set moves the manual instant to t.
func (mts *ManualTimeSource) Set(t time.Time) {
	mts.mu.Lock()
	mts.now = t
	mts.mu.Unlock()
}
