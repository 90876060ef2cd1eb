package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow is a rolling counter over a fixed time span, backed by a
// fixed number of timestamped buckets (span/granularity of them). Buckets
// older than the span are cleared on the way through Add and Sum, so the
// counter never reads stale traffic.
type SlidingWindow struct {
	window     time.Duration
	bucketSize time.Duration
	buckets    []bucket
	head       int
	mu         sync.Mutex
}

type bucket struct {
	timestamp time.Time
	value     int64
}

// NewSlidingWindow creates a window of the given span and granularity.
// A one-minute window with one-second buckets uses 60 buckets.
func NewSlidingWindow(window, bucketSize time.Duration) *SlidingWindow {
	n := int(window / bucketSize)
	if n == 0 {
		n = 1
	}
	return &SlidingWindow{
		window:     window,
		bucketSize: bucketSize,
		buckets:    make([]bucket, n),
	}
}

// Add increments the counter in the current time bucket.
func (sw *SlidingWindow) Add(value int64) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.pruneLocked(now)
	sw.bucketForLocked(now).value += value
}

// Sum returns the total across all live buckets.
func (sw *SlidingWindow) Sum() int64 {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.pruneLocked(time.Now())

	var sum int64
	for i := range sw.buckets {
		if !sw.buckets[i].timestamp.IsZero() {
			sum += sw.buckets[i].value
		}
	}
	return sum
}

// TimeUntilExpiry returns how long until the oldest live bucket falls out
// of the window, which is the earliest a limited caller can usefully retry.
func (sw *SlidingWindow) TimeUntilExpiry() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.pruneLocked(now)

	var oldest time.Time
	for i := range sw.buckets {
		ts := sw.buckets[i].timestamp
		if ts.IsZero() {
			continue
		}
		if oldest.IsZero() || ts.Before(oldest) {
			oldest = ts
		}
	}
	if oldest.IsZero() {
		return 0
	}

	remaining := oldest.Add(sw.window).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears all buckets.
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	for i := range sw.buckets {
		sw.buckets[i] = bucket{}
	}
	sw.head = 0
}

// pruneLocked clears buckets older than the window. Caller holds the lock.
func (sw *SlidingWindow) pruneLocked(now time.Time) {
	cutoff := now.Add(-sw.window)
	for i := range sw.buckets {
		if !sw.buckets[i].timestamp.IsZero() && sw.buckets[i].timestamp.Before(cutoff) {
			sw.buckets[i] = bucket{}
		}
	}
}

// bucketForLocked finds or creates the bucket for the current time.
// Caller holds the lock.
func (sw *SlidingWindow) bucketForLocked(now time.Time) *bucket {
	bucketTime := now.Truncate(sw.bucketSize)

	if sw.buckets[sw.head].timestamp.Equal(bucketTime) {
		return &sw.buckets[sw.head]
	}
	for i := range sw.buckets {
		if sw.buckets[i].timestamp.Equal(bucketTime) {
			return &sw.buckets[i]
		}
	}

	// Reuse an empty slot, or evict the oldest.
	target := -1
	for i := range sw.buckets {
		if sw.buckets[i].timestamp.IsZero() {
			target = i
			break
		}
	}
	if target == -1 {
		target = 0
		for i := 1; i < len(sw.buckets); i++ {
			if sw.buckets[i].timestamp.Before(sw.buckets[target].timestamp) {
				target = i
			}
		}
	}

	sw.buckets[target] = bucket{timestamp: bucketTime}
	sw.head = target
	return &sw.buckets[target]
}
