package salli

import (
	"math/rand/v2"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Sleeper blocks the calling goroutine. Rate-limit delays go through it so
// tests can record them instead of waiting.
type Sleeper interface {
	Sleep(d time.Duration)
}

// RealSleeper sleeps for real.
type RealSleeper struct{}

func (RealSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Jitter draws a duration uniformly from [min, max].
type Jitter interface {
	Between(min, max time.Duration) time.Duration
}

// RandJitter draws from math/rand.
type RandJitter struct{}

func (RandJitter) Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)+1))
}

// Timestamp normalizes t for storage. Every ledger timestamp is UTC with
// whole seconds so stored values compare chronologically as text.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
