package rdapclient

import "time"

// Backoff returns how long to wait before attempt (1-based) is retried.
type Backoff func(attempt int) time.Duration

// NoBackoff retries immediately.
func NoBackoff() Backoff { return func(int) time.Duration { return 0 } }

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) Backoff {
	if d < 0 {
		d = 0
	}
	return func(int) time.Duration { return d }
}

// ExponentialBackoff multiplies start by factor for every retry, capped at
// max. A factor of 1 or less falls back to 1.5.
func ExponentialBackoff(start time.Duration, factor float64, max time.Duration) Backoff {
	if start <= 0 {
		start = 100 * time.Millisecond
	}
	if factor <= 1 {
		factor = 1.5
	}
	if max <= 0 {
		max = 2 * time.Second
	}
	return func(attempt int) time.Duration {
		d := float64(start)
		for i := 1; i < attempt; i++ {
			d *= factor
		}
		if d > float64(max) {
			d = float64(max)
		}
		return time.Duration(d)
	}
}
