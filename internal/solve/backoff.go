package solve

import (
	"time"
)

// Policy controls polling and the timeout of a job.
type Policy struct {
	// InitialDelay is the first delay between polls and the lower bound of every delay.
	InitialDelay time.Duration

	// MaxDelay caps the delay between polls.
	MaxDelay time.Duration

	// Multiplier grows the delay after each non-terminal poll.
	Multiplier float64

	// Grace is added to the job budget before the job times out.
	Grace time.Duration
}

// DefaultPolicy returns the default polling policy.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     4 * time.Second,
		Multiplier:   1.5,
		Grace:        5 * time.Second,
	}
}

// nextDelay computes the delay before the next poll.
//
// The delay is prev*mult, bounded below by initial and above by maxDelay, so it
// never shrinks between polls:
//
//	next = min(maxDelay, max(initial, prev*mult))
//
// Behavior:
//   - initial <= 0 falls back to 50ms
//   - mult < 1.0 falls back to 1.0 (no growth)
//   - maxDelay <= 0 means no cap; maxDelay < initial returns maxDelay
func nextDelay(prev, initial time.Duration, mult float64, maxDelay time.Duration) time.Duration {
	if initial <= 0 {
		initial = 50 * time.Millisecond
	}
	if mult < 1.0 {
		mult = 1.0
	}

	next := max(initial, time.Duration(float64(prev)*mult))
	if maxDelay > 0 && next > maxDelay {
		return maxDelay
	}

	return next
}
