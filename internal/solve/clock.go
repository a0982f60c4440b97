package solve

import (
	"context"
	"time"

	"github.com/arloliu/seatplan/types"
)

// RealClock is the wall clock.
type RealClock struct{}

var _ types.Clock = RealClock{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep waits for d or until ctx is done. The timer is released on both paths.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
