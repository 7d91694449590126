package planner

import (
	"context"
	"time"
)

// Clock supplies the current time for deadline checks.
type Clock interface {
	Now() time.Time
}

// Sleeper waits between attempts. Sleep returns early with ctx.Err() when
// the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
