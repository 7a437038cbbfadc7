package scheduler

import (
	"context"
	"time"
)

// Pacer suspends between two sends. Tests substitute a Pacer that advances
// simulated time instead of sleeping.
type Pacer interface {
	Wait(ctx context.Context, d time.Duration) error
}

// TimerPacer waits on a real timer.
type TimerPacer struct{}

func (TimerPacer) Wait(ctx context.Context, d time.Duration) error {
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

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

func (f PacerFunc) Wait(ctx context.Context, d time.Duration) error { return f(ctx, d) }
