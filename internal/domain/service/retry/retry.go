// Package retry expresses every wait on the target surface as a bounded poll.
package retry

import (
	"context"
	"log/slog"
	"time"

	"automarket/pkg/contextx"
	"automarket/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Predicate is checked once per attempt. An error counts as a failed attempt.
type Predicate func(ctx context.Context) (bool, error)

type Policy struct {
	Attempts int
	Interval time.Duration
}

//nolint:gochecknoglobals
var (
	SurfaceFast = Policy{Attempts: 30, Interval: 60 * time.Millisecond}
	SurfaceSlow = Policy{Attempts: 30, Interval: 100 * time.Millisecond}
	AgentSelect = Policy{Attempts: 100, Interval: 100 * time.Millisecond}
	Dialog      = Policy{Attempts: 20, Interval: 100 * time.Millisecond}
	Menu        = Policy{Attempts: 10, Interval: 100 * time.Millisecond}
)

// Ceiling is the longest time the policy can wait, pauses excluded.
func (p Policy) Ceiling() time.Duration {
	return time.Duration(max(p.Attempts-1, 0)) * p.Interval
}

// PollUntilReady calls predicate up to Attempts times with Interval between
// calls and reports whether it ever returned true. It returns false as soon
// as ctx is done. While the pause gate carried by ctx is closed the poll
// blocks without spending attempts.
func (p Policy) PollUntilReady(ctx context.Context, predicate Predicate) bool {
	gate := contextx.PauseGateFromContext(ctx)

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := gate.Wait(ctx); err != nil {
			return false
		}

		ok, err := predicate(ctx)
		if err != nil {
			logger(ctx).Debug("poll attempt failed", slog.Int(logx.FieldAttempts, attempt), logx.Error(err))
		} else if ok {
			return true
		}

		if attempt == p.Attempts {
			break
		}

		if err := sleep(ctx, p.Interval); err != nil {
			return false
		}
	}

	return false
}

// Wait sleeps for d, then holds while the pause gate is closed.
func Wait(ctx context.Context, d time.Duration) error {
	if err := sleep(ctx, d); err != nil {
		return err
	}

	return contextx.PauseGateFromContext(ctx).Wait(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
