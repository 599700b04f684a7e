package retry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain/service/retry"
	"automarket/pkg/contextx"
	"automarket/pkg/pausex"
)

func counting(calls *atomic.Int32, succeedOn int32, err error) retry.Predicate {
	return func(context.Context) (bool, error) {
		n := calls.Add(1)
		if n == succeedOn {
			return true, nil
		}
		return false, err
	}
}

func TestPolicy_PollUntilReady(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		succeedOn int32
		err       error
		want      bool
		wantCalls int32
	}{
		{name: "first attempt", attempts: 5, succeedOn: 1, want: true, wantCalls: 1},
		{name: "third attempt", attempts: 5, succeedOn: 3, want: true, wantCalls: 3},
		{name: "exhausted", attempts: 4, succeedOn: -1, want: false, wantCalls: 4},
		{name: "errors count as attempts", attempts: 3, succeedOn: 3, err: errors.New("surface gone"), want: true, wantCalls: 3},
		{name: "zero attempts", attempts: 0, succeedOn: 1, want: false, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			var calls atomic.Int32
			policy := retry.Policy{Attempts: tt.attempts, Interval: time.Millisecond}

			rq.Equal(tt.want, policy.PollUntilReady(context.Background(), counting(&calls, tt.succeedOn, tt.err)))
			rq.Equal(tt.wantCalls, calls.Load())
		})
	}
}

func TestPolicy_Cancelled(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	predicate := func(context.Context) (bool, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return false, nil
	}

	policy := retry.Policy{Attempts: 100, Interval: time.Millisecond}
	rq.False(policy.PollUntilReady(ctx, predicate))
	rq.Equal(int32(2), calls.Load())
}

func TestPolicy_PauseDoesNotSpendAttempts(t *testing.T) {
	rq := require.New(t)

	gate := pausex.New()
	gate.Pause()
	ctx := contextx.WithPauseGate(context.Background(), gate)

	var calls atomic.Int32
	done := make(chan bool)

	go func() {
		done <- retry.Policy{Attempts: 1, Interval: time.Millisecond}.PollUntilReady(ctx, counting(&calls, 1, nil))
	}()

	time.Sleep(30 * time.Millisecond)
	rq.Equal(int32(0), calls.Load())

	gate.Resume()

	select {
	case ok := <-done:
		rq.True(ok)
	case <-time.After(time.Second):
		t.Fatal("poll did not resume")
	}
	rq.Equal(int32(1), calls.Load())
}

func TestWait(t *testing.T) {
	rq := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	rq.NoError(retry.Wait(ctx, time.Millisecond))

	cancel()
	rq.ErrorIs(retry.Wait(ctx, time.Hour), context.Canceled)
}

func TestPolicy_Ceiling(t *testing.T) {
	require.Equal(t, 1900*time.Millisecond, retry.Dialog.Ceiling())
	require.Equal(t, time.Duration(0), retry.Policy{}.Ceiling())
}
