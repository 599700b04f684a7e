package pausex_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"automarket/pkg/pausex"
)

func TestGateOpenByDefault(t *testing.T) {
	rq := require.New(t)

	g := pausex.New()

	rq.False(g.Paused())
	rq.NoError(g.Wait(context.Background()))
}

func TestGatePauseResume(t *testing.T) {
	rq := require.New(t)

	g := pausex.New()
	rq.True(g.Pause())
	rq.False(g.Pause())
	rq.True(g.Paused())

	released := make(chan error, 1)

	go func() {
		released <- g.Wait(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("waiter released while paused")
	case <-time.After(50 * time.Millisecond):
	}

	rq.True(g.Resume())
	rq.False(g.Resume())

	select {
	case err := <-released:
		rq.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("waiter not released after resume")
	}
}

func TestGateWaitCancelled(t *testing.T) {
	rq := require.New(t)

	g := pausex.New()
	g.Pause()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	rq.ErrorIs(g.Wait(ctx), context.DeadlineExceeded)
}

func TestGateToggle(t *testing.T) {
	rq := require.New(t)

	g := pausex.New()

	rq.True(g.Toggle())
	rq.True(g.Paused())
	rq.False(g.Toggle())
	rq.False(g.Paused())
}

func TestGateToggleConcurrent(t *testing.T) {
	rq := require.New(t)

	const toggles = 100

	g := pausex.New()

	var (
		wg     sync.WaitGroup
		paused atomic.Int32
	)

	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Toggle() {
				paused.Add(1)
			}
		}()
	}
	wg.Wait()

	rq.EqualValues(toggles/2, paused.Load())
	rq.False(g.Paused())
	rq.NoError(g.Wait(context.Background()))
}
