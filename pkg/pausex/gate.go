// Package pausex provides a pause switch that blocked goroutines can wait on
// without spinning.
package pausex

import (
	"context"
	"sync"
)

// Gate is open by default. While closed, Wait blocks until the gate reopens
// or the context is done. The zero value is not usable, use New.
type Gate struct {
	mu     sync.Mutex
	open   chan struct{}
	paused bool
}

func New() *Gate {
	open := make(chan struct{})
	close(open)

	return &Gate{open: open}
}

// Pause closes the gate. It reports false if the gate was already closed.
func (g *Gate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return false
	}

	g.paused = true
	g.open = make(chan struct{})

	return true
}

// Resume reopens the gate and releases every waiter. It reports false if the
// gate was not paused.
func (g *Gate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.paused {
		return false
	}

	g.paused = false
	close(g.open)

	return true
}

// Toggle flips the gate and returns the new paused state.
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		g.paused = false
		close(g.open)

		return false
	}

	g.paused = true
	g.open = make(chan struct{})

	return true
}

func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.paused
}

// Wait returns nil immediately when the gate is open, otherwise it blocks
// until Resume or until ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return ctx.Err()
	}

	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
