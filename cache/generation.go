package cache

import (
	"context"
	"sync"
)

// Generation hands out tickets so that only the latest of several
// overlapping requests gets applied. Starting a new ticket cancels the
// context of the previous one.
type Generation struct {
	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
}

// Ticket identifies one request in a Generation
type Ticket struct {
	id  uint64
	gen *Generation
}

// Next starts a new ticket derived from parent and cancels the previous one
func (g *Generation) Next(parent context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	g.current++
	g.cancel = cancel

	return ctx, Ticket{id: g.current, gen: g}
}

// Stop cancels the outstanding ticket, if any
func (g *Generation) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.current++
}

// Current reports whether t is still the latest ticket
func (t Ticket) Current() bool {
	if t.gen == nil {
		return false
	}
	t.gen.mu.Lock()
	defer t.gen.mu.Unlock()
	return t.gen.current == t.id
}

// ID returns the ticket's sequence number
func (t Ticket) ID() uint64 {
	return t.id
}
