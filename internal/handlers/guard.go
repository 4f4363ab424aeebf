package handlers

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// RequestGuard allows at most one generation in flight per session.
// Generations of different sessions do not block each other.
type RequestGuard struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

func NewRequestGuard() *RequestGuard {
	return &RequestGuard{sems: map[string]*semaphore.Weighted{}}
}

// TryAcquire reserves the session and reports whether it was idle. It never
// blocks.
func (g *RequestGuard) TryAcquire(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.sems[sessionID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.sems[sessionID] = sem
	}
	return sem.TryAcquire(1)
}

// Release frees a session reserved with TryAcquire.
func (g *RequestGuard) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.sems[sessionID]
	if !ok {
		return
	}
	sem.Release(1)
	delete(g.sems, sessionID)
}

// Active returns the number of sessions with a generation in flight.
func (g *RequestGuard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sems)
}
