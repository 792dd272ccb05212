// Package stampede serializes cache population per key.
//
// When several requests miss on the same key at once, exactly one of them
// (the owner) executes the underlying handler; the rest wait for the owner
// to release and then re-check the cache. Keys are independent: contention
// on one key never blocks another.
package stampede

import (
	"context"
	"sync"
)

type flight struct {
	done chan struct{}
}

// Guard hands out per-key population ownership.
// The zero value is not usable; call NewGuard.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]*flight
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]*flight)}
}

// Acquire makes the caller the owner for key if no population is in
// flight, returning owner=true and a release function that must be called
// on every exit path. Otherwise it blocks until the current owner releases
// (or ctx is done) and returns owner=false; the caller should then re-check
// the cache and, on a renewed miss, call Acquire again.
func (g *Guard) Acquire(ctx context.Context, key string) (owner bool, release func(), err error) {
	g.mu.Lock()
	f, ok := g.inflight[key]
	if !ok {
		f = &flight{done: make(chan struct{})}
		g.inflight[key] = f
		g.mu.Unlock()
		var once sync.Once
		release = func() {
			once.Do(func() {
				g.mu.Lock()
				delete(g.inflight, key)
				g.mu.Unlock()
				close(f.done)
			})
		}
		return true, release, nil
	}
	g.mu.Unlock()

	select {
	case <-f.done:
		return false, func() {}, nil
	case <-ctx.Done():
		return false, func() {}, ctx.Err()
	}
}

// Len returns the number of keys with an in-flight population.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
