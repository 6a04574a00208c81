// Package flight coalesces concurrent work on the same key: callers asking
// for a key while it is being computed share the in-flight result instead
// of issuing duplicate backend calls. Finished results are kept for a TTL.
package flight

import (
	"sync"
	"time"
)

type Group[K comparable, V any] struct {
	mu       sync.Mutex
	pending  map[K]*call[V]
	finished map[K]entry[V]
	ttl      time.Duration
	work     func(K) (V, error)
}

type call[V any] struct {
	val  V
	err  error
	done chan struct{}
}

type entry[V any] struct {
	val      V
	deadline time.Time
}

// New builds a group around work. ttl <= 0 disables result caching; every
// Get past the in-flight window recomputes.
func New[K comparable, V any](ttl time.Duration, work func(K) (V, error)) *Group[K, V] {
	return &Group[K, V]{
		pending:  make(map[K]*call[V]),
		finished: make(map[K]entry[V]),
		ttl:      ttl,
		work:     work,
	}
}

// Get returns a cached result, joins an in-flight computation, or computes.
func (g *Group[K, V]) Get(k K) (V, error) {
	g.mu.Lock()
	if e, ok := g.finished[k]; ok {
		if time.Now().Before(e.deadline) {
			g.mu.Unlock()
			return e.val, nil
		}
		delete(g.finished, k)
	}
	if c, ok := g.pending[k]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err
	}
	return g.run(k)
}

// Force returns a freshly computed result, bypassing the cache. A
// computation already in flight for the key is producing exactly that, so
// concurrent Force calls join it instead of issuing their own.
func (g *Group[K, V]) Force(k K) (V, error) {
	g.mu.Lock()
	if c, ok := g.pending[k]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err
	}
	delete(g.finished, k)
	return g.run(k)
}

// run computes under a registered pending call. The mutex is held on entry.
func (g *Group[K, V]) run(k K) (V, error) {
	c := &call[V]{done: make(chan struct{})}
	g.pending[k] = c
	g.mu.Unlock()

	c.val, c.err = g.work(k)

	g.mu.Lock()
	if c.err == nil && g.ttl > 0 {
		g.finished[k] = entry[V]{val: c.val, deadline: time.Now().Add(g.ttl)}
	}
	delete(g.pending, k)
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err
}
