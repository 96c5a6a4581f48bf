package events

import (
	"sync"
)

// registry holds the listener bookkeeping shared by ChannelEvent and CallbackEvent.
// L is the listener representation, T the notified value.
type registry[L any, T any] struct {
	mu        sync.RWMutex
	listeners map[uint64]L
	nextID    uint64
	replay    bool
	last      *T
	closed    bool
}

func newRegistry[L any, T any](replay bool) registry[L, T] {
	return registry[L, T]{
		listeners: make(map[uint64]L),
		replay:    replay,
	}
}

// add registers a listener and returns its id together with a copy of the value that
// should be replayed to it, if any. ok is false once the registry has been closed.
func (r *registry[L, T]) add(listener L) (id uint64, replayValue *T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, nil, false
	}
	id = r.nextID
	r.nextID++
	r.listeners[id] = listener
	if r.replay && r.last != nil {
		v := *r.last
		replayValue = &v
	}
	return id, replayValue, true
}

func (r *registry[L, T]) remove(id uint64) (L, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listener, ok := r.listeners[id]
	delete(r.listeners, id)
	return listener, ok
}

// record stores value for replay and returns a snapshot of the current listeners.
// Listeners are always invoked outside the lock.
func (r *registry[L, T]) record(value T) ([]L, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false
	}
	if r.replay {
		v := value
		r.last = &v
	}
	out := make([]L, 0, len(r.listeners))
	for _, l := range r.listeners {
		out = append(out, l)
	}
	return out, true
}

// drain marks the registry closed and hands back every listener still registered.
func (r *registry[L, T]) drain() []L {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	out := make([]L, 0, len(r.listeners))
	for id, l := range r.listeners {
		out = append(out, l)
		delete(r.listeners, id)
	}
	return out
}

func (r *registry[L, T]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners)
}
