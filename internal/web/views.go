package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds per-session page state (open detail pages, registration
// forms) between requests. Entries are keyed by a random id and only
// visible to the session that created them.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	now     func() time.Time
}

type entry[T any] struct {
	owner    string
	value    T
	lastUsed time.Time
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Put stores value for owner and returns its id.
func (r *Registry[T]) Put(owner string, value T) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &entry[T]{owner: owner, value: value, lastUsed: r.now()}
	return id
}

// Get returns the value if it exists and belongs to owner.
func (r *Registry[T]) Get(owner, id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.owner != owner {
		var zero T
		return zero, false
	}
	e.lastUsed = r.now()
	return e.value, true
}

func (r *Registry[T]) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// DropOwner removes every entry of owner, e.g. after the session's identity
// changed.
func (r *Registry[T]) DropOwner(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.owner == owner {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

// Sweep removes entries idle for longer than ttl.
func (r *Registry[T]) Sweep(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	n := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
