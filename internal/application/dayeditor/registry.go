package dayeditor

import (
	"sync"
	"time"
)

// Key identifies one screen instance: the login session that owns it and
// the customer whose plan is open.
type Key struct {
	Owner    string
	Customer string
}

// Session is an open editor pinned to the checkpoint its records came from.
// Saves and refreshes must stay on that checkpoint.
type Session[R any] struct {
	Editor     *Editor[R]
	Checkpoint int
}

type registryEntry[R any] struct {
	session  Session[R]
	lastUsed time.Time
}

// Registry holds open editors per screen instance. Editors are never shared
// between owners.
type Registry[R any] struct {
	mu      sync.Mutex
	entries map[Key]*registryEntry[R]
	idle    time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry whose entries expire after idle without use.
// PRE: idle > 0
func NewRegistry[R any](idle time.Duration) *Registry[R] {
	return &Registry[R]{
		entries: make(map[Key]*registryEntry[R]),
		idle:    idle,
		now:     time.Now,
	}
}

// Get returns the session for key and refreshes its idle timer.
func (r *Registry[R]) Get(key Key) (Session[R], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.entries[key]
	if !ok {
		return Session[R]{}, false
	}
	if r.now().Sub(ent.lastUsed) > r.idle {
		delete(r.entries, key)
		return Session[R]{}, false
	}
	ent.lastUsed = r.now()
	return ent.session, true
}

// Put stores a session for key, replacing any previous one.
// PRE: s.Editor != nil
func (r *Registry[R]) Put(key Key, s Session[R]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &registryEntry[R]{session: s, lastUsed: r.now()}
}

// Delete removes the editor for key.
func (r *Registry[R]) Delete(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// DropOwner removes every editor belonging to owner (used on logout).
func (r *Registry[R]) DropOwner(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.entries {
		if k.Owner == owner {
			delete(r.entries, k)
		}
	}
}

// Sweep removes idle editors and returns how many were dropped.
func (r *Registry[R]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	now := r.now()
	for k, ent := range r.entries {
		if now.Sub(ent.lastUsed) > r.idle {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of open editors.
func (r *Registry[R]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
