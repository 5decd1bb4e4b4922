package ws

import (
	"fmt"
	"sync"
)

// Registry maps user ids to the set of live session ids subscribed to that
// user's private destinations. It is the only shared mutable map in the
// service: writers serialize on the mutex, readers take snapshots.
//
// The registry is volatile: a disconnect loses its subscriptions.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
	owner  map[string]string // session id -> user id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]struct{}),
		owner:  make(map[string]string),
	}
}

// Attach registers a session under a user. Idempotent for the same
// (user, session) pair. A session may belong to at most one user; attaching it
// under a second user indicates a transport bug and panics.
func (r *Registry) Attach(userID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owner[sessionID]; ok {
		if owner == userID {
			return
		}
		panic(fmt.Sprintf("ws: session %s already attached to user %s, refusing attach to %s",
			sessionID, owner, userID))
	}

	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[sessionID] = struct{}{}
	r.owner[sessionID] = userID
}

// Detach removes a session wherever it is registered. Safe to call for
// unknown sessions. Empty user sets are removed so the map never leaks keys.
func (r *Registry) Detach(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owner[sessionID]
	if !ok {
		return
	}
	delete(r.owner, sessionID)

	set := r.byUser[userID]
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

// SessionsFor returns a snapshot of the session ids attached to a user, so
// delivery iteration is not invalidated by a concurrent detach.
func (r *Registry) SessionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// Users returns the number of users with at least one live session.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}

// Sessions returns the number of attached sessions.
func (r *Registry) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owner)
}
