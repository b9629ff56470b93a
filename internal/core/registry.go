package core

import (
	"sort"
	"sync"
)

// Registry maps a user id to exactly one live client.
// A newer registration for the same user replaces the older one (last writer wins).
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Client)}
}

// Register inserts or replaces the session for userID. fresh is true when no
// session existed before; previous is the superseded client, if any.
func (r *Registry) Register(userID string, c *Client) (fresh bool, previous *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.sessions[userID]
	r.sessions[userID] = c
	if !exists {
		return true, nil
	}
	if previous == c {
		return false, nil
	}
	return false, previous
}

// Unregister removes the session only if c is still the registered client,
// so a stale disconnect cannot evict a newer session.
func (r *Registry) Unregister(userID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.sessions[userID]
	if !exists || current != c {
		return false
	}
	delete(r.sessions, userID)
	return true
}

// Lookup returns the live client of userID.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.sessions[userID]
	return c, ok
}

// Snapshot returns the sorted ids of all registered users.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
