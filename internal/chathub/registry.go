package chathub

import "sync"

// Registry maps user IDs to their live connection handles. It is purely
// in-memory; entries appear on register and vanish on unregister, nothing
// is persisted. Resolving users with no connection is a silent no-op, not
// an error.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]map[Client]bool
	open    map[Client]string
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]map[Client]bool),
		open:    make(map[Client]string),
	}
}

// Register adds a handle under the client's user and reports whether it is
// the user's first live connection (the offline→online transition).
func (r *Registry) Register(c Client) (first bool) {
	userID := c.GetUserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	handles, ok := r.clients[userID]
	if !ok {
		handles = make(map[Client]bool)
		r.clients[userID] = handles
	}
	handles[c] = true
	return len(handles) == 1
}

// Unregister removes a handle. found is false when the handle was never
// registered (or already removed); last is true when the user has no
// remaining connections, which drives the online→offline transition.
func (r *Registry) Unregister(c Client) (found, last bool) {
	userID := c.GetUserID()

	r.mu.Lock()
	defer r.mu.Unlock()

	handles, ok := r.clients[userID]
	if !ok {
		return false, false
	}
	if _, ok := handles[c]; !ok {
		return false, false
	}
	delete(handles, c)
	delete(r.open, c)
	if len(handles) == 0 {
		delete(r.clients, userID)
		return true, true
	}
	return true, false
}

// SetOpenChat records which chat the connection currently has on screen.
// An empty chatID clears the record; unregistered handles are ignored.
func (r *Registry) SetOpenChat(c Client, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.GetUserID()][c]; !ok {
		return
	}
	if chatID == "" {
		delete(r.open, c)
		return
	}
	r.open[c] = chatID
}

// IsViewing reports whether the user has at least one handle with the chat
// open right now.
func (r *Registry) IsViewing(userID, chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.clients[userID] {
		if r.open[c] == chatID {
			return true
		}
	}
	return false
}

// Resolve returns the live handles for the given users, silently omitting
// users with no active connection.
func (r *Registry) Resolve(userIDs ...string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Client
	for _, id := range userIDs {
		for c := range r.clients[id] {
			out = append(out, c)
		}
	}
	return out
}

// IsOnline reports whether the user has at least one handle here.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[userID]) > 0
}

// Len returns the number of distinct connected users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
