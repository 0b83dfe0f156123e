package presence

import (
	"sort"
	"sync"
)

// Handle is a live realtime session. Handles are compared by session id so a
// stale disconnect cannot evict a newer login.
type Handle interface {
	SessionID() string
}

// Registry is the process-wide map of user id -> active session. One live
// entry per user; a new login replaces the prior one (last session wins).
// Never persisted. Callers must not bypass the lock: only the four methods
// below touch the map, and none of them perform I/O while holding it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Handle
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Handle)}
}

// Register upserts the user's session and returns the superseded handle, if
// any. The prior session is not notified; it simply stops being routable.
func (r *Registry) Register(userID string, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.sessions[userID]
	r.sessions[userID] = h
	return prev
}

// Unregister removes the entry only if it still belongs to h. Returns whether
// the entry was removed; a stale handle is a no-op.
func (r *Registry) Unregister(userID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[userID]
	if !ok || cur.SessionID() != h.SessionID() {
		return false
	}
	delete(r.sessions, userID)
	return true
}

func (r *Registry) Lookup(userID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[userID]
	return h, ok
}

// Snapshot returns the ids of all online users, sorted for stable output.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
