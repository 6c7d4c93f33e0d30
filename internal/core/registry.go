package core

import "sync"

// Registry is the process-wide directory of live sessions and the only
// structure mutated by multiple goroutines. All operations go through
// one mutex so that uniqueness checks and broadcast iteration never
// observe a torn state.
//
// Usernames are compared raw: exact match, case-sensitive, no trimming.
// The order slice records activation order so the user list reports
// names in the order they joined.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session // by session id, including unauthenticated
	names    map[string]string   // username -> session id, active only
	order    []string            // session ids in activation order
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		names:    make(map[string]string),
	}
}

// Add inserts a freshly accepted, still unauthenticated session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Register atomically binds name to s and transitions it to active.
// Returns ErrNameTaken when another session holds the name and
// ErrSessionClosed when s has already been unregistered (it closed
// while the handshake line was in flight).
func (r *Registry) Register(s *Session, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[name]; taken {
		return ErrNameTaken
	}
	if _, present := r.sessions[s.ID()]; !present {
		return ErrSessionClosed
	}

	if !s.activate(name) {
		return ErrSessionClosed
	}
	r.names[name] = s.ID()
	r.order = append(r.order, s.ID())
	return nil
}

// Unregister removes the session with the given id. Idempotent: absent
// ids are a no-op. Closing the connection is the caller's concern.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)
	// The name index entry goes away only if this session owns it. The
	// ownership check matters for unauthenticated sessions, whose ""
	// username must not evict an active session that claimed "".
	if name := s.Username(); r.names[name] == id {
		delete(r.names, name)
	}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// LookupByUsername resolves an active session by its exact username.
func (r *Registry) LookupByUsername(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[id]
	return s, ok
}

// SnapshotUsernames returns a point-in-time list of active usernames in
// activation order. Sessions still in handshake never appear.
func (r *Registry) SnapshotUsernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.sessions[id]; ok {
			names = append(names, s.Username())
		}
	}
	return names
}

// ForEachExcept applies fn to every active session other than exceptID.
// fn runs outside the registry lock against a snapshot, so a session
// closing mid-iteration is tolerated: its Send simply fails and the
// caller skips it.
func (r *Registry) ForEachExcept(exceptID string, fn func(*Session)) {
	for _, s := range r.activeSnapshot(exceptID) {
		fn(s)
	}
}

// Len reports the number of held sessions, handshaking ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll force-closes every held session. Used for server shutdown
// and listener failure ("disconnect all").
func (r *Registry) CloseAll() {
	r.mu.RLock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}

func (r *Registry) activeSnapshot(exceptID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		if id == exceptID {
			continue
		}
		if s, ok := r.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
