package bfd

import "net/netip"

// Registry holds the sessions of one parse in declaration order. It is
// owned by a single parse and is not safe for concurrent use.
type Registry struct {
	sessions []*Session
	byName   map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make([]*Session, 0),
		byName:   make(map[string]*Session),
	}
}

// Lookup retrieves a session by name
func (r *Registry) Lookup(name string) (*Session, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// LookupNeighbor finds the session using the neighbor address ap.
func (r *Registry) LookupNeighbor(ap netip.AddrPort) (*Session, bool) {
	if !ap.IsValid() {
		return nil, false
	}
	for _, s := range r.sessions {
		if s.Neighbor == ap {
			return s, true
		}
	}
	return nil, false
}

// All returns the sessions in declaration order.
func (r *Registry) All() []*Session {
	result := make([]*Session, len(r.sessions))
	copy(result, r.sessions)
	return result
}

// Names returns session names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		names = append(names, s.Name)
	}
	return names
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

func (r *Registry) insert(s *Session) {
	r.sessions = append(r.sessions, s)
	r.byName[s.Name] = s
}

func (r *Registry) remove(s *Session) bool {
	for i, existing := range r.sessions {
		if existing == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			delete(r.byName, s.Name)
			return true
		}
	}
	return false
}
