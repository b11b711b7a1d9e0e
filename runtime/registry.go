package runtime

import (
	"mentorhub/contract"
	"sync"

	"github.com/google/uuid"
)

type Set map[uuid.UUID]struct{}

type sessionEntry struct {
	identity string
	sink     contract.EventSink
}

// SessionRegistry is the multimap identity -> live sessions.
// A session belongs to exactly one identity for its whole lifetime;
// multiple sessions (tabs, devices) may share one identity.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]sessionEntry // map session -> identity + sink
	members  map[string]Set             // map identity -> its sessions
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]sessionEntry),
		members:  make(map[string]Set),
	}
}

// Register binds a session to an identity and stores its delivery sink.
// There is no limit on concurrent sessions per identity.
// If the identity is unknown its session set is initialized on the fly.
func (r *SessionRegistry) Register(sessionID uuid.UUID, identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = sessionEntry{identity: identity, sink: sink}

	if _, ok := r.members[identity]; !ok {
		r.members[identity] = make(Set)
	}
	r.members[identity][sessionID] = struct{}{}
}

// Unregister removes a session from whatever identity it was registered
// under. It reports that identity and whether this was its last session,
// so the caller can broadcast an offline transition. It cleans up empty
// session sets to prevent the members map growing over time.
// Unknown sessions yield ("", false).
func (r *SessionRegistry) Unregister(sessionID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		return "", false
	}
	delete(r.sessions, sessionID)

	sessions, ok := r.members[entry.identity]
	if !ok {
		return entry.identity, false
	}
	delete(sessions, sessionID)

	// If no session is left, the identity is considered offline
	if len(sessions) == 0 {
		delete(r.members, entry.identity)
		return entry.identity, true
	}
	return entry.identity, false
}

// SinksFor retrieves all active delivery sinks for one identity.
// Returns nil if the identity has no live session; the caller treats
// that as a silent drop, never as an error.
func (r *SessionRegistry) SinksFor(identity string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions, ok := r.members[identity]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for sessionID := range sessions {
		if entry, exists := r.sessions[sessionID]; exists {
			activeSinks = append(activeSinks, entry.sink)
		}
	}
	return activeSinks
}

// SinksExcept returns every registered sink except the given session's,
// regardless of identity. Used for the global presence broadcast.
func (r *SessionRegistry) SinksExcept(sessionID uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for id, entry := range r.sessions {
		if id == sessionID {
			continue
		}
		sinks = append(sinks, entry.sink)
	}
	return sinks
}

func (r *SessionRegistry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
