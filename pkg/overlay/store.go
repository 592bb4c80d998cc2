// Package overlay implements the pending-change overlay engine: a
// session-scoped ordered log of not-yet-committed row mutations with a
// collapsing merge rule, and an on-demand projection of that log over a
// base result set to build the preview the UI renders.
//
// The log is the single source of truth for pending edits; projections are
// always derived, never stored, so what the user sees and what will be
// committed cannot diverge.
package overlay

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rowdelta/pkg/types"
)

// newUUID generates a UUID v7 string.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store owns one Session per connection session. Sessions are created on
// first use and removed on teardown; no two sessions share any state.
type Store struct {
	mu       sync.RWMutex
	config   types.Config
	sessions map[string]*Session
}

// NewStore creates a session store with the given configuration.
// The config's delete display policy applies to every session it creates.
func NewStore(config types.Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Store{
		config:   config.Normalize(),
		sessions: make(map[string]*Session),
	}, nil
}

// Session returns the session with the given ID, creating it if needed.
func (s *Store) Session(id string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, s.config.DeleteDisplay)
	s.sessions[id] = sess
	return sess
}

// Lookup returns an existing session without creating one.
// Returns types.ErrSessionNotFound if the session does not exist.
func (s *Store) Lookup(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return sess, nil
}

// Remove destroys a session and its change log (session teardown).
// Removing an unknown session is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sessions returns the IDs of all live sessions, sorted.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// clock is the time source for change timestamps; overridden in tests.
var clock = time.Now
