package core

import (
	"sync"
	"time"
)

// Session is a conversational container tracking an ordered turn history.
// It is safe for concurrent access.
//
// Contract:
//   - AppendTurn updates the Updated timestamp
//   - Turns returns a defensive copy to avoid external mutation
//   - Clone performs a deep copy suitable for safe divergence
//   - During a routing cycle the session is mutated only by the orchestrator.
type Session struct {
	ID      string    `json:"id"`
	Turns   []Turn    `json:"turns"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{ID: id, Turns: []Turn{}, Created: now, Updated: now}
}

// AppendTurn appends a turn to the history, updating the Updated timestamp.
func (s *Session) AppendTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, t)
	s.Updated = time.Now().UTC()
}

// TurnCount returns the number of recorded turns.
func (s *Session) TurnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Turns)
}

// History returns a defensive copy of the full turn slice.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// LastTurn returns the most recent turn and true, or a zero Turn and false
// for an empty session.
func (s *Session) LastTurn() (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

// IdleSince returns the time of the last mutation.
func (s *Session) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Updated
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Turns: make([]Turn, len(s.Turns)), Created: s.Created, Updated: s.Updated}
	copy(clone.Turns, s.Turns)
	return clone
}

// SessionStore persists sessions and their evolving turn history for the
// lifetime of a conversation. Durability beyond the active process is out of
// scope; implementations may discard sessions on explicit End or after an
// idle period.
type SessionStore interface {
	// Get returns the session for id, creating it lazily on first use.
	Get(id string) (*Session, error)
	// AppendTurn adds a turn to an existing or newly created session.
	AppendTurn(id string, t Turn) error
	// End discards the session. Ending an unknown session is a no-op.
	End(id string) error
}
