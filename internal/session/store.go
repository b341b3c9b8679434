package session

import "sync"

// Store keeps every active session in memory, keyed by the messaging
// channel's user ID. The lock only protects the map itself: events for a
// single user are serialized upstream (see workflow.Dispatcher), so the
// returned *Session may be mutated freely by that user's handler while
// other users proceed concurrently.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the session for userID, creating a fresh one on first contact.
func (s *Store) Get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess = &Session{State: StateStart}
	s.sessions[userID] = sess
	return sess
}

// Reset reinitializes the user's session: state back to StateStart,
// collected documents and conversation history cleared.
func (s *Store) Reset(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{State: StateStart}
	s.sessions[userID] = sess
	return sess
}

// Update applies fn to the user's session under the store lock. Useful for
// callers outside the per-user event path.
func (s *Store) Update(userID int64, fn func(*Session)) {
	sess := s.Get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(sess)
}
