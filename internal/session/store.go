package session

import (
	"context"
	"sync"

	"stockadvisor/internal/logger"
)

// Store owns all live sessions. Sessions are created lazily on first use and
// every access runs under that user's lock, so callers may hit the same user
// from concurrent requests safely.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	maxHistory int
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

func NewStore(maxHistory int) *Store {
	return &Store{
		sessions:   map[string]*entry{},
		maxHistory: maxHistory,
	}
}

// With runs fn while holding the user's session lock, creating the session
// first if the user is new.
func (st *Store) With(userID string, fn func(*Session)) {
	st.mu.Lock()
	e, ok := st.sessions[userID]
	if !ok {
		e = &entry{session: New(userID, st.maxHistory)}
		st.sessions[userID] = e
		logger.Debug(context.Background(), "Session created", "user_id", userID)
	}
	st.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
}

// Clear drops a user's conversation history. Watch list and preferences
// survive, matching the REST contract of DELETE /api/context.
func (st *Store) Clear(userID string) {
	st.With(userID, func(s *Session) {
		s.ClearHistory()
	})
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
