package navigation

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is one client's navigation state.
type Session struct {
	ID       string
	UserID   int
	Stack    *Stack
	lastSeen time.Time
}

// Manager owns the live sessions. Sessions idle longer than the TTL are
// dropped lazily on access.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager creates a session manager with the given idle TTL
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session for the user, rooted at the library.
func (m *Manager) Create(userID int) *Session {
	session := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Stack:    NewStack(),
		lastSeen: m.now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	m.sessions[session.ID] = session

	return session
}

// With runs fn against the session's stack under the manager lock. The
// session's idle timer resets on every call.
func (m *Manager) With(sessionID string, userID int, fn func(*Stack)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrSessionNotFound
	}
	if m.now().Sub(session.lastSeen) > m.ttl {
		delete(m.sessions, sessionID)
		return ErrSessionNotFound
	}

	session.lastSeen = m.now()
	fn(session.Stack)
	return nil
}

// Drop removes a session.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// prune drops expired sessions. Caller holds the lock.
func (m *Manager) prune() {
	cutoff := m.now().Add(-m.ttl)
	for id, session := range m.sessions {
		if session.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}
