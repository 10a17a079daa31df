// Package session holds per-visitor dashboard state between interactions.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/sentiboard/internal/models"
)

// Session owns one visitor's labeled collection. A new ingestion replaces the
// collection wholesale.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	posts      []models.LabeledPost
	keyword    string
	source     string
	lastAccess time.Time
}

// Replace swaps in a freshly ingested collection.
func (s *Session) Replace(posts []models.LabeledPost, keyword, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = posts
	s.keyword = keyword
	s.source = source
}

// Posts returns the current collection. Callers must not modify it.
func (s *Session) Posts() []models.LabeledPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts
}

func (s *Session) Keyword() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyword
}

// Source is "reddit" or "upload" for the last ingestion, empty before any.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastAccess = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

// Manager tracks live sessions. Expired sessions are swept when a new one is
// created; there is no background goroutine.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new empty session.
func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{ID: uuid.NewString(), CreatedAt: now, lastAccess: now}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(now)
	m.sessions[s.ID] = s

	slog.Debug("[SessionManager] Session created",
		slog.String("session_id", s.ID),
		slog.Int("live", len(m.sessions)))
	return s
}

// Get returns the live session with id and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	now := m.now()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok && m.expired(s, now) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, false
	}
	s.touch(now)
	return s, true
}

// End tears a session down. Ending an unknown session is a no-op.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		slog.Debug("[SessionManager] Session ended", slog.String("session_id", id))
	}
}

// Len reports the number of tracked sessions, expired ones included until swept.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.idleSince()) > m.ttl
}

func (m *Manager) sweepLocked(now time.Time) {
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
		}
	}
}
