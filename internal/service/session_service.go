package service

import (
	"sync"

	"weekly-planner/internal/planner"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *planner.Session
}

// SessionService owns one planner session per chat. Sessions live in memory only.
type SessionService struct {
	palette   []string
	threshold float64

	mu       sync.Mutex
	sessions map[int64]*sessionEntry
}

func NewSessionService(palette []string, threshold float64) *SessionService {
	return &SessionService{
		palette:   palette,
		threshold: threshold,
		sessions:  make(map[int64]*sessionEntry),
	}
}

// With runs fn with exclusive access to the chat's session, creating it on first use.
func (s *SessionService) With(chatID int64, fn func(*planner.Session) error) error {
	entry := s.entry(chatID, true)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// WithExisting is With for chats that already have a session; it reports false otherwise.
func (s *SessionService) WithExisting(chatID int64, fn func(*planner.Session) error) (bool, error) {
	entry := s.entry(chatID, false)
	if entry == nil {
		return false, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return true, fn(entry.session)
}

func (s *SessionService) entry(chatID int64, create bool) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[chatID]
	if !ok && create {
		entry = &sessionEntry{session: planner.NewSession(s.palette, s.threshold)}
		s.sessions[chatID] = entry
	}
	return entry
}
