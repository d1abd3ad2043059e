package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain"
	"github.com/voxlate/voxlate/domain/entities"
	"github.com/voxlate/voxlate/domain/repositories"
)

// SessionStore is an in-memory SessionRepository. Sessions live only as
// long as the process; there is no durable persistence behind it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
	logger   *zap.Logger
}

var _ repositories.SessionRepository = (*SessionStore)(nil)

// NewSessionStore creates an empty store.
func NewSessionStore(logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entities.Session),
		logger:   logger,
	}
}

// Create registers a session under its ID.
func (s *SessionStore) Create(ctx context.Context, session *entities.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session

	s.logger.Info("Session created", zap.String("sessionID", session.ID))
	return nil
}

// Get returns the session with the given ID, or ErrSessionNotFound when it
// is missing or expired.
func (s *SessionStore) Get(ctx context.Context, id string) (*entities.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || session.IsExpired() {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// DeleteExpired sweeps out expired sessions and returns how many were
// removed.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Expired sessions removed", zap.Int("count", removed))
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
