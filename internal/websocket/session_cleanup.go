package websocket

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxlate/voxlate/domain/repositories"
)

// SessionCleanup periodically sweeps expired sessions out of the store.
type SessionCleanup struct {
	sessions repositories.SessionRepository
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionCleanup creates a cleanup loop with the given sweep interval.
func NewSessionCleanup(sessions repositories.SessionRepository, interval time.Duration, logger *zap.Logger) *SessionCleanup {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionCleanup{
		sessions: sessions,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps until the context is cancelled.
func (s *SessionCleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session cleanup stopped")
			return
		case <-ticker.C:
			removed, err := s.sessions.DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("Session cleanup sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Info("Session cleanup sweep completed", zap.Int("removed", removed))
			}
		}
	}
}
