package repositories

import (
	"context"

	"github.com/voxlate/voxlate/domain/entities"
)

// SessionRepository stores session contexts for the duration of a session.
// Implementations are in-memory only; no durable state exists behind this
// interface.
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	Get(ctx context.Context, id string) (*entities.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions past their expiry and returns how
	// many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}
