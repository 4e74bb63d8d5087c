package usecase

import (
	"context"

	"secrets_web/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts the persistence layer for session entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionRepository interface {
	// Create persists a new session to the storage with a TTL derived from
	// its expiration time.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session by its ID (the opaque session key).
	// It returns ErrSessionNotFound if the session does not exist or has
	// already been dropped by the store's TTL.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// Revoke marks a session as revoked by setting RevokedAt. The record is
	// kept server-side so a replayed cookie keeps failing after logout.
	Revoke(ctx context.Context, id string) error
}
