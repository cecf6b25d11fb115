package ports

import (
	"context"
	"time"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// SessionStore maps a session id to the cached user record of that session.
type SessionStore interface {
	Save(ctx context.Context, sid string, user domain.User, ttl time.Duration) error
	// Get returns (nil, nil) when the session does not exist or has expired.
	Get(ctx context.Context, sid string) (*domain.User, error)
	Delete(ctx context.Context, sid string) error
}
