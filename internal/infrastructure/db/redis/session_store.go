package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pcparts/marketplace/internal/core/domain"
)

const defaultSessionPrefix = "session:"

// SessionStore caches the logged-in user per session id.
// Key format: <prefix><sid>, value is the user as JSON, expiry is the session TTL.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore wraps client. An empty prefix defaults to "session:".
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultSessionPrefix
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(sid string) string {
	return s.prefix + sid
}

func (s *SessionStore) Save(ctx context.Context, sid string, user domain.User, ttl time.Duration) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(sid), b, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, sid string) (*domain.User, error) {
	b, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &user, nil
}

func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	return s.client.Del(ctx, s.key(sid)).Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
