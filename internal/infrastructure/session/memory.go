// Package session holds the in-process SessionStore used when no Redis is
// configured. Sessions are lost on restart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pcparts/marketplace/internal/core/domain"
)

type entry struct {
	user      domain.User
	expiresAt time.Time
}

// MemoryStore implements ports.SessionStore with a map and lazy expiry.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, sid string, user domain.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = entry{user: user, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sid]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, sid)
		return nil, nil
	}
	user := e.user
	return &user, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
