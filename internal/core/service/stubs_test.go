package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub document store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	doc     *domain.Document
	saveErr error
	loadErr error
	saves   int
}

func newStubStore(doc *domain.Document) *stubStore {
	if doc == nil {
		doc = domain.EmptyDocument()
	}
	return &stubStore{doc: doc}
}

func (s *stubStore) Load(_ context.Context) *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *stubStore) LoadForWrite(_ context.Context) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.doc.Clone(), nil
}

func (s *stubStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.doc = doc.Clone()
	return nil
}

func (s *stubStore) current() *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// ---------------------------------------------------------------------------
// Stub media host
// ---------------------------------------------------------------------------

type stubMedia struct {
	uploads []string
	failOn  int // 1-based index of the upload that fails; 0 never fails
}

func (m *stubMedia) Upload(_ context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	if m.failOn > 0 && len(m.uploads)+1 == m.failOn {
		return "", errors.New("media host unavailable")
	}
	m.uploads = append(m.uploads, img.Filename)
	return fmt.Sprintf("https://media.test/%s/%s", variant, img.Filename), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type seqIDs struct{ n int }

func (s *seqIDs) NextID() string {
	s.n++
	return strconv.Itoa(1000 + s.n)
}

func image(name string, body string) ports.ImageUpload {
	return ports.ImageUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewBufferString(body)), nil
		},
	}
}

func strPtr(s string) *string { return &s }

var (
	alice = domain.User{ID: "u1", Name: "Alice", Birthdate: "2000-01-01"}
	bob   = domain.User{ID: "u2", Name: "Bob", Birthdate: "1990-05-05"}
)
