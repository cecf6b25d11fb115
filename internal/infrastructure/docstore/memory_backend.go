package docstore

import (
	"context"
	"sync"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// MemoryBackend keeps the Document in process memory. Fetch and Replace copy
// the value, so callers never share slices with the stored Document.
type MemoryBackend struct {
	mu  sync.RWMutex
	doc *domain.Document
}

func NewMemoryBackend(seed *domain.Document) *MemoryBackend {
	if seed == nil {
		seed = domain.EmptyDocument()
	}
	return &MemoryBackend{doc: seed.Clone()}
}

func (b *MemoryBackend) Fetch(_ context.Context) (*domain.Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Clone(), nil
}

func (b *MemoryBackend) Replace(_ context.Context, doc *domain.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc.Clone()
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }
