package ports

import (
	"context"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// DocumentBackend is a raw persistence target for the whole Document. Every
// implementation replaces the stored value wholesale on Replace; there is no
// versioning, so concurrent read-modify-write cycles are last-write-wins.
type DocumentBackend interface {
	Fetch(ctx context.Context) (*domain.Document, error)
	Replace(ctx context.Context, doc *domain.Document) error
}

// DocumentStore is the single read/write boundary used by the services.
type DocumentStore interface {
	// Load returns the current Document. It never fails: on any backend error
	// it returns an empty Document so read paths degrade to showing nothing.
	Load(ctx context.Context) *domain.Document
	// LoadForWrite returns the current Document or the backend error. Write
	// paths must use it: saving on top of an empty fallback would wipe the
	// stored Document.
	LoadForWrite(ctx context.Context) (*domain.Document, error)
	// Save persists the whole Document. A non-nil error means the write must
	// be treated as not having happened.
	Save(ctx context.Context, doc *domain.Document) error
}

// Pinger is implemented by dependencies that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}
