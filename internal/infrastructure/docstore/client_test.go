package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pcparts/marketplace/internal/api/metrics"
	"github.com/pcparts/marketplace/internal/core/domain"
)

type failingBackend struct{ err error }

func (f failingBackend) Fetch(context.Context) (*domain.Document, error) { return nil, f.err }
func (f failingBackend) Replace(context.Context, *domain.Document) error { return f.err }

func TestClient_LoadFailsOpen(t *testing.T) {
	before := testutil.ToFloat64(metrics.DocumentStoreOpsTotal.WithLabelValues("load", metrics.ResultError))
	c := NewClient(failingBackend{err: errors.New("unreachable")}, "test", zerolog.Nop())

	doc := c.Load(context.Background())
	require.NotNil(t, doc)
	require.NotNil(t, doc.Users)
	require.NotNil(t, doc.Parts)
	require.Empty(t, doc.Users)
	require.Empty(t, doc.Parts)

	after := testutil.ToFloat64(metrics.DocumentStoreOpsTotal.WithLabelValues("load", metrics.ResultError))
	require.Equal(t, before+1, after)
}

func TestClient_LoadForWriteReturnsError(t *testing.T) {
	cause := errors.New("unreachable")
	c := NewClient(failingBackend{err: cause}, "test", zerolog.Nop())

	doc, err := c.LoadForWrite(context.Background())
	require.ErrorIs(t, err, cause)
	require.Nil(t, doc)

	ok := NewClient(NewMemoryBackend(&domain.Document{}), "memory", zerolog.Nop())
	doc, err = ok.LoadForWrite(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc.Users)
	require.NotNil(t, doc.Parts)
}

func TestClient_SaveReturnsError(t *testing.T) {
	cause := errors.New("unreachable")
	c := NewClient(failingBackend{err: cause}, "test", zerolog.Nop())

	err := c.Save(context.Background(), domain.EmptyDocument())
	require.ErrorIs(t, err, cause)
	require.Error(t, c.Save(context.Background(), nil))
}

func TestClient_SaveThenLoad(t *testing.T) {
	c := NewClient(NewMemoryBackend(nil), "memory", zerolog.Nop())
	ctx := context.Background()

	doc := c.Load(ctx)
	doc.Users = append(doc.Users, domain.User{ID: "1", Name: "Alice", Birthdate: "2000-01-01"})
	require.NoError(t, c.Save(ctx, doc))

	// Mutating the saved value must not leak into the store.
	doc.Users[0].Name = "Mallory"

	got := c.Load(ctx)
	require.Len(t, got.Users, 1)
	require.Equal(t, "Alice", got.Users[0].Name)
	require.NoError(t, c.Ping(ctx))
}

func TestClient_NilCollectionsAreNormalized(t *testing.T) {
	c := NewClient(NewMemoryBackend(&domain.Document{}), "memory", zerolog.Nop())

	doc := c.Load(context.Background())
	require.NotNil(t, doc.Users)
	require.NotNil(t, doc.Parts)
}
