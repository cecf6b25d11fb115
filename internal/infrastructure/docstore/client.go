// Package docstore reads and writes the marketplace Document as one value.
//
// Client wraps a raw ports.DocumentBackend with the fail-open read policy:
// a failed Load yields an empty Document, a failed Save is returned to the
// caller. Write paths read through LoadForWrite, which reports the failure
// instead. Backends never lock, so concurrent read-modify-write cycles are
// last-write-wins.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/metrics"
	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// Client implements ports.DocumentStore on top of a backend.
type Client struct {
	backend ports.DocumentBackend
	name    string
	logger  zerolog.Logger
}

// NewClient wraps backend. name is only used in logs ("http", "file", ...).
func NewClient(backend ports.DocumentBackend, name string, logger zerolog.Logger) *Client {
	return &Client{
		backend: backend,
		name:    name,
		logger:  logger.With().Str("backend", name).Logger(),
	}
}

func (c *Client) Load(ctx context.Context) *domain.Document {
	doc, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("document load failed, serving empty document")
		return domain.EmptyDocument()
	}
	return doc
}

func (c *Client) LoadForWrite(ctx context.Context) (*domain.Document, error) {
	doc, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("document load for write failed")
		return nil, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

func (c *Client) fetch(ctx context.Context) (*domain.Document, error) {
	doc, err := c.backend.Fetch(ctx)
	metrics.DocumentStoreOpsTotal.WithLabelValues(domain.StageLoad, metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return domain.EmptyDocument(), nil
	}
	doc.Normalize()
	c.logger.Debug().Int("users", len(doc.Users)).Int("parts", len(doc.Parts)).Msg("document loaded")
	return doc, nil
}

func (c *Client) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return errors.New("docstore: nil document")
	}
	doc.Normalize()

	err := c.backend.Replace(ctx, doc)
	metrics.DocumentStoreOpsTotal.WithLabelValues(domain.StageSave, metrics.Result(err)).Inc()
	if err != nil {
		c.logger.Error().Err(err).Msg("document save failed")
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Ping reports whether the backend is reachable. Backends without a cheaper
// check are probed with a full fetch.
func (c *Client) Ping(ctx context.Context) error {
	if p, ok := c.backend.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := c.backend.Fetch(ctx)
	return err
}
