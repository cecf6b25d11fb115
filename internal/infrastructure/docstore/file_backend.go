package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// FileBackend keeps the Document in a local JSON file. A missing, blank or
// unparsable file is treated as an empty Document and rewritten as such.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewFileBackend makes sure path holds a valid Document, creating or
// resetting the file when needed.
func NewFileBackend(path string, logger zerolog.Logger) (*FileBackend, error) {
	b := &FileBackend{path: path, logger: logger}
	if _, err := b.read(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *FileBackend) Fetch(_ context.Context) (*domain.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read()
}

func (b *FileBackend) Replace(_ context.Context, doc *domain.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(doc)
}

// read must be called with mu held (or before the backend is shared).
func (b *FileBackend) read() (*domain.Document, error) {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := domain.EmptyDocument()
		return doc, b.write(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.EmptyDocument(), nil
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		b.logger.Error().Err(err).Str("path", b.path).Msg("data file is not valid JSON, resetting")
		empty := domain.EmptyDocument()
		return empty, b.write(empty)
	}
	doc.Normalize()
	return &doc, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (b *FileBackend) write(doc *domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".data-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}
