// Package media uploads listing images to object storage and returns their
// public URLs. The requested transformation is recorded on each object as
// metadata so an image proxy or CDN in front of the bucket can apply it.
package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/metrics"
	"github.com/pcparts/marketplace/internal/core/ports"
)

const keyPrefix = "parts"

// ObjectKey names the stored object: parts/<variant>/<uuid><ext>.
func ObjectKey(variant ports.ImageVariant, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", keyPrefix, variant, uuid.NewString(), ext)
}

// objectMetadata is attached to every uploaded object.
func objectMetadata(variant ports.ImageVariant, filename string) map[string]string {
	return map[string]string{
		"variant":        string(variant),
		"transformation": variant.Transform().String(),
		"original-name":  filename,
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// Instrumented wraps a MediaHost with upload metrics and logs.
type Instrumented struct {
	next   ports.MediaHost
	logger zerolog.Logger
}

func NewInstrumented(next ports.MediaHost, logger zerolog.Logger) *Instrumented {
	return &Instrumented{next: next, logger: logger}
}

func (i *Instrumented) Upload(ctx context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	start := time.Now()
	url, err := i.next.Upload(ctx, variant, img)
	metrics.MediaUploadsTotal.WithLabelValues(string(variant), metrics.Result(err)).Inc()

	evt := i.logger.Debug()
	if err != nil {
		evt = i.logger.Warn().Err(err)
	}
	evt.Str("variant", string(variant)).
		Str("file", img.Filename).
		Int64("size", img.Size).
		Dur("took", time.Since(start)).
		Msg("image upload")
	return url, err
}

// Ping delegates to the wrapped host when it supports readiness checks.
func (i *Instrumented) Ping(ctx context.Context) error {
	if p, ok := i.next.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
