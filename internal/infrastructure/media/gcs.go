package media

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/pcparts/marketplace/internal/core/ports"
)

const gcsPublicBase = "https://storage.googleapis.com"

// GCSConfig selects the bucket and credentials. An empty CredentialsFile
// falls back to Application Default Credentials.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
	PublicBaseURL   string
}

// GCSHost uploads images to a Google Cloud Storage bucket.
type GCSHost struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewGCSHost(ctx context.Context, cfg GCSConfig) (*GCSHost, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = gcsPublicBase + "/" + cfg.Bucket
	}
	return &GCSHost{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

func (h *GCSHost) Upload(ctx context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	r, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", img.Filename, err)
	}
	defer r.Close()

	key := ObjectKey(variant, img.Filename)
	wc := h.client.Bucket(h.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = img.ContentType
	wc.Metadata = objectMetadata(variant, img.Filename)
	wc.ChunkSize = 0 // single request, images are small

	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	return joinURL(h.baseURL, key), nil
}

func (h *GCSHost) Ping(ctx context.Context) error {
	_, err := h.client.Bucket(h.bucket).Attrs(ctx)
	return err
}

func (h *GCSHost) Close() error {
	return h.client.Close()
}
