package media

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pcparts/marketplace/internal/core/ports"
)

// MinIOConfig holds the S3-compatible endpoint settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL prefixes object keys in returned URLs. When empty the
	// URL is built from the endpoint and bucket.
	PublicBaseURL string
}

// MinIOHost uploads images to a MinIO (or any S3-compatible) bucket.
type MinIOHost struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinIOHost creates the client and makes sure the bucket exists.
func NewMinIOHost(ctx context.Context, cfg MinIOConfig) (*MinIOHost, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: endpoint and bucket are required")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}

	ensureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ensureCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, xerr := mc.BucketExists(ensureCtx, cfg.Bucket)
		if xerr != nil || !exists {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &MinIOHost{client: mc, bucket: cfg.Bucket, baseURL: base}, nil
}

func (h *MinIOHost) Upload(ctx context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	r, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", img.Filename, err)
	}
	defer r.Close()

	key := ObjectKey(variant, img.Filename)
	_, err = h.client.PutObject(ctx, h.bucket, key, r, img.Size, minio.PutObjectOptions{
		ContentType:  img.ContentType,
		UserMetadata: objectMetadata(variant, img.Filename),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return joinURL(h.baseURL, key), nil
}

func (h *MinIOHost) Ping(ctx context.Context) error {
	ok, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio: bucket %s does not exist", h.bucket)
	}
	return nil
}
