package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/pcparts/marketplace/pkg/logger"
)

// Document store backends.
const (
	DocstoreHTTP   = "http"
	DocstoreFile   = "file"
	DocstoreMongo  = "mongo"
	DocstoreMemory = "memory"
)

// Media backends.
const (
	MediaMinIO = "minio"
	MediaGCS   = "gcs"
)

type Config struct {
	Port      string `env:"PORT,       default=3000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Session   SessionConfig
	Docstore  DocstoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET"`
	TTL        time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieName string        `env:"SESSION_COOKIE, default=pcparts_session"`
}

type DocstoreConfig struct {
	Backend string        `env:"DOCSTORE_BACKEND, default=http"`
	URL     string        `env:"DOCSTORE_URL"`
	File    string        `env:"DOCSTORE_FILE,    default=data.json"`
	Timeout time.Duration `env:"DOCSTORE_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,         default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,          default=pcparts"`
	Collection string `env:"MONGO_COLLECTION,  default=documents"`
	DocumentID string `env:"MONGO_DOCUMENT_ID, default=marketplace"`
}

// RedisConfig: an empty Addr keeps sessions in process memory.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB, default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type MediaConfig struct {
	Backend        string `env:"MEDIA_BACKEND,         default=minio"`
	PublicBaseURL  string `env:"MEDIA_PUBLIC_BASE_URL"`
	MinIOEndpoint  string `env:"MINIO_ENDPOINT,        default=localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET,          default=pcparts"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL,         default=false"`
	GCSBucket      string `env:"GCS_BUCKET"`
	GCSCredentials string `env:"GCS_CREDENTIALS_FILE"`
}

type RateLimitConfig struct {
	RPS       float64       `env:"AUTH_RATE_LIMIT_RPS,     default=1"`
	Burst     int           `env:"AUTH_RATE_LIMIT_BURST,   default=5"`
	ExpiresIn time.Duration `env:"AUTH_RATE_LIMIT_EXPIRES, default=3m"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}

	cfg, err := FromLookuper(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// FromLookuper builds and validates a Config from l.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Docstore.Backend {
	case DocstoreHTTP:
		if c.Docstore.URL == "" {
			return errors.New("DOCSTORE_URL is required for the http backend")
		}
	case DocstoreFile, DocstoreMongo, DocstoreMemory:
	default:
		return fmt.Errorf("unknown DOCSTORE_BACKEND %q", c.Docstore.Backend)
	}

	switch c.Media.Backend {
	case MediaMinIO:
	case MediaGCS:
		if c.Media.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs media backend")
		}
	default:
		return fmt.Errorf("unknown MEDIA_BACKEND %q", c.Media.Backend)
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.IsProduction() && c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required in production")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}
	return nil
}
