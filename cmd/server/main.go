package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api"
	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/api/view"
	"github.com/pcparts/marketplace/internal/core/ports"
	"github.com/pcparts/marketplace/internal/core/service"
	"github.com/pcparts/marketplace/internal/infrastructure/db/mongo"
	"github.com/pcparts/marketplace/internal/infrastructure/db/redis"
	"github.com/pcparts/marketplace/internal/infrastructure/docstore"
	"github.com/pcparts/marketplace/internal/infrastructure/media"
	"github.com/pcparts/marketplace/internal/infrastructure/session"
	"github.com/pcparts/marketplace/internal/pkg/config"
	"github.com/pcparts/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "pcparts-marketplace",
		Version: version,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]ports.Pinger{}
	var closers []func(context.Context) error
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](closeCtx); err != nil {
				log.Warn().Err(err).Msg("close dependency")
			}
		}
	}()

	// --- Document store ---
	backend, err := newDocumentBackend(ctx, cfg, log, &closers)
	if err != nil {
		return err
	}
	store := docstore.NewClient(backend, cfg.Docstore.Backend, logger.Component("docstore"))
	readiness["docstore"] = store

	// --- Sessions ---
	var sessions ports.SessionStore = session.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		closers = append(closers, func(context.Context) error { return rdb.Close() })
		redisSessions := redis.NewSessionStore(rdb, "")
		sessions = redisSessions
		readiness["redis"] = redisSessions
	}

	// --- Media ---
	host, err := newMediaHost(ctx, cfg, &closers)
	if err != nil {
		return err
	}
	mediaHost := media.NewInstrumented(host, logger.Component("media"))
	readiness["media"] = mediaHost

	// --- Services ---
	ids := service.NewClockIDs()
	authService := service.NewAuthService(store, ids, logger.Component("auth"))
	listingService := service.NewListingService(store, mediaHost, ids, logger.Component("listing"))
	catalogService := service.NewCatalogService(store)

	renderer, err := view.New()
	if err != nil {
		return err
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	}
	sessionManager := middleware.NewSessionManager(sessions, middleware.SessionConfig{
		Secret:     secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.IsProduction(),
	}, logger.Component("session"))

	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Listing:   listingService,
		Catalog:   catalogService,
		Sessions:  sessionManager,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.ExpiresIn),
		Renderer:  renderer,
		Readiness: readiness,
		Logger:    logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("docstore", cfg.Docstore.Backend).
			Str("media", cfg.Media.Backend).
			Bool("redis_sessions", cfg.Redis.Addr != "").
			Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newDocumentBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger, closers *[]func(context.Context) error) (ports.DocumentBackend, error) {
	switch cfg.Docstore.Backend {
	case config.DocstoreHTTP:
		return docstore.NewHTTPBackend(cfg.Docstore.URL, cfg.Docstore.Timeout), nil
	case config.DocstoreFile:
		return docstore.NewFileBackend(cfg.Docstore.File, logger.Component("docstore"))
	case config.DocstoreMemory:
		log.Warn().Msg("using in-memory document store; data is lost on restart")
		return docstore.NewMemoryBackend(nil), nil
	case config.DocstoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "pcparts-marketplace",
			Timeout:  cfg.Docstore.Timeout,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, client.Disconnect)
		return mongo.NewDocumentBackend(db, cfg.Mongo.Collection, cfg.Mongo.DocumentID), nil
	}
	return nil, fmt.Errorf("unknown document store backend %q", cfg.Docstore.Backend)
}

func newMediaHost(ctx context.Context, cfg *config.Config, closers *[]func(context.Context) error) (ports.MediaHost, error) {
	switch cfg.Media.Backend {
	case config.MediaGCS:
		host, err := media.NewGCSHost(ctx, media.GCSConfig{
			Bucket:          cfg.Media.GCSBucket,
			CredentialsFile: cfg.Media.GCSCredentials,
			PublicBaseURL:   cfg.Media.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func(context.Context) error { return host.Close() })
		return host, nil
	case config.MediaMinIO:
		return media.NewMinIOHost(ctx, media.MinIOConfig{
			Endpoint:      cfg.Media.MinIOEndpoint,
			AccessKey:     cfg.Media.MinIOAccessKey,
			SecretKey:     cfg.Media.MinIOSecretKey,
			Bucket:        cfg.Media.MinIOBucket,
			UseSSL:        cfg.Media.MinIOUseSSL,
			PublicBaseURL: cfg.Media.PublicBaseURL,
		})
	}
	return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
}
