package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/handler"
	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Listing  ports.ListingService
	Catalog  ports.CatalogService
	Sessions *middleware.SessionManager
	Limiter  *middleware.RateLimiter
	Renderer echo.Renderer
	// Readiness maps dependency names to their health checks.
	Readiness map[string]ports.Pinger
	Logger    zerolog.Logger
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Client IPs come from the TCP peer only; forwarded headers are not trusted.
	e.IPExtractor = echo.ExtractIPDirect()
	e.Renderer = deps.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "marketplace",
		Registerer: registerer,
	}))
	e.Use(deps.Sessions.Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Logger)
	partHandler := handler.NewPartHandler(deps.Listing, deps.Catalog, deps.Logger)
	catalogHandler := handler.NewCatalogHandler(deps.Catalog)
	healthHandler := handler.NewHealthHandler(deps.Readiness)

	requireUser := middleware.RequireUser()
	requireOwner := middleware.RequireOwner(deps.Listing)

	var limit []echo.MiddlewareFunc
	if deps.Limiter != nil {
		limit = append(limit, deps.Limiter.Middleware())
	}

	// --- Auth pages ---
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login, limit...)
	e.GET("/register", authHandler.RegisterForm)
	e.POST("/register", authHandler.Register, limit...)
	e.GET("/logout", authHandler.Logout)

	// --- Browsing (anonymous allowed) ---
	e.GET("/", catalogHandler.Index)
	e.GET("/part/:id", partHandler.Show)
	e.GET("/my-items", catalogHandler.MyItems)
	e.GET("/user/:id", catalogHandler.UserParts)
	e.GET("/hashtag/:tag", catalogHandler.Hashtag)

	// --- Logged-in pages ---
	e.GET("/users", catalogHandler.Users, requireUser)
	e.GET("/create", partHandler.CreateMenu, requireUser)
	e.GET("/create-part", partHandler.NewForm, requireUser)
	e.POST("/create-part", partHandler.Create, requireUser)
	e.GET("/edit-part/:id", partHandler.EditForm, requireUser, requireOwner)
	e.POST("/edit-part/:id", partHandler.Update, requireUser, requireOwner)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return e
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
