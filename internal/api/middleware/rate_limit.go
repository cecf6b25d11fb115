package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/pcparts/marketplace/internal/api/metrics"
)

const msgTooManyAttempts = "Too many attempts. Please wait a moment and try again."

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than expiresIn are dropped. The client IP is c.RealIP(), so the Echo
// instance must set an IPExtractor that ignores client-supplied headers.
type RateLimiter struct {
	store echomw.RateLimiterStore
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int, expiresIn time.Duration) *RateLimiter {
	return &RateLimiter{
		store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: expiresIn,
		}),
	}
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: l.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if ip := c.RealIP(); ip != "" {
				return ip, nil
			}
			return "unknown", nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			metrics.AuthRateLimitedTotal.Inc()
			c.Response().Header().Set("Retry-After", "1")
			return echo.NewHTTPError(http.StatusTooManyRequests, msgTooManyAttempts)
		},
	})
}
