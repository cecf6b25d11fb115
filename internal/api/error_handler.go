package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/domain"
)

// LoginRedirect is where unauthenticated requests for protected pages go.
const LoginRedirect = "/login?redirectReason=authFailed"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Redirects ErrUnauthenticated to the login page.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the "error" page, falling back to plain text if rendering fails.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrUnauthenticated) {
			_ = c.Redirect(http.StatusFound, LoginRedirect)
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		page := echo.Map{"Status": code, "Message": msg, "User": middleware.CurrentUser(c)}
		if rerr := c.Render(code, "error", page); rerr != nil {
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (router 404, 405, rate limiting, ...).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var (
		verr *domain.ValidationError
		up   *domain.UpstreamError
	)
	switch {
	case errors.Is(err, domain.ErrPartNotFound):
		return http.StatusNotFound, "Part not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Unauthorized"
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &up):
		log.Error().Err(up.Err).Str("stage", up.Stage).Str("path", c.Path()).Msg("upstream failure")
		return http.StatusBadGateway, "The storage service is unavailable. Please try again."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal Server Error"
}
