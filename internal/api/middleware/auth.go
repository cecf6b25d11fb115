package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pcparts/marketplace/internal/core/domain"
)

// RequireUser rejects anonymous requests with domain.ErrUnauthenticated,
// which the HTTP error handler turns into a redirect to the login page.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
