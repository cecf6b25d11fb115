package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// ContextPartKey holds the *domain.Part loaded by RequireOwner.
const ContextPartKey = "part"

// RequireOwner lets the request through only when the current user owns the
// part named by the :id route parameter. Must run after RequireUser.
func RequireOwner(listing ports.ListingService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.ErrUnauthenticated
			}

			part, err := listing.AuthorizeOwner(c.Request().Context(), *user, c.Param("id"))
			if err != nil {
				return err
			}
			c.Set(ContextPartKey, part)
			return next(c)
		}
	}
}

// OwnedPart returns the part stored by RequireOwner, or nil.
func OwnedPart(c echo.Context) *domain.Part {
	p, _ := c.Get(ContextPartKey).(*domain.Part)
	return p
}
