package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/domain"
)

// requireUser returns the logged-in user. Routes behind RequireUser never
// hit the error branch; it guards handlers mounted without the middleware.
func requireUser(c echo.Context) (domain.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return *u, nil
}

// render adds the values every page needs (current user, part types) to data.
func render(c echo.Context, status int, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["PartTypes"] = domain.PartTypes
	return c.Render(status, name, data)
}
