package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Index handles GET / with the search, type, minPrice, maxPrice, details and
// sort query parameters.
func (h *CatalogHandler) Index(c echo.Context) error {
	var q ports.PartQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	parts := h.catalog.Browse(c.Request().Context(), middleware.CurrentUser(c), q)
	return render(c, http.StatusOK, "index", echo.Map{"Parts": parts, "Filters": q})
}

// MyItems handles GET /my-items. Anonymous visitors get an empty page.
func (h *CatalogHandler) MyItems(c echo.Context) error {
	parts := h.catalog.MyItems(c.Request().Context(), middleware.CurrentUser(c))
	return render(c, http.StatusOK, "my-items", echo.Map{"Parts": parts})
}

// UserParts handles GET /user/:id.
func (h *CatalogHandler) UserParts(c echo.Context) error {
	owner, parts, err := h.catalog.UserParts(c.Request().Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "user-parts", echo.Map{"Owner": owner, "Parts": parts})
}

// Users handles GET /users.
func (h *CatalogHandler) Users(c echo.Context) error {
	return render(c, http.StatusOK, "users", echo.Map{"Users": h.catalog.Users(c.Request().Context())})
}

// Hashtag handles GET /hashtag/:tag.
func (h *CatalogHandler) Hashtag(c echo.Context) error {
	tag, parts := h.catalog.ByHashtag(c.Request().Context(), middleware.CurrentUser(c), c.Param("tag"))
	return render(c, http.StatusOK, "hashtag", echo.Map{"Tag": tag, "Parts": parts})
}
