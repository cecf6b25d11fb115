package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/metrics"
	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

const (
	msgSaveFailed   = "Failed to save part."
	msgUpdateFailed = "Failed to update part."
	msgEmptyUpload  = "Uploaded file is empty. Please choose another image."
)

type PartHandler struct {
	listing ports.ListingService
	catalog ports.CatalogService
	logger  zerolog.Logger
}

func NewPartHandler(listing ports.ListingService, catalog ports.CatalogService, logger zerolog.Logger) *PartHandler {
	return &PartHandler{listing: listing, catalog: catalog, logger: logger}
}

// CreateMenu handles GET /create.
func (h *PartHandler) CreateMenu(c echo.Context) error {
	return render(c, http.StatusOK, "create", nil)
}

// NewForm handles GET /create-part.
func (h *PartHandler) NewForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, partForm{}, nil, "")
}

// Create handles POST /create-part.
func (h *PartHandler) Create(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var form partForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, nil, "Invalid form submission.")
	}

	im, err := extractImages(c)
	if err != nil {
		return h.formError(c, form, nil, err, msgSaveFailed)
	}
	defer im.cleanup()

	if err := c.Validate(&form); err != nil {
		return h.formError(c, form, nil, err, msgSaveFailed)
	}

	if _, err := h.listing.Create(c.Request().Context(), user, form.toInput(im)); err != nil {
		return h.formError(c, form, nil, err, msgSaveFailed)
	}
	metrics.PartsCreatedTotal.Inc()
	return c.Redirect(http.StatusFound, "/my-items")
}

// EditForm handles GET /edit-part/:id. RequireOwner has already loaded the part.
func (h *PartHandler) EditForm(c echo.Context) error {
	part := middleware.OwnedPart(c)
	if part == nil {
		return domain.ErrPartNotFound
	}
	return h.renderForm(c, http.StatusOK, formFromPart(*part), part, "")
}

// Update handles POST /edit-part/:id.
func (h *PartHandler) Update(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	part := middleware.OwnedPart(c)

	var form partForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, http.StatusBadRequest, form, part, "Invalid form submission.")
	}

	im, err := extractImages(c)
	if err != nil {
		return h.formError(c, form, part, err, msgUpdateFailed)
	}
	defer im.cleanup()

	if err := c.Validate(&form); err != nil {
		return h.formError(c, form, part, err, msgUpdateFailed)
	}

	if _, err := h.listing.Update(c.Request().Context(), user, c.Param("id"), form.toInput(im)); err != nil {
		return h.formError(c, form, part, err, msgUpdateFailed)
	}
	metrics.PartsUpdatedTotal.Inc()
	return c.Redirect(http.StatusFound, "/my-items")
}

// Show handles GET /part/:id.
func (h *PartHandler) Show(c echo.Context) error {
	viewer := middleware.CurrentUser(c)
	view, err := h.catalog.GetPart(c.Request().Context(), viewer, c.Param("id"))
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "part", echo.Map{
		"Part":    view,
		"IsOwner": view.OwnedBy(viewer),
	})
}

// formError re-renders the form for errors the user can fix or retry and
// passes everything else on to the HTTP error handler.
func (h *PartHandler) formError(c echo.Context, form partForm, part *domain.Part, err error, saveMsg string) error {
	var (
		verr *domain.ValidationError
		uerr *UploadError
		up   *domain.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		return h.renderForm(c, http.StatusBadRequest, form, part, verr.Message)
	case errors.As(err, &uerr):
		return h.renderForm(c, http.StatusBadRequest, form, part, uerr.Message)
	case errors.Is(err, domain.ErrEmptyUpload):
		return h.renderForm(c, http.StatusBadRequest, form, part, msgEmptyUpload)
	case errors.As(err, &up):
		msg := saveMsg
		switch up.Stage {
		case domain.StageThumbnail:
			msg = "Thumbnail upload failed: " + up.Err.Error()
		case domain.StagePreview:
			msg = "Preview upload failed: " + up.Err.Error()
		}
		return h.renderForm(c, http.StatusBadGateway, form, part, msg)
	}
	return err
}

func (h *PartHandler) renderForm(c echo.Context, status int, form partForm, part *domain.Part, msg string) error {
	name, action := "create-part", "/create-part"
	if part != nil {
		name, action = "edit-part", "/edit-part/"+part.ID
	}
	return render(c, status, name, echo.Map{
		"Form":   form,
		"Part":   part,
		"Error":  msg,
		"Action": action,
	})
}
