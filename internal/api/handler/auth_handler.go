package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/metrics"
	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

const (
	msgLoginRequired      = "Please log in to access that page."
	msgMissingCredentials = "Please provide both username and birthdate."
	msgInvalidCredentials = "Invalid username or birthdate. Please try again."
	msgUserExists         = "User already exists. Please log in instead."
	msgRegisterFailed     = "Failed to register user. Please try again."
)

// Sessions is the part of the session manager the auth pages need.
type Sessions interface {
	Start(c echo.Context, user domain.User) error
	Destroy(c echo.Context) error
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    Sessions
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions Sessions, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, logger: logger}
}

type credentialsForm struct {
	Name      string `form:"name"      validate:"required"`
	Birthdate string `form:"birthdate" validate:"required"`
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	msg := ""
	if c.QueryParam("redirectReason") == "authFailed" {
		msg = msgLoginRequired
	}
	return renderAuth(c, http.StatusOK, "login", "", msg)
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return renderAuth(c, http.StatusBadRequest, "login", form.Name, msgMissingCredentials)
	}

	user, err := h.authService.Login(c.Request().Context(), form.Name, form.Birthdate)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		if errors.Is(err, domain.ErrValidation) {
			return renderAuth(c, http.StatusBadRequest, "login", form.Name, msgMissingCredentials)
		}
		return renderAuth(c, http.StatusUnauthorized, "login", form.Name, msgInvalidCredentials)
	}

	if err := h.sessions.Start(c, *user); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return c.Redirect(http.StatusFound, "/")
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return renderAuth(c, http.StatusOK, "register", "", "")
}

// Register handles POST /register. A new user is logged in straight away.
func (h *AuthHandler) Register(c echo.Context) error {
	var form credentialsForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		return renderAuth(c, http.StatusBadRequest, "register", form.Name, msgMissingCredentials)
	}

	user, err := h.authService.Register(c.Request().Context(), form.Name, form.Birthdate)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserExists):
		return renderAuth(c, http.StatusConflict, "register", form.Name, msgUserExists)
	case errors.Is(err, domain.ErrValidation):
		return renderAuth(c, http.StatusBadRequest, "register", form.Name, msgMissingCredentials)
	default:
		h.logger.Error().Err(err).Msg("register failed")
		return renderAuth(c, http.StatusBadGateway, "register", form.Name, msgRegisterFailed)
	}

	if err := h.sessions.Start(c, *user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		h.logger.Warn().Err(err).Msg("destroy session failed")
	}
	return c.Redirect(http.StatusFound, "/")
}

func renderAuth(c echo.Context, status int, page, name, msg string) error {
	return render(c, status, page, echo.Map{"Name": name, "Message": msg})
}
