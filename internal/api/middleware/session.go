package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// Context keys set by the session middleware.
const (
	ContextUserKey = "user"
	contextSIDKey  = "sid"
)

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionManager resolves the logged-in user of each request. The cookie
// carries only an HS256-signed token with the session id; the user record
// lives in the SessionStore.
type SessionManager struct {
	store  ports.SessionStore
	cfg    SessionConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewSessionManager(store ports.SessionStore, cfg SessionConfig, logger zerolog.Logger) *SessionManager {
	if cfg.CookieName == "" {
		cfg.CookieName = "pcparts_session"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &SessionManager{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// Middleware puts the current user (or nothing) into the echo context.
// A missing, forged or expired cookie simply means an anonymous request.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(m.cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			sid, err := m.parse(cookie.Value)
			if err != nil {
				m.logger.Debug().Err(err).Msg("ignoring invalid session cookie")
				return next(c)
			}

			user, err := m.store.Get(c.Request().Context(), sid)
			if err != nil {
				m.logger.Warn().Err(err).Msg("session lookup failed")
				return next(c)
			}
			c.Set(contextSIDKey, sid)
			if user != nil {
				c.Set(ContextUserKey, user)
			}
			return next(c)
		}
	}
}

// Start opens a fresh session for user, replacing any current one.
func (m *SessionManager) Start(c echo.Context, user domain.User) error {
	ctx := c.Request().Context()
	if old, ok := c.Get(contextSIDKey).(string); ok && old != "" {
		_ = m.store.Delete(ctx, old)
	}

	sid := uuid.NewString()
	if err := m.store.Save(ctx, sid, user, m.cfg.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	token, err := m.sign(sid)
	if err != nil {
		return err
	}

	c.SetCookie(m.cookie(token, int(m.cfg.TTL.Seconds())))
	c.Set(contextSIDKey, sid)
	c.Set(ContextUserKey, &user)
	return nil
}

// Destroy expires the cookie and logs the request out, then removes the
// stored session. The cookie is cleared even when the store delete fails.
func (m *SessionManager) Destroy(c echo.Context) error {
	sid, _ := c.Get(contextSIDKey).(string)

	c.SetCookie(m.cookie("", -1))
	c.Set(contextSIDKey, nil)
	c.Set(ContextUserKey, nil)

	if sid == "" {
		return nil
	}
	if err := m.store.Delete(c.Request().Context(), sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *SessionManager) sign(sid string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
	})
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if !tkn.Valid || claims.ID == "" {
		return "", errors.New("session token without id")
	}
	return claims.ID, nil
}

// CurrentUser returns the user resolved for this request, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(ContextUserKey).(*domain.User)
	return u
}
