package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/api/view"
	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
	"github.com/pcparts/marketplace/internal/core/service"
	"github.com/pcparts/marketplace/internal/infrastructure/docstore"
	"github.com/pcparts/marketplace/internal/infrastructure/session"
)

type fakeMedia struct{}

func (fakeMedia) Upload(_ context.Context, variant ports.ImageVariant, img ports.ImageUpload) (string, error) {
	return "https://cdn.test/" + string(variant) + "/" + img.Filename, nil
}

type testApp struct {
	e       *echo.Echo
	backend *docstore.MemoryBackend
}

func newTestApp(t *testing.T, limiter *middleware.RateLimiter) *testApp {
	t.Helper()
	log := zerolog.Nop()

	backend := docstore.NewMemoryBackend(nil)
	store := docstore.NewClient(backend, "memory", log)
	ids := service.NewClockIDs()
	listing := service.NewListingService(store, fakeMedia{}, ids, log)

	renderer, err := view.New()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Auth:    service.NewAuthService(store, ids, log),
		Listing: listing,
		Catalog: service.NewCatalogService(store),
		Sessions: middleware.NewSessionManager(session.NewMemoryStore(), middleware.SessionConfig{
			Secret: "test-secret",
			TTL:    time.Hour,
		}, log),
		Limiter:    limiter,
		Renderer:   renderer,
		Readiness:  map[string]ports.Pinger{"docstore": store},
		Logger:     log,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testApp{e: e, backend: backend}
}

// browser keeps the session cookie between requests.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) postPart(path string, values url.Values, thumbnail []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(b.t, w.WriteField(k, v))
		}
	}
	if thumbnail != nil {
		fw, err := w.CreateFormFile("thumbnail", "thumb.png")
		require.NoError(b.t, err)
		_, err = io.Copy(fw, bytes.NewReader(thumbnail))
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return b.do(req)
}

func (a *testApp) parts(t *testing.T) []domain.Part {
	doc, err := a.backend.Fetch(context.Background())
	require.NoError(t, err)
	return doc.Parts
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestRouter_ListingFlow(t *testing.T) {
	app := newTestApp(t, nil)
	alice := app.browser(t)

	rec := alice.get("/create")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, LoginRedirect, rec.Header().Get("Location"))

	rec = alice.get(LoginRedirect)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Please log in to access that page.")

	rec = alice.postForm("/register", url.Values{"name": {"alice"}, "birthdate": {"1990-01-01"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	rec = alice.postPart("/create-part", url.Values{
		"name":               {"Ryzen 7 7800X3D"},
		"type":               {domain.TypeCPU},
		"socket":             {"AM5"},
		"price":              {"449.50"},
		"hashtags":           {"amd, gaming"},
		"isPublic":           {"true"},
		"extraDetailsNames":  {"Cores"},
		"extraDetailsValues": {"8"},
	}, pngBytes)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	require.Equal(t, "/my-items", rec.Header().Get("Location"))

	parts := app.parts(t)
	require.Len(t, parts, 1)
	part := parts[0]
	require.Equal(t, []string{"#amd", "#gaming"}, part.Hashtags)
	require.NotNil(t, part.Socket)
	require.Equal(t, "AM5", *part.Socket)
	require.NotNil(t, part.Thumbnail)
	require.Equal(t, "https://cdn.test/thumbnail/thumb.png", *part.Thumbnail)

	anon := app.browser(t)
	rec = anon.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ryzen 7 7800X3D")
	require.Contains(t, rec.Body.String(), "by <a href=\"/user/"+part.UserID+"\">alice</a>")

	rec = anon.get("/hashtag/amd")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ryzen 7 7800X3D")

	rec = alice.get("/my-items")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Ryzen 7 7800X3D")

	// A second user may look but not edit.
	bob := app.browser(t)
	rec = bob.postForm("/register", url.Values{"name": {"bob"}, "birthdate": {"1985-05-05"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = bob.get("/edit-part/" + part.ID)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = bob.postPart("/edit-part/"+part.ID, url.Values{"name": {"stolen"}, "type": {domain.TypeCPU}}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Ryzen 7 7800X3D", app.parts(t)[0].Name)

	// The owner makes it private and keeps the thumbnail.
	rec = alice.postPart("/edit-part/"+part.ID, url.Values{
		"name":     {"Ryzen 7 7800X3D (boxed)"},
		"type":     {domain.TypeCPU},
		"price":    {"430"},
		"hashtags": {"amd"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	updated := app.parts(t)[0]
	require.False(t, updated.IsPublic)
	require.Equal(t, 430.0, updated.Price)
	require.NotNil(t, updated.Thumbnail)
	require.Equal(t, *part.Thumbnail, *updated.Thumbnail)
	require.NotNil(t, updated.UpdatedAt)

	require.Equal(t, http.StatusForbidden, bob.get("/part/"+part.ID).Code)
	for _, path := range []string{"/", "/hashtag/amd"} {
		require.NotContains(t, anon.get(path).Body.String(), "Ryzen 7 7800X3D", path)
		require.NotContains(t, bob.get(path).Body.String(), "Ryzen 7 7800X3D", path)
		require.Contains(t, alice.get(path).Body.String(), "Ryzen 7 7800X3D (boxed)", path)
	}
	require.Equal(t, http.StatusOK, alice.get("/part/"+part.ID).Code)
	require.Equal(t, http.StatusNotFound, alice.get("/part/does-not-exist").Code)

	rec = alice.get("/logout")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusFound, alice.get("/create").Code)
}

func TestRouter_LoginRejectsUnknownUser(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser(t)

	rec := b.postForm("/login", url.Values{"name": {"ghost"}, "birthdate": {"2000-01-01"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, b.cookies)

	rec = b.postForm("/register", url.Values{"name": {"ghost"}, "birthdate": {"2000-01-01"}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = app.browser(t).postForm("/register", url.Values{"name": {"ghost"}, "birthdate": {"2000-01-01"}})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = app.browser(t).postForm("/login", url.Values{"name": {"ghost"}, "birthdate": {"2000-01-01"}})
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestRouter_UnknownUserPage(t *testing.T) {
	app := newTestApp(t, nil)
	require.Equal(t, http.StatusNotFound, app.browser(t).get("/user/404").Code)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	app := newTestApp(t, middleware.NewRateLimiter(0.001, 1, time.Minute))
	b := app.browser(t)

	creds := url.Values{"name": {"x"}, "birthdate": {"y"}}
	require.Equal(t, http.StatusUnauthorized, b.postForm("/login", creds).Code)

	rec := b.postForm("/login", creds)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))

	spoofed := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(creds.Encode()))
	spoofed.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	spoofed.Header.Set(echo.HeaderXForwardedFor, "198.51.100.99")
	require.Equal(t, http.StatusTooManyRequests, b.do(spoofed).Code)

	// Page views are not throttled.
	require.Equal(t, http.StatusOK, b.get("/login").Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)
	b := app.browser(t)

	require.Equal(t, http.StatusOK, b.get("/health").Code)

	rec := b.get("/health/ready")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"docstore":{"status":"ok"}`)

	rec = b.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "marketplace_requests_total")
}
