package handler

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

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pcparts/marketplace/internal/api/middleware"
	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Renderer
// ---------------------------------------------------------------------------

// recordingRenderer remembers the last page rendered instead of producing HTML.
type recordingRenderer struct {
	name string
	data echo.Map
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data, _ = data.(echo.Map)
	_, err := io.WriteString(w, name)
	return err
}

func (r *recordingRenderer) message(key string) string {
	s, _ := r.data[key].(string)
	return s
}

func newEcho() (*echo.Echo, *recordingRenderer) {
	e := echo.New()
	r := &recordingRenderer{}
	e.Renderer = r
	e.Validator = NewValidator()
	return e, r
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

type stubAuth struct {
	register func(name, birthdate string) (*domain.User, error)
	login    func(name, birthdate string) (*domain.User, error)
}

func (s *stubAuth) Register(_ context.Context, name, birthdate string) (*domain.User, error) {
	return s.register(name, birthdate)
}

func (s *stubAuth) Login(_ context.Context, name, birthdate string) (*domain.User, error) {
	return s.login(name, birthdate)
}

type stubSessions struct {
	started   *domain.User
	destroyed bool
	startErr  error
}

func (s *stubSessions) Start(_ echo.Context, user domain.User) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = &user
	return nil
}

func (s *stubSessions) Destroy(echo.Context) error {
	s.destroyed = true
	return nil
}

type stubListing struct {
	create func(owner domain.User, in ports.PartInput) (*domain.Part, error)
	update func(requester domain.User, id string, in ports.PartInput) (*domain.Part, error)
}

func (s *stubListing) Create(_ context.Context, owner domain.User, in ports.PartInput) (*domain.Part, error) {
	return s.create(owner, in)
}

func (s *stubListing) Update(_ context.Context, requester domain.User, id string, in ports.PartInput) (*domain.Part, error) {
	return s.update(requester, id, in)
}

func (s *stubListing) AuthorizeOwner(context.Context, domain.User, string) (*domain.Part, error) {
	return nil, domain.ErrForbidden
}

type stubCatalog struct {
	ports.CatalogService
	browse  func(viewer *domain.User, q ports.PartQuery) []ports.PartView
	getPart func(viewer *domain.User, id string) (*ports.PartView, error)
	myItems func(viewer *domain.User) []ports.PartView
}

func (s *stubCatalog) Browse(_ context.Context, viewer *domain.User, q ports.PartQuery) []ports.PartView {
	return s.browse(viewer, q)
}

func (s *stubCatalog) GetPart(_ context.Context, viewer *domain.User, id string) (*ports.PartView, error) {
	return s.getPart(viewer, id)
}

func (s *stubCatalog) MyItems(_ context.Context, viewer *domain.User) []ports.PartView {
	return s.myItems(viewer)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

var (
	alice = domain.User{ID: "1", Name: "alice", Birthdate: "1990-01-01"}
	bob   = domain.User{ID: "2", Name: "bob", Birthdate: "1985-05-05"}

	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

type filePart struct {
	field, name string
	body        []byte
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func multipartRequest(t *testing.T, target string, values url.Values, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := fw.Write(f.body); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// loggedIn attaches user to the context the way the session middleware does.
func loggedIn(c echo.Context, user domain.User) {
	c.Set(middleware.ContextUserKey, &user)
}

var discard = zerolog.Nop()
