package docstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pcparts/marketplace/internal/core/domain"
	"github.com/pcparts/marketplace/internal/core/service"
)

// fakeRemote serves a single JSON document on GET and replaces it on PUT.
// The first failGets GETs answer 503.
type fakeRemote struct {
	mu       sync.Mutex
	body     []byte
	status   int
	failGets int
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		http.Error(w, "boom", f.status)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if f.failGets > 0 {
			f.failGets--
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(f.body)
	case http.MethodPut:
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad content type", http.StatusUnsupportedMediaType)
			return
		}
		f.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(f.body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHTTPBackend_RoundTrip(t *testing.T) {
	remote := &fakeRemote{body: []byte(`{"users":[{"id":"1","name":"Alice","birthdate":"2000-01-01"}],"parts":[]}`)}
	srv := httptest.NewServer(remote)
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, time.Second)
	ctx := context.Background()

	doc, err := b.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	require.Equal(t, "Alice", doc.Users[0].Name)

	socket := "AM5"
	doc.Parts = append(doc.Parts, domain.Part{
		ID: "10", UserID: "1", Name: "Ryzen", Type: domain.TypeCPU, Socket: &socket,
		Price: 199.5, Hashtags: []string{"#amd"}, Previews: []string{}, IsPublic: true,
		ExtraDetails: []domain.ExtraDetail{}, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, b.Replace(ctx, doc))

	var stored map[string][]map[string]any
	require.NoError(t, json.Unmarshal(remote.body, &stored))
	require.Len(t, stored["parts"], 1)
	require.Equal(t, "1", stored["parts"][0]["userId"])
	require.Equal(t, "AM5", stored["parts"][0]["socket"])
	require.Nil(t, stored["parts"][0]["thumbnail"])

	again, err := b.Fetch(ctx)
	require.NoError(t, err)
	require.True(t, doc.Parts[0].CreatedAt.Equal(again.Parts[0].CreatedAt))
}

func TestHTTPBackend_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(&fakeRemote{status: http.StatusBadGateway})
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, time.Second)
	_, err := b.Fetch(context.Background())
	require.ErrorContains(t, err, "502")

	err = b.Replace(context.Background(), domain.EmptyDocument())
	require.ErrorContains(t, err, "502")
}

func TestHTTPBackend_Unreachable_ClientFailsOpen(t *testing.T) {
	srv := httptest.NewServer(&fakeRemote{})
	url := srv.URL
	srv.Close()

	c := NewClient(NewHTTPBackend(url, 200*time.Millisecond), "http", zerolog.Nop())
	doc := c.Load(context.Background())
	require.Empty(t, doc.Parts)
	require.Error(t, c.Save(context.Background(), doc))
}

func TestHTTPBackend_FailedFetchNeverOverwritesRemote(t *testing.T) {
	seed := `{"users":[{"id":"1","name":"Bob","birthdate":"1990-05-05"},{"id":"2","name":"Carol","birthdate":"1980-01-01"}],` +
		`"parts":[{"id":"10","userId":"1","name":"GPU","type":"Other","price":1,"hashtags":[],"previews":[],"isPublic":true,"extraDetails":[]}]}`
	remote := &fakeRemote{body: []byte(seed), failGets: 1}
	srv := httptest.NewServer(remote)
	defer srv.Close()

	store := NewClient(NewHTTPBackend(srv.URL, time.Second), "http", zerolog.Nop())
	auth := service.NewAuthService(store, service.NewClockIDs(), zerolog.Nop())

	_, err := auth.Register(context.Background(), "Alice", "2000-01-01")
	var uerr *domain.UpstreamError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, domain.StageLoad, uerr.Stage)
	require.JSONEq(t, seed, string(remote.body))

	// The retry sees the full document and keeps it.
	_, err = auth.Register(context.Background(), "Alice", "2000-01-01")
	require.NoError(t, err)

	doc, err := store.LoadForWrite(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Users, 3)
	require.Len(t, doc.Parts, 1)
}
