package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/folio-labs/folio-go/internal/chatbot"
	"github.com/folio-labs/folio-go/internal/platform/apispec"
	"github.com/folio-labs/folio-go/internal/platform/auth"
	"github.com/folio-labs/folio-go/internal/platform/objectstore"
	"github.com/folio-labs/folio-go/internal/repo/memory"
)

const (
	adminToken  = "admin-token"
	viewerToken = "viewer-token"
	uaFirefox   = "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0"
)

type staticAuthenticator struct{}

func (staticAuthenticator) Authenticate(_ context.Context, r *http.Request) (auth.Identity, error) {
	switch r.Header.Get("Authorization") {
	case "Bearer " + adminToken:
		return auth.Identity{Subject: "owner", Roles: []string{auth.RoleAdmin}}, nil
	case "Bearer " + viewerToken:
		return auth.Identity{Subject: "guest", Roles: []string{auth.RoleViewer}}, nil
	case "":
		return auth.Identity{}, auth.ErrUnauthenticated
	default:
		return auth.Identity{}, auth.ErrForbidden
	}
}

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	failPut error
}

type fakeObject struct {
	data        []byte
	contentType string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string]fakeObject{}}
}

func (m *fakeMedia) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.failPut != nil {
		return m.failPut
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = fakeObject{data: data, contentType: contentType}
	return nil
}

func (m *fakeMedia) Open(_ context.Context, key string) (io.ReadCloser, objectstore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, objectstore.Object{}, objectstore.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), objectstore.Object{
		Key:         key,
		ContentType: obj.contentType,
		SizeBytes:   int64(len(obj.data)),
		ETag:        "etag-" + key,
	}, nil
}

func (m *fakeMedia) List(_ context.Context, prefix string, limit int) ([]objectstore.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []objectstore.Object{}
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, objectstore.Object{Key: key, ContentType: obj.contentType, SizeBytes: int64(len(obj.data))})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *fakeMedia) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return objectstore.ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type testSite struct {
	t       *testing.T
	api     *siteAPI
	store   *memory.Store
	media   *fakeMedia
	handler http.Handler
	clock   time.Time
}

type testOption func(*siteAPIOptions)

func newTestSite(t *testing.T, options ...testOption) *testSite {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := memory.New()
	media := newFakeMedia()

	kb, err := chatbot.DefaultKnowledge()
	require.NoError(t, err)

	opts := siteAPIOptions{Media: media, PublicHost: "example.dev", MaxUpload: 1 << 20}
	for _, o := range options {
		o(&opts)
	}
	api, err := newSiteAPI(logger, store, chatbot.NewBot(kb), opts)
	require.NoError(t, err)

	site := &testSite{t: t, api: api, store: store, media: media, clock: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	api.now = func() time.Time { return site.clock }

	doc, err := apispec.Load(context.Background())
	require.NoError(t, err)
	validator, err := apispec.NewValidator(logger, doc)
	require.NoError(t, err)

	var authenticator auth.Authenticator = staticAuthenticator{}
	if opts.Tokens != nil {
		authenticator = opts.Tokens
	}
	mw := auth.Middleware{Logger: logger, Authenticator: authenticator, Authorize: auth.MethodRoleAuthorizer()}
	site.handler = newHandler(logger, handlerDeps{
		API:       api,
		Admin:     func(h http.HandlerFunc) http.Handler { return mw.Wrap(h) },
		Validator: validator,
	})
	return site
}

// do sends a JSON request. token may be empty for public routes.
func (s *testSite) do(method, target, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://example.dev"+target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", uaFirefox)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field"`
	RequestID string `json:"request_id"`
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, field string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decodeBody[errorBody](t, rec)
	require.Equal(t, code, body.Error)
	require.Equal(t, field, body.Field)
	require.NotEmpty(t, body.RequestID)
}
