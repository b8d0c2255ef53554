package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folio-labs/folio-go/internal/domain"
)

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func (s *testSite) upload(token string, parts ...filePart) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(s.t, err)
		_, err = w.Write(p.data)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "http://example.dev/api/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

var pngBytes = []byte("\x89PNG\r\n\x1a\nnot-really-a-png")

func TestMedia_UploadServeDelete(t *testing.T) {
	site := newTestSite(t)

	rec := site.upload(adminToken, filePart{field: "file", filename: "Hero Shot.PNG", contentType: "image/png", data: pngBytes})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	media := decodeBody[domain.Media](t, rec)
	require.True(t, strings.HasPrefix(media.Key, "media/2026/03/"), media.Key)
	require.True(t, strings.HasSuffix(media.Key, "-hero-shot.png"), media.Key)
	require.Equal(t, "/api/"+media.Key, media.URL)
	require.Equal(t, media.URL, rec.Header().Get("Location"))
	require.Equal(t, int64(len(pngBytes)), media.SizeBytes)
	sum := sha256.Sum256(pngBytes)
	require.Equal(t, hex.EncodeToString(sum[:]), media.SHA256)

	events := site.store.AuditEvents()
	require.Len(t, events, 1)
	require.Equal(t, "upload", events[0].Action)
	require.Equal(t, media.Key, events[0].ResourceID)

	rec = site.do(http.MethodGet, media.URL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Contains(t, rec.Header().Get("Content-Security-Policy"), "sandbox")
	require.Equal(t, pngBytes, rec.Body.Bytes())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "http://example.dev"+media.URL, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	site.handler.ServeHTTP(cached, req)
	require.Equal(t, http.StatusNotModified, cached.Code)
	require.Empty(t, cached.Body.Bytes())

	rec = site.do(http.MethodGet, "/api/media", viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Media []domain.Media `json:"media"`
	}](t, rec).Media
	require.Len(t, list, 1)
	require.Equal(t, media.Key, list[0].Key)

	requireError(t, site.do(http.MethodGet, "/api/media?prefix=secrets/", viewerToken, nil), http.StatusBadRequest, domain.CodeInvalid, "prefix")
	requireError(t, site.do(http.MethodGet, "/api/media?limit=0", viewerToken, nil), http.StatusBadRequest, domain.CodeInvalid, "limit")

	requireError(t, site.do(http.MethodDelete, media.URL, viewerToken, nil), http.StatusForbidden, "forbidden", "")
	require.Equal(t, http.StatusNoContent, site.do(http.MethodDelete, media.URL, adminToken, nil).Code)
	require.Equal(t, 0, site.media.count())
	requireError(t, site.do(http.MethodGet, media.URL, "", nil), http.StatusNotFound, "not_found", "")
	requireError(t, site.do(http.MethodDelete, media.URL, adminToken, nil), http.StatusNotFound, "not_found", "")
}

func TestSniffImageType(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want string
	}{
		{"png", pngBytes, "image/png"},
		{"jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF"), "image/jpeg"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), "image/avif"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), ""},
		{"html", []byte("<html><body>hi</body></html>"), ""},
		{"empty", nil, ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, sniffImageType(tc.head), tc.name)
	}
}

func TestMedia_UploadRejections(t *testing.T) {
	site := newTestSite(t, func(o *siteAPIOptions) { o.MaxUpload = 16 })

	requireError(t, site.upload("", filePart{field: "file", filename: "a.png", contentType: "image/png", data: pngBytes[:8]}), http.StatusUnauthorized, "unauthorized", "")
	requireError(t, site.upload(viewerToken, filePart{field: "file", filename: "a.png", contentType: "image/png", data: pngBytes[:8]}), http.StatusForbidden, "forbidden", "")

	requireError(t, site.upload(adminToken, filePart{field: "file", filename: "notes.txt", contentType: "text/plain", data: []byte("hello")}),
		http.StatusUnsupportedMediaType, "unsupported_media_type", "")
	requireError(t, site.upload(adminToken, filePart{field: "file", filename: "logo.svg", contentType: "image/svg+xml", data: []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)}),
		http.StatusUnsupportedMediaType, "unsupported_media_type", "")
	requireError(t, site.upload(adminToken, filePart{field: "file", filename: "page.png", contentType: "image/png", data: []byte("<html><script>alert(1)</script></html>")}),
		http.StatusUnsupportedMediaType, "unsupported_media_type", "")
	requireError(t, site.upload(adminToken, filePart{field: "attachment", filename: "a.png", contentType: "image/png", data: pngBytes[:8]}),
		http.StatusBadRequest, domain.CodeRequired, "file")
	requireError(t, site.upload(adminToken, filePart{field: "file", filename: "big.png", contentType: "image/png", data: append(slices.Clone(pngBytes[:8]), bytes.Repeat([]byte{1}, 64)...)}),
		http.StatusRequestEntityTooLarge, "payload_too_large", "")
	requireError(t, site.upload(adminToken,
		filePart{field: "file", filename: "a.png", contentType: "image/png", data: pngBytes[:8]},
		filePart{field: "file", filename: "b.png", contentType: "image/png", data: pngBytes[:8]},
	), http.StatusBadRequest, "multiple_files_not_supported", "")

	require.Equal(t, 0, site.media.count())
	require.Empty(t, site.store.AuditEvents())

	req := httptest.NewRequest(http.MethodPost, "http://example.dev/api/media", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	site.handler.ServeHTTP(rec, req)
	requireError(t, rec, http.StatusBadRequest, "invalid_multipart", "")
}

func TestMedia_StoreFailure(t *testing.T) {
	site := newTestSite(t)
	site.media.failPut = errors.New("bucket unavailable")

	requireError(t, site.upload(adminToken, filePart{field: "file", filename: "a.png", contentType: "image/png", data: pngBytes}),
		http.StatusBadGateway, "object_store_error", "")
	require.Empty(t, site.store.AuditEvents())
}

func TestMedia_RoutesAbsentWithoutStore(t *testing.T) {
	site := newTestSite(t, func(o *siteAPIOptions) { o.Media = nil })

	rec := site.do(http.MethodGet, "/api/media/2026/03/x.png", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
