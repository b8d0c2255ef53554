package main

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/objectstore"
	"github.com/folio-labs/folio-go/internal/repo"
)

const (
	mediaPrefix       = "media/"
	mediaListDefault  = 100
	mediaListMax      = 1000
	multipartOverhead = 1 << 20
	sniffLen          = 512
)

// countingReader hashes and counts what passes through and stops past limit.
type countingReader struct {
	r        io.Reader
	n        int64
	limit    int64
	exceeded bool
}

var errUploadTooLarge = errors.New("upload exceeds limit")

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n > c.limit {
		c.exceeded = true
		return n, errUploadTooLarge
	}
	return n, err
}

// mediaKey is media/YYYY/MM/<uuid>-<name><ext>.
func (api *siteAPI) mediaKey(filename, contentType string) string {
	now := api.now().UTC()
	base := path.Base(strings.TrimSpace(filename))
	stem := strings.TrimSuffix(base, path.Ext(base))
	name := domain.Slugify(stem)
	if name == "untitled" {
		name = "image"
	}
	return fmt.Sprintf("%s%04d/%02d/%s-%s%s", mediaPrefix, now.Year(), int(now.Month()), api.newID(), name, domain.ImageExtension(contentType))
}

// sniffImageType names the image type the leading bytes carry. AVIF is checked
// by its ftyp brand since http.DetectContentType does not know it.
func sniffImageType(head []byte) string {
	if len(head) >= 12 && bytes.Equal(head[4:8], []byte("ftyp")) {
		switch string(head[8:12]) {
		case "avif", "avis":
			return "image/avif"
		}
	}
	contentType, _ := domain.ImageContentType(http.DetectContentType(head))
	return contentType
}

func validMediaKey(key string) bool {
	if !strings.HasPrefix(key, mediaPrefix) || len(key) == len(mediaPrefix) {
		return false
	}
	return path.Clean(key) == key && !strings.Contains(key, "..")
}

func (api *siteAPI) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_multipart")
		return
	}

	var media *domain.Media
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				api.writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large")
				return
			}
			api.writeError(w, r, http.StatusBadRequest, "invalid_multipart")
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		if media != nil {
			_ = part.Close()
			api.removeMedia(r, media.Key)
			api.writeError(w, r, http.StatusBadRequest, "multiple_files_not_supported")
			return
		}

		contentType, ok := domain.ImageContentType(part.Header.Get("Content-Type"))
		if !ok {
			_ = part.Close()
			api.writeError(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type")
			return
		}

		br := bufio.NewReaderSize(part, sniffLen)
		head, err := br.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) {
			_ = part.Close()
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				api.writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large")
				return
			}
			api.writeError(w, r, http.StatusBadRequest, "invalid_multipart")
			return
		}
		if sniffImageType(head) != contentType {
			_ = part.Close()
			api.writeError(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type")
			return
		}

		key := api.mediaKey(part.FileName(), contentType)
		hasher := sha256.New()
		counter := &countingReader{r: io.TeeReader(br, hasher), limit: api.maxUpload}
		putErr := api.media.Put(r.Context(), key, counter, -1, contentType)
		_ = part.Close()
		if counter.exceeded {
			api.removeMedia(r, key)
			api.writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large")
			return
		}
		if putErr != nil {
			api.logger.Error("media upload failed", "request_id", r.Header.Get("X-Request-Id"), "key", key, "error", putErr)
			api.writeError(w, r, http.StatusBadGateway, "object_store_error")
			return
		}
		media = &domain.Media{
			Key:         key,
			URL:         "/api/" + key,
			ContentType: contentType,
			SizeBytes:   counter.n,
			SHA256:      hex.EncodeToString(hasher.Sum(nil)),
			UploadedAt:  api.now().UTC(),
		}
	}
	if media == nil {
		api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeRequired, "file")
		return
	}

	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpload, "media", media.Key, map[string]any{
			"content_type": media.ContentType,
			"size_bytes":   media.SizeBytes,
			"sha256":       media.SHA256,
		}))
	})
	if err != nil {
		api.removeMedia(r, media.Key)
		api.logger.Error("media audit failed", "request_id", r.Header.Get("X-Request-Id"), "error", err)
		api.writeError(w, r, http.StatusInternalServerError, "audit_failed")
		return
	}

	w.Header().Set("Location", media.URL)
	api.writeJSON(w, http.StatusCreated, media)
}

func (api *siteAPI) removeMedia(r *http.Request, key string) {
	if err := api.media.Remove(r.Context(), key); err != nil {
		api.logger.Warn("media cleanup failed", "request_id", r.Header.Get("X-Request-Id"), "key", key, "error", err)
	}
}

// handleGetMedia streams a public image.
func (api *siteAPI) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	key := mediaPrefix + strings.TrimPrefix(r.PathValue("key"), "/")
	if !validMediaKey(key) {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	body, obj, err := api.media.Open(r.Context(), key)
	if err != nil {
		api.writeMediaError(w, r, err)
		return
	}
	defer body.Close()

	if obj.ETag != "" {
		etag := `"` + obj.ETag + `"`
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; sandbox")
	if obj.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (api *siteAPI) handleListMedia(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))
	if prefix == "" {
		prefix = mediaPrefix
	}
	if !strings.HasPrefix(prefix, mediaPrefix) || strings.Contains(prefix, "..") {
		api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeInvalid, "prefix")
		return
	}
	limit := mediaListDefault
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeInvalid, "limit")
			return
		}
		limit = min(n, mediaListMax)
	}
	objects, err := api.media.List(r.Context(), prefix, limit)
	if err != nil {
		api.writeMediaError(w, r, err)
		return
	}
	out := make([]domain.Media, 0, len(objects))
	for _, obj := range objects {
		out = append(out, domain.Media{
			Key:         obj.Key,
			URL:         "/api/" + obj.Key,
			ContentType: obj.ContentType,
			SizeBytes:   obj.SizeBytes,
			UploadedAt:  obj.LastModified,
		})
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"media": out})
}

func (api *siteAPI) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	key := mediaPrefix + strings.TrimPrefix(r.PathValue("key"), "/")
	if !validMediaKey(key) {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	if err := api.media.Remove(r.Context(), key); err != nil {
		api.writeMediaError(w, r, err)
		return
	}
	err := api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionDelete, "media", key, nil))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *siteAPI) writeMediaError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, objectstore.ErrObjectNotFound) {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.logger.Error("object store failed", "request_id", r.Header.Get("X-Request-Id"), "error", err)
	api.writeError(w, r, http.StatusBadGateway, "object_store_error")
}
