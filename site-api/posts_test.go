package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folio-labs/folio-go/internal/domain"
)

type postList struct {
	Posts []domain.Post `json:"posts"`
}

func TestPosts_DraftsStayPrivate(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/posts", adminToken, map[string]any{
		"title":   "Work in Progress",
		"content": "Not ready yet.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draft := decodeBody[domain.Post](t, rec)
	require.False(t, draft.Published)
	require.Nil(t, draft.PublishedAt)

	requireError(t, site.do(http.MethodGet, "/api/posts/work-in-progress", "", nil), http.StatusNotFound, "not_found", "")

	rec = site.do(http.MethodGet, "/api/posts?published=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody[postList](t, rec).Posts)

	rec = site.do(http.MethodGet, "/api/admin/posts?published=false", viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[postList](t, rec).Posts, 1)

	rec = site.do(http.MethodGet, "/api/admin/posts/"+draft.ID, viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	requireError(t, site.do(http.MethodGet, "/api/admin/posts", "", nil), http.StatusUnauthorized, "unauthorized", "")
	requireError(t, site.do(http.MethodGet, "/api/admin/posts?published=sometimes", viewerToken, nil), http.StatusBadRequest, domain.CodeInvalid, "published")
}

func TestPosts_PublishReadAndSlugs(t *testing.T) {
	site := newTestSite(t)

	body := map[string]any{
		"title":     "Hello World",
		"content":   "Go is a pleasant language to build services with.",
		"tags":      []string{"Go", "go", "Backend"},
		"published": true,
	}
	rec := site.do(http.MethodPost, "/api/posts", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[domain.Post](t, rec)
	require.Equal(t, "hello-world", first.Slug)
	require.Equal(t, []string{"go", "backend"}, first.Tags)
	require.NotNil(t, first.PublishedAt)
	require.Equal(t, 1, first.ReadTimeMinutes)
	require.NotEmpty(t, first.Excerpt)

	rec = site.do(http.MethodPost, "/api/posts", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "hello-world-2", decodeBody[domain.Post](t, rec).Slug)

	for want := int64(1); want <= 2; want++ {
		rec = site.do(http.MethodGet, "/api/posts/Hello-World", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, want, decodeBody[domain.Post](t, rec).Views)
	}

	rec = site.do(http.MethodGet, "/api/posts?tag=GO", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[postList](t, rec).Posts, 2)

	rec = site.do(http.MethodPut, "/api/posts/"+first.ID, adminToken, map[string]any{
		"title":   "Hello World",
		"content": "Unpublished for edits.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	requireError(t, site.do(http.MethodGet, "/api/posts/hello-world", "", nil), http.StatusNotFound, "not_found", "")

	requireError(t, site.do(http.MethodDelete, "/api/posts/"+first.ID, viewerToken, nil), http.StatusForbidden, "forbidden", "")
	require.Equal(t, http.StatusNoContent, site.do(http.MethodDelete, "/api/posts/"+first.ID, adminToken, nil).Code)
	requireError(t, site.do(http.MethodGet, "/api/admin/posts/"+first.ID, adminToken, nil), http.StatusNotFound, "not_found", "")

	var actions []string
	for _, event := range site.store.AuditEvents() {
		if event.ResourceType == "post" {
			actions = append(actions, event.Action)
		}
	}
	require.Equal(t, []string{"create", "create", "update", "delete"}, actions)
}

func TestPosts_Validation(t *testing.T) {
	site := newTestSite(t)

	requireError(t, site.do(http.MethodPost, "/api/posts", adminToken, map[string]any{"title": "No body"}), http.StatusBadRequest, domain.CodeRequired, "content")
	requireError(t, site.do(http.MethodPost, "/api/posts", adminToken, map[string]any{"content": "No title"}), http.StatusBadRequest, domain.CodeRequired, "title")
	requireError(t, site.do(http.MethodPut, "/api/posts/missing", adminToken, map[string]any{"title": "x", "content": "y"}), http.StatusNotFound, "not_found", "")
	require.Empty(t, site.store.AuditEvents())
}
