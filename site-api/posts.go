package main

import (
	"net/http"
	"strings"

	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
	"github.com/folio-labs/folio-go/internal/service/posts"
)

func (api *siteAPI) postFilter(r *http.Request) (repo.PostFilter, error) {
	params, err := api.listParams(r, repo.PostOrder)
	if err != nil {
		return repo.PostFilter{}, err
	}
	q := r.URL.Query()
	return repo.PostFilter{
		Tag:        strings.ToLower(strings.TrimSpace(q.Get("tag"))),
		Query:      strings.TrimSpace(q.Get("q")),
		ListParams: params,
	}, nil
}

// handleListPublishedPosts never shows drafts, whatever the query says.
func (api *siteAPI) handleListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := api.postFilter(r)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter.Published = boolPtr(true)
	out, err := api.posts.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (api *siteAPI) handleListAllPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := api.postFilter(r)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	if filter.Published, err = boolQuery(r, "published"); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	out, err := api.posts.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"posts": out})
}

func (api *siteAPI) handleReadPost(w http.ResponseWriter, r *http.Request) {
	slug, err := pathID(r, "slug")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	post, err := api.posts.ReadPublished(r.Context(), strings.ToLower(slug))
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, post)
}

func (api *siteAPI) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	post, err := api.posts.Get(r.Context(), id)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, post)
}

func (api *siteAPI) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in posts.Input
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	post, err := api.posts.Create(r.Context(), in, api.auditEvent(r, auditlog.ActionCreate, "post", "", nil))
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/admin/posts/"+post.ID)
	api.writeJSON(w, http.StatusCreated, post)
}

func (api *siteAPI) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var in posts.Input
	if err := decodeJSON(w, r, &in); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	post, err := api.posts.Update(r.Context(), id, in, api.auditEvent(r, auditlog.ActionUpdate, "post", id, nil))
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, post)
}

func (api *siteAPI) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	if err := api.posts.Delete(r.Context(), id, api.auditEvent(r, auditlog.ActionDelete, "post", id, nil)); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
