package main

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
)

type projectRequest struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Category     string   `json:"category"`
	ImageURL     string   `json:"image_url"`
	RepoURL      string   `json:"repo_url"`
	LiveURL      string   `json:"live_url"`
	Featured     bool     `json:"featured"`
	DisplayOrder int      `json:"display_order"`
}

func (req projectRequest) applyTo(p *domain.Project) {
	p.Title = req.Title
	p.Slug = req.Slug
	p.Summary = req.Summary
	p.Description = req.Description
	p.Technologies = req.Technologies
	p.Category = domain.ProjectCategory(req.Category)
	p.ImageURL = req.ImageURL
	p.RepoURL = req.RepoURL
	p.LiveURL = req.LiveURL
	p.Featured = req.Featured
	p.DisplayOrder = req.DisplayOrder
	p.Normalize()
}

func projectAuditPayload(p domain.Project) map[string]any {
	return map[string]any{"slug": p.Slug, "title": p.Title, "featured": p.Featured}
}

func (api *siteAPI) handleListProjects(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.ProjectOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	featured, err := boolQuery(r, "featured")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter := repo.ProjectFilter{
		Featured:   featured,
		Technology: strings.TrimSpace(r.URL.Query().Get("technology")),
		ListParams: params,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		filter.Category = domain.ProjectCategory(strings.ToLower(raw))
		if !filter.Category.Valid() {
			api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeNotAllowed, "category")
			return
		}
	}

	projects, err := api.tx.Stores().Projects.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// handleGetProject accepts either the project id or its slug.
func (api *siteAPI) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ref, err := pathID(r, "ref")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	projects := api.tx.Stores().Projects
	var project domain.Project
	if uuid.Validate(ref) == nil {
		project, err = projects.Get(r.Context(), ref)
	} else {
		project, err = projects.GetBySlug(r.Context(), strings.ToLower(ref))
	}
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, project)
}

func (api *siteAPI) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	now := api.now().UTC()
	project := domain.Project{ID: api.newID(), CreatedAt: now, UpdatedAt: now}
	req.applyTo(&project)
	if err := project.Validate(); err != nil {
		api.writeServiceError(w, r, err)
		return
	}

	err := api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		if err := stores.Projects.Create(r.Context(), project); err != nil {
			return err
		}
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionCreate, "project", project.ID, projectAuditPayload(project)))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+project.ID)
	api.writeJSON(w, http.StatusCreated, project)
}

func (api *siteAPI) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}

	var updated domain.Project
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		project, err := stores.Projects.Get(r.Context(), id)
		if err != nil {
			return err
		}
		req.applyTo(&project)
		project.UpdatedAt = api.now().UTC()
		if err := project.Validate(); err != nil {
			return err
		}
		if err := stores.Projects.Update(r.Context(), project); err != nil {
			return err
		}
		updated = project
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpdate, "project", project.ID, projectAuditPayload(project)))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, updated)
}

func (api *siteAPI) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		project, err := stores.Projects.Get(r.Context(), id)
		if err != nil {
			return err
		}
		if err := stores.Projects.Delete(r.Context(), id); err != nil {
			return err
		}
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionDelete, "project", id, projectAuditPayload(project)))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
