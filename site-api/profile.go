package main

import (
	"net/http"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
)

type testimonialRequest struct {
	AuthorName string `json:"author_name"`
	AuthorRole string `json:"author_role"`
	Company    string `json:"company"`
	AvatarURL  string `json:"avatar_url"`
	Content    string `json:"content"`
	Rating     int    `json:"rating"`
	Approved   bool   `json:"approved"`
	Featured   bool   `json:"featured"`
}

// testimonialSubmission is the public form; moderation flags are not accepted.
type testimonialSubmission struct {
	AuthorName string `json:"author_name"`
	AuthorRole string `json:"author_role"`
	Company    string `json:"company"`
	AvatarURL  string `json:"avatar_url"`
	Content    string `json:"content"`
	Rating     int    `json:"rating"`
}

func (req testimonialRequest) applyTo(t *domain.Testimonial) {
	t.AuthorName = req.AuthorName
	t.AuthorRole = req.AuthorRole
	t.Company = req.Company
	t.AvatarURL = req.AvatarURL
	t.Content = req.Content
	t.Rating = req.Rating
	t.Approved = req.Approved
	t.Featured = req.Featured
	t.Normalize()
}

func (api *siteAPI) handleListApprovedTestimonials(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.TestimonialOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	featured, err := boolQuery(r, "featured")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	out, err := api.tx.Stores().Testimonials.List(r.Context(), repo.TestimonialFilter{
		Approved:   boolPtr(true),
		Featured:   featured,
		ListParams: params,
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"testimonials": out})
}

func (api *siteAPI) handleListAllTestimonials(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.TestimonialOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter := repo.TestimonialFilter{ListParams: params}
	if filter.Approved, err = boolQuery(r, "approved"); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	if filter.Featured, err = boolQuery(r, "featured"); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	out, err := api.tx.Stores().Testimonials.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"testimonials": out})
}

// handleSubmitTestimonial stores a visitor submission for moderation.
func (api *siteAPI) handleSubmitTestimonial(w http.ResponseWriter, r *http.Request) {
	var req testimonialSubmission
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	now := api.now().UTC()
	testimonial := domain.Testimonial{ID: api.newID(), CreatedAt: now, UpdatedAt: now}
	testimonialRequest{
		AuthorName: req.AuthorName,
		AuthorRole: req.AuthorRole,
		Company:    req.Company,
		AvatarURL:  req.AvatarURL,
		Content:    req.Content,
		Rating:     req.Rating,
	}.applyTo(&testimonial)
	testimonial = testimonial.AsSubmission()
	if err := testimonial.Validate(); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	if err := api.tx.Stores().Testimonials.Create(r.Context(), testimonial); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, testimonial)
}

func (api *siteAPI) handleUpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var req testimonialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	var updated domain.Testimonial
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		testimonial, err := stores.Testimonials.Get(r.Context(), id)
		if err != nil {
			return err
		}
		req.applyTo(&testimonial)
		testimonial.UpdatedAt = api.now().UTC()
		if err := testimonial.Validate(); err != nil {
			return err
		}
		if err := stores.Testimonials.Update(r.Context(), testimonial); err != nil {
			return err
		}
		updated = testimonial
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpdate, "testimonial", id, map[string]any{
			"approved": testimonial.Approved,
			"featured": testimonial.Featured,
		}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, updated)
}

func (api *siteAPI) handleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	api.deleteByID(w, r, "testimonial", func(stores repo.Stores, id string) error {
		return stores.Testimonials.Delete(r.Context(), id)
	})
}

type skillRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Proficiency  int    `json:"proficiency"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
}

func (req skillRequest) applyTo(s *domain.Skill) {
	s.Name = req.Name
	s.Category = domain.SkillCategory(req.Category)
	s.Proficiency = req.Proficiency
	s.Icon = req.Icon
	s.DisplayOrder = req.DisplayOrder
	s.Normalize()
}

func (api *siteAPI) handleListSkills(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.SkillOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter := repo.SkillFilter{ListParams: params}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		filter.Category = domain.SkillCategory(strings.ToLower(raw))
		if !filter.Category.Valid() {
			api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeNotAllowed, "category")
			return
		}
	}
	out, err := api.tx.Stores().Skills.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"skills": out})
}

func (api *siteAPI) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	now := api.now().UTC()
	skill := domain.Skill{ID: api.newID(), CreatedAt: now, UpdatedAt: now}
	req.applyTo(&skill)
	if err := skill.Validate(); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	err := api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		if err := stores.Skills.Create(r.Context(), skill); err != nil {
			return err
		}
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionCreate, "skill", skill.ID, map[string]any{"name": skill.Name}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, skill)
}

func (api *siteAPI) handleUpdateSkill(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var req skillRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	var updated domain.Skill
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		skill, err := stores.Skills.Get(r.Context(), id)
		if err != nil {
			return err
		}
		req.applyTo(&skill)
		skill.UpdatedAt = api.now().UTC()
		if err := skill.Validate(); err != nil {
			return err
		}
		if err := stores.Skills.Update(r.Context(), skill); err != nil {
			return err
		}
		updated = skill
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpdate, "skill", id, map[string]any{"name": skill.Name}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, updated)
}

func (api *siteAPI) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	api.deleteByID(w, r, "skill", func(stores repo.Stores, id string) error {
		return stores.Skills.Delete(r.Context(), id)
	})
}

type experienceRequest struct {
	Kind         string      `json:"kind"`
	Title        string      `json:"title"`
	Organization string      `json:"organization"`
	Location     string      `json:"location"`
	StartDate    domain.Date `json:"start_date"`
	EndDate      domain.Date `json:"end_date"`
	Current      bool        `json:"current"`
	Description  string      `json:"description"`
	Highlights   []string    `json:"highlights"`
	Technologies []string    `json:"technologies"`
	DisplayOrder int         `json:"display_order"`
}

func (req experienceRequest) applyTo(e *domain.Experience) {
	e.Kind = domain.ExperienceKind(req.Kind)
	e.Title = req.Title
	e.Organization = req.Organization
	e.Location = req.Location
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate
	e.Current = req.Current
	e.Description = req.Description
	e.Highlights = req.Highlights
	e.Technologies = req.Technologies
	e.DisplayOrder = req.DisplayOrder
	e.Normalize()
}

func (api *siteAPI) handleListExperience(w http.ResponseWriter, r *http.Request) {
	params, err := api.listParams(r, repo.ExperienceOrder)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	filter := repo.ExperienceFilter{ListParams: params}
	if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
		filter.Kind = domain.ExperienceKind(strings.ToLower(raw))
		if !filter.Kind.Valid() {
			api.writeFieldError(w, r, http.StatusBadRequest, domain.CodeNotAllowed, "kind")
			return
		}
	}
	out, err := api.tx.Stores().Experience.List(r.Context(), filter)
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"experience": out})
}

func (api *siteAPI) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var req experienceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	now := api.now().UTC()
	entry := domain.Experience{ID: api.newID(), CreatedAt: now, UpdatedAt: now}
	req.applyTo(&entry)
	if err := entry.Validate(); err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	err := api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		if err := stores.Experience.Create(r.Context(), entry); err != nil {
			return err
		}
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionCreate, "experience", entry.ID, map[string]any{
			"title":        entry.Title,
			"organization": entry.Organization,
		}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, entry)
}

func (api *siteAPI) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	var req experienceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		api.writeDecodeError(w, r, err)
		return
	}
	var updated domain.Experience
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		entry, err := stores.Experience.Get(r.Context(), id)
		if err != nil {
			return err
		}
		req.applyTo(&entry)
		entry.UpdatedAt = api.now().UTC()
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := stores.Experience.Update(r.Context(), entry); err != nil {
			return err
		}
		updated = entry
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionUpdate, "experience", id, map[string]any{
			"title":        entry.Title,
			"organization": entry.Organization,
		}))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, updated)
}

func (api *siteAPI) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	api.deleteByID(w, r, "experience", func(stores repo.Stores, id string) error {
		return stores.Experience.Delete(r.Context(), id)
	})
}

// deleteByID removes one row and audits it in the same transaction.
func (api *siteAPI) deleteByID(w http.ResponseWriter, r *http.Request, resourceType string, remove func(repo.Stores, string) error) {
	id, err := pathID(r, "id")
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	err = api.tx.InTx(r.Context(), func(stores repo.Stores) error {
		if err := remove(stores, id); err != nil {
			return err
		}
		return api.appendAudit(r.Context(), stores, api.auditEvent(r, auditlog.ActionDelete, resourceType, id, nil))
	})
	if err != nil {
		api.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
