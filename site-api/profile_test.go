package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/folio-labs/folio-go/internal/domain"
)

type testimonialList struct {
	Testimonials []domain.Testimonial `json:"testimonials"`
}

func TestTestimonials_SubmitAndModerate(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/testimonials", "", map[string]any{
		"author_name": "  Ada  ",
		"company":     "Analytical Engines",
		"content":     "Delivered ahead of schedule.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decodeBody[domain.Testimonial](t, rec)
	require.Equal(t, "Ada", submitted.AuthorName)
	require.Equal(t, 5, submitted.Rating)
	require.False(t, submitted.Approved)
	require.Empty(t, site.store.AuditEvents())

	rec = site.do(http.MethodGet, "/api/testimonials", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeBody[testimonialList](t, rec).Testimonials)

	rec = site.do(http.MethodGet, "/api/admin/testimonials?approved=false", viewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody[testimonialList](t, rec).Testimonials, 1)

	rec = site.do(http.MethodPut, "/api/testimonials/"+submitted.ID, adminToken, map[string]any{
		"author_name": "Ada",
		"company":     "Analytical Engines",
		"content":     "Delivered ahead of schedule.",
		"rating":      5,
		"approved":    true,
		"featured":    true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = site.do(http.MethodGet, "/api/testimonials?featured=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[testimonialList](t, rec).Testimonials
	require.Len(t, list, 1)
	require.True(t, list[0].Approved)

	require.Equal(t, http.StatusNoContent, site.do(http.MethodDelete, "/api/testimonials/"+submitted.ID, adminToken, nil).Code)
	requireError(t, site.do(http.MethodDelete, "/api/testimonials/"+submitted.ID, adminToken, nil), http.StatusNotFound, "not_found", "")

	events := site.store.AuditEvents()
	require.Len(t, events, 2)
	require.Equal(t, "update", events[0].Action)
	require.Equal(t, "delete", events[1].Action)
	require.Equal(t, submitted.ID, events[1].ResourceID)
}

func TestTestimonials_SubmissionCannotSelfApprove(t *testing.T) {
	site := newTestSite(t)

	requireError(t, site.do(http.MethodPost, "/api/testimonials", "", map[string]any{
		"author_name": "Mallory",
		"content":     "Best ever.",
		"approved":    true,
	}), http.StatusBadRequest, "invalid_json", "")

	rec := site.do(http.MethodPost, "/api/testimonials", "", map[string]any{
		"author_name": "Mallory",
		"content":     "Best ever.",
		"rating":      9,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeBody[errorBody](t, rec).Error)

	rec = site.do(http.MethodPost, "/api/testimonials", "", map[string]any{"content": "anonymous"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeBody[errorBody](t, rec).Error)
}

func TestSkills_CRUD(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/skills", adminToken, map[string]any{"name": "Go", "category": "Backend", "proficiency": 90})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goSkill := decodeBody[domain.Skill](t, rec)
	require.Equal(t, domain.SkillCategoryBackend, goSkill.Category)

	rec = site.do(http.MethodPost, "/api/skills", adminToken, map[string]any{"name": "Figma"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, domain.SkillCategoryOther, decodeBody[domain.Skill](t, rec).Category)

	requireError(t, site.do(http.MethodPost, "/api/skills", adminToken, map[string]any{"name": "Rust", "proficiency": 101}), http.StatusBadRequest, domain.CodeOutOfRange, "proficiency")
	requireError(t, site.do(http.MethodPost, "/api/skills", adminToken, map[string]any{"name": "Rust", "category": "magic"}), http.StatusBadRequest, domain.CodeNotAllowed, "category")
	requireError(t, site.do(http.MethodGet, "/api/skills?category=magic", "", nil), http.StatusBadRequest, domain.CodeNotAllowed, "category")

	rec = site.do(http.MethodGet, "/api/skills?category=backend", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	skills := decodeBody[struct {
		Skills []domain.Skill `json:"skills"`
	}](t, rec).Skills
	require.Len(t, skills, 1)
	require.Equal(t, "Go", skills[0].Name)

	rec = site.do(http.MethodPut, "/api/skills/"+goSkill.ID, adminToken, map[string]any{"name": "Go", "category": "languages", "proficiency": 95})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 95, decodeBody[domain.Skill](t, rec).Proficiency)

	require.Equal(t, http.StatusNoContent, site.do(http.MethodDelete, "/api/skills/"+goSkill.ID, adminToken, nil).Code)
	requireError(t, site.do(http.MethodPut, "/api/skills/"+goSkill.ID, adminToken, map[string]any{"name": "Go"}), http.StatusNotFound, "not_found", "")
}

func TestExperience_Dates(t *testing.T) {
	site := newTestSite(t)

	rec := site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"title":        "Backend Engineer",
		"organization": "Acme",
		"start_date":   "2022-01-10",
		"current":      true,
		"highlights":   []string{"Shipped the billing API", "Shipped the billing API"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeBody[domain.Experience](t, rec)
	require.Equal(t, domain.ExperienceWork, entry.Kind)
	require.Equal(t, "2022-01-10", entry.StartDate.String())
	require.True(t, entry.EndDate.IsZero())
	require.Equal(t, []string{"Shipped the billing API"}, entry.Highlights)

	requireError(t, site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"title": "Intern", "organization": "Acme",
	}), http.StatusBadRequest, domain.CodeRequired, "start_date")
	requireError(t, site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"title": "Intern", "organization": "Acme", "start_date": "2020-06-01", "end_date": "2020-01-01",
	}), http.StatusBadRequest, domain.CodeOutOfRange, "end_date")
	requireError(t, site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"title": "Intern", "organization": "Acme", "start_date": "2020-06-01", "end_date": "2021-01-01", "current": true,
	}), http.StatusBadRequest, domain.CodeNotAllowed, "end_date")
	requireError(t, site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"title": "Intern", "organization": "Acme", "start_date": "June 2020",
	}), http.StatusBadRequest, "invalid_json", "")

	rec = site.do(http.MethodPost, "/api/experience", adminToken, map[string]any{
		"kind": "education", "title": "BSc", "organization": "University", "start_date": "2015-09-01", "end_date": "2019-06-30",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = site.do(http.MethodGet, "/api/experience?kind=education", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[struct {
		Experience []domain.Experience `json:"experience"`
	}](t, rec).Experience
	require.Len(t, list, 1)
	require.Equal(t, "2019-06-30", list[0].EndDate.String())

	requireError(t, site.do(http.MethodGet, "/api/experience?kind=hobby", "", nil), http.StatusBadRequest, domain.CodeNotAllowed, "kind")

	rec = site.do(http.MethodPut, "/api/experience/"+entry.ID, adminToken, map[string]any{
		"title": "Staff Engineer", "organization": "Acme", "start_date": "2022-01-10", "end_date": "2026-02-28",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.False(t, decodeBody[domain.Experience](t, rec).Current)

	require.Equal(t, http.StatusNoContent, site.do(http.MethodDelete, "/api/experience/"+entry.ID, adminToken, nil).Code)
}
