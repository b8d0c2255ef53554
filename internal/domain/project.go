package domain

import (
	"slices"
	"strings"
	"time"
)

type ProjectCategory string

const (
	ProjectCategoryWeb     ProjectCategory = "web"
	ProjectCategoryMobile  ProjectCategory = "mobile"
	ProjectCategoryBackend ProjectCategory = "backend"
	ProjectCategoryData    ProjectCategory = "data"
	ProjectCategoryTooling ProjectCategory = "tooling"
	ProjectCategoryOther   ProjectCategory = "other"
)

var projectCategories = []ProjectCategory{
	ProjectCategoryWeb,
	ProjectCategoryMobile,
	ProjectCategoryBackend,
	ProjectCategoryData,
	ProjectCategoryTooling,
	ProjectCategoryOther,
}

func (c ProjectCategory) Valid() bool {
	return slices.Contains(projectCategories, c)
}

// Project is a portfolio showcase entry.
type Project struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Summary      string          `json:"summary"`
	Description  string          `json:"description"`
	Technologies []string        `json:"technologies"`
	Category     ProjectCategory `json:"category"`
	ImageURL     string          `json:"image_url,omitempty"`
	RepoURL      string          `json:"repo_url,omitempty"`
	LiveURL      string          `json:"live_url,omitempty"`
	Featured     bool            `json:"featured"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Normalize trims text, defaults the category and derives a missing slug.
func (p *Project) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Summary = strings.TrimSpace(p.Summary)
	p.Description = strings.TrimSpace(p.Description)
	p.Technologies = NormalizeList(p.Technologies)
	p.Category = ProjectCategory(strings.ToLower(strings.TrimSpace(string(p.Category))))
	if p.Category == "" {
		p.Category = ProjectCategoryOther
	}
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	} else {
		p.Slug = Slugify(p.Slug)
	}
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.RepoURL = strings.TrimSpace(p.RepoURL)
	p.LiveURL = strings.TrimSpace(p.LiveURL)
}

func (p Project) Validate() error {
	if err := requireText("title", p.Title, 200); err != nil {
		return err
	}
	if !ValidSlug(p.Slug) {
		return invalid("slug", CodeInvalid)
	}
	if err := maxLen("summary", p.Summary, 500); err != nil {
		return err
	}
	if !p.Category.Valid() {
		return invalid("category", CodeNotAllowed)
	}
	if len(p.Technologies) > 30 {
		return invalid("technologies", CodeTooLong)
	}
	if err := optionalURL("image_url", p.ImageURL); err != nil {
		return err
	}
	if err := optionalURL("repo_url", p.RepoURL); err != nil {
		return err
	}
	return optionalURL("live_url", p.LiveURL)
}
