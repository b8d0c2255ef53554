package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const projectColumns = `project_id, title, slug, summary, description, technologies, category,
	image_url, repo_url, live_url, featured, display_order, created_at, updated_at`

var projectOrderColumns = map[string]string{
	"display_order": "display_order",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"title":         "lower(title)",
}

type ProjectStore struct {
	db DB
}

func NewProjectStore(db DB) *ProjectStore {
	if db == nil {
		return nil
	}
	return &ProjectStore{db: db}
}

func (s *ProjectStore) Create(ctx context.Context, project domain.Project) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("project store not initialized")
	}
	if err := project.Validate(); err != nil {
		return err
	}
	techJSON, err := encodeList(project.Technologies)
	if err != nil {
		return fmt.Errorf("encode technologies: %w", err)
	}
	createdAt := normalizeTime(project.CreatedAt)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		strings.TrimSpace(project.ID),
		project.Title,
		project.Slug,
		project.Summary,
		project.Description,
		techJSON,
		string(project.Category),
		project.ImageURL,
		project.RepoURL,
		project.LiveURL,
		project.Featured,
		project.DisplayOrder,
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert project", err)
	}
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (domain.Project, error) {
	if s == nil || s.db == nil {
		return domain.Project{}, fmt.Errorf("project store not initialized")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE project_id = $1`, strings.TrimSpace(id))
	project, err := scanProject(row)
	if err != nil {
		return domain.Project{}, handleNotFound(err)
	}
	return project, nil
}

func (s *ProjectStore) GetBySlug(ctx context.Context, slug string) (domain.Project, error) {
	if s == nil || s.db == nil {
		return domain.Project{}, fmt.Errorf("project store not initialized")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, strings.TrimSpace(slug))
	project, err := scanProject(row)
	if err != nil {
		return domain.Project{}, handleNotFound(err)
	}
	return project, nil
}

func (s *ProjectStore) List(ctx context.Context, filter repo.ProjectFilter) ([]domain.Project, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("project store not initialized")
	}
	query, args := buildProjectListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]domain.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func buildProjectListQuery(filter repo.ProjectFilter) (string, []any) {
	var b queryBuilder
	if category := strings.TrimSpace(string(filter.Category)); category != "" {
		b.where("category = " + b.arg(category))
	}
	if filter.Featured != nil {
		b.where("featured = " + b.arg(*filter.Featured))
	}
	if tech := strings.TrimSpace(filter.Technology); tech != "" {
		b.where("EXISTS (SELECT 1 FROM jsonb_array_elements_text(technologies) AS t(name) WHERE lower(t.name) = lower(" + b.arg(tech) + "))")
	}
	query := b.finish(`SELECT `+projectColumns+` FROM projects`, projectOrderColumns, filter.OrderBy, "project_id", filter.ListParams)
	return query, b.args
}

func (s *ProjectStore) Update(ctx context.Context, project domain.Project) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("project store not initialized")
	}
	if err := project.Validate(); err != nil {
		return err
	}
	techJSON, err := encodeList(project.Technologies)
	if err != nil {
		return fmt.Errorf("encode technologies: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE projects SET
			title = $2, slug = $3, summary = $4, description = $5, technologies = $6,
			category = $7, image_url = $8, repo_url = $9, live_url = $10, featured = $11,
			display_order = $12, updated_at = $13
		 WHERE project_id = $1`,
		strings.TrimSpace(project.ID),
		project.Title,
		project.Slug,
		project.Summary,
		project.Description,
		techJSON,
		string(project.Category),
		project.ImageURL,
		project.RepoURL,
		project.LiveURL,
		project.Featured,
		project.DisplayOrder,
		normalizeTime(project.UpdatedAt),
	)
	if err != nil {
		return handleWriteError("update project", err)
	}
	return requireAffected(res)
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("project store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireAffected(res)
}

func scanProject(row rowScanner) (domain.Project, error) {
	var (
		p        domain.Project
		techJSON []byte
		category string
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Summary, &p.Description, &techJSON, &category,
		&p.ImageURL, &p.RepoURL, &p.LiveURL, &p.Featured, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Project{}, err
	}
	techs, err := decodeList(techJSON)
	if err != nil {
		return domain.Project{}, fmt.Errorf("decode technologies: %w", err)
	}
	p.Technologies = techs
	p.Category = domain.ProjectCategory(category)
	return p, nil
}
