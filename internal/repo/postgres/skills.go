package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const skillColumns = `skill_id, name, category, proficiency, icon, display_order, created_at, updated_at`

var skillOrderColumns = map[string]string{
	"category":      "category",
	"display_order": "display_order",
	"name":          "lower(name)",
	"proficiency":   "proficiency",
}

type SkillStore struct {
	db DB
}

func NewSkillStore(db DB) *SkillStore {
	if db == nil {
		return nil
	}
	return &SkillStore{db: db}
}

func (s *SkillStore) Create(ctx context.Context, skill domain.Skill) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("skill store not initialized")
	}
	if err := skill.Validate(); err != nil {
		return err
	}
	createdAt := normalizeTime(skill.CreatedAt)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO skills (`+skillColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		strings.TrimSpace(skill.ID),
		skill.Name,
		string(skill.Category),
		skill.Proficiency,
		skill.Icon,
		skill.DisplayOrder,
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert skill", err)
	}
	return nil
}

func (s *SkillStore) Get(ctx context.Context, id string) (domain.Skill, error) {
	if s == nil || s.db == nil {
		return domain.Skill{}, fmt.Errorf("skill store not initialized")
	}
	skill, err := scanSkill(s.db.QueryRowContext(ctx, `SELECT `+skillColumns+` FROM skills WHERE skill_id = $1`, strings.TrimSpace(id)))
	if err != nil {
		return domain.Skill{}, handleNotFound(err)
	}
	return skill, nil
}

func (s *SkillStore) List(ctx context.Context, filter repo.SkillFilter) ([]domain.Skill, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("skill store not initialized")
	}
	query, args := buildSkillListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Skill, 0)
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return out, nil
}

func buildSkillListQuery(filter repo.SkillFilter) (string, []any) {
	var b queryBuilder
	if category := strings.TrimSpace(string(filter.Category)); category != "" {
		b.where("category = " + b.arg(category))
	}
	query := b.finish(`SELECT `+skillColumns+` FROM skills`, skillOrderColumns, filter.OrderBy, "skill_id", filter.ListParams)
	return query, b.args
}

func (s *SkillStore) Update(ctx context.Context, skill domain.Skill) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("skill store not initialized")
	}
	if err := skill.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE skills SET name = $2, category = $3, proficiency = $4, icon = $5, display_order = $6, updated_at = $7
		 WHERE skill_id = $1`,
		strings.TrimSpace(skill.ID),
		skill.Name,
		string(skill.Category),
		skill.Proficiency,
		skill.Icon,
		skill.DisplayOrder,
		normalizeTime(skill.UpdatedAt),
	)
	if err != nil {
		return handleWriteError("update skill", err)
	}
	return requireAffected(res)
}

func (s *SkillStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("skill store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM skills WHERE skill_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	return requireAffected(res)
}

func scanSkill(row rowScanner) (domain.Skill, error) {
	var (
		skill    domain.Skill
		category string
	)
	if err := row.Scan(&skill.ID, &skill.Name, &category, &skill.Proficiency, &skill.Icon, &skill.DisplayOrder, &skill.CreatedAt, &skill.UpdatedAt); err != nil {
		return domain.Skill{}, err
	}
	skill.Category = domain.SkillCategory(category)
	return skill, nil
}
