package domain

import (
	"slices"
	"strings"
	"time"
)

type SkillCategory string

const (
	SkillCategoryFrontend  SkillCategory = "frontend"
	SkillCategoryBackend   SkillCategory = "backend"
	SkillCategoryDatabase  SkillCategory = "database"
	SkillCategoryDevOps    SkillCategory = "devops"
	SkillCategoryTools     SkillCategory = "tools"
	SkillCategoryLanguages SkillCategory = "languages"
	SkillCategoryOther     SkillCategory = "other"
)

var skillCategories = []SkillCategory{
	SkillCategoryFrontend,
	SkillCategoryBackend,
	SkillCategoryDatabase,
	SkillCategoryDevOps,
	SkillCategoryTools,
	SkillCategoryLanguages,
	SkillCategoryOther,
}

func (c SkillCategory) Valid() bool {
	return slices.Contains(skillCategories, c)
}

type Skill struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Category     SkillCategory `json:"category"`
	Proficiency  int           `json:"proficiency"`
	Icon         string        `json:"icon,omitempty"`
	DisplayOrder int           `json:"display_order"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (s *Skill) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Icon = strings.TrimSpace(s.Icon)
	s.Category = SkillCategory(strings.ToLower(strings.TrimSpace(string(s.Category))))
	if s.Category == "" {
		s.Category = SkillCategoryOther
	}
}

func (s Skill) Validate() error {
	if err := requireText("name", s.Name, 80); err != nil {
		return err
	}
	if !s.Category.Valid() {
		return invalid("category", CodeNotAllowed)
	}
	if s.Proficiency < 0 || s.Proficiency > 100 {
		return invalid("proficiency", CodeOutOfRange)
	}
	return maxLen("icon", s.Icon, 200)
}
