package memory

import (
	"cmp"
	"context"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

// crud is the keyed-map part shared by testimonials, skills and experience.
type crud[T any] struct {
	v     *view
	table func(st *state) map[string]T
	id    func(T) string
}

func (c crud[T]) create(item T, validate func() error, unique func(st *state) error) error {
	if err := validate(); err != nil {
		return err
	}
	return c.v.do(func(st *state) error {
		if _, ok := c.table(st)[c.id(item)]; ok {
			return repo.ErrConflict
		}
		if unique != nil {
			if err := unique(st); err != nil {
				return err
			}
		}
		c.table(st)[c.id(item)] = item
		return nil
	})
}

func (c crud[T]) get(id string) (T, error) {
	var out T
	err := c.v.do(func(st *state) error {
		item, ok := c.table(st)[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = item
		return nil
	})
	return out, err
}

func (c crud[T]) update(item T, validate func() error, keep func(existing T, item *T)) error {
	if err := validate(); err != nil {
		return err
	}
	return c.v.do(func(st *state) error {
		existing, ok := c.table(st)[c.id(item)]
		if !ok {
			return repo.ErrNotFound
		}
		keep(existing, &item)
		c.table(st)[c.id(item)] = item
		return nil
	})
}

func (c crud[T]) remove(id string) error {
	return c.v.do(func(st *state) error {
		if _, ok := c.table(st)[id]; !ok {
			return repo.ErrNotFound
		}
		delete(c.table(st), id)
		return nil
	})
}

type testimonials struct{ v *view }

var testimonialOrder = map[string]func(a, b domain.Testimonial) int{
	"created_at":  func(a, b domain.Testimonial) int { return timeCmp(a.CreatedAt, b.CreatedAt) },
	"rating":      func(a, b domain.Testimonial) int { return cmp.Compare(a.Rating, b.Rating) },
	"author_name": func(a, b domain.Testimonial) int { return foldCmp(a.AuthorName, b.AuthorName) },
}

func (r testimonials) crud() crud[domain.Testimonial] {
	return crud[domain.Testimonial]{
		v:     r.v,
		table: func(st *state) map[string]domain.Testimonial { return st.testimonials },
		id:    func(t domain.Testimonial) string { return t.ID },
	}
}

func (r testimonials) Create(ctx context.Context, t domain.Testimonial) error {
	return r.crud().create(t, t.Validate, nil)
}

func (r testimonials) Get(ctx context.Context, id string) (domain.Testimonial, error) {
	return r.crud().get(id)
}

func (r testimonials) List(ctx context.Context, f repo.TestimonialFilter) ([]domain.Testimonial, error) {
	var out []domain.Testimonial
	err := r.v.do(func(st *state) error {
		items := values(st.testimonials, func(t domain.Testimonial) bool {
			if f.Approved != nil && t.Approved != *f.Approved {
				return false
			}
			if f.Featured != nil && t.Featured != *f.Featured {
				return false
			}
			return true
		})
		out = page(items, f.ListParams, testimonialOrder, nil, func(t domain.Testimonial) string { return t.ID })
		return nil
	})
	return out, err
}

func (r testimonials) Update(ctx context.Context, t domain.Testimonial) error {
	return r.crud().update(t, t.Validate, func(existing domain.Testimonial, t *domain.Testimonial) {
		t.CreatedAt = existing.CreatedAt
	})
}

func (r testimonials) Delete(ctx context.Context, id string) error {
	return r.crud().remove(id)
}

type skills struct{ v *view }

var skillOrder = map[string]func(a, b domain.Skill) int{
	"category":      func(a, b domain.Skill) int { return cmp.Compare(a.Category, b.Category) },
	"display_order": func(a, b domain.Skill) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) },
	"name":          func(a, b domain.Skill) int { return foldCmp(a.Name, b.Name) },
	"proficiency":   func(a, b domain.Skill) int { return cmp.Compare(a.Proficiency, b.Proficiency) },
}

func (r skills) crud() crud[domain.Skill] {
	return crud[domain.Skill]{
		v:     r.v,
		table: func(st *state) map[string]domain.Skill { return st.skills },
		id:    func(s domain.Skill) string { return s.ID },
	}
}

func (r skills) Create(ctx context.Context, s domain.Skill) error {
	return r.crud().create(s, s.Validate, func(st *state) error {
		for _, other := range st.skills {
			if other.Category == s.Category && other.Name == s.Name {
				return repo.ErrConflict
			}
		}
		return nil
	})
}

func (r skills) Get(ctx context.Context, id string) (domain.Skill, error) {
	return r.crud().get(id)
}

func (r skills) List(ctx context.Context, f repo.SkillFilter) ([]domain.Skill, error) {
	var out []domain.Skill
	err := r.v.do(func(st *state) error {
		items := values(st.skills, func(s domain.Skill) bool {
			return f.Category == "" || s.Category == f.Category
		})
		out = page(items, f.ListParams, skillOrder, nil, func(s domain.Skill) string { return s.ID })
		return nil
	})
	return out, err
}

func (r skills) Update(ctx context.Context, s domain.Skill) error {
	return r.crud().update(s, s.Validate, func(existing domain.Skill, s *domain.Skill) {
		s.CreatedAt = existing.CreatedAt
	})
}

func (r skills) Delete(ctx context.Context, id string) error {
	return r.crud().remove(id)
}

type experience struct{ v *view }

var experienceNulls = map[string]func(domain.Experience) bool{
	"end_date": func(e domain.Experience) bool { return e.EndDate.IsZero() },
}

var experienceOrder = map[string]func(a, b domain.Experience) int{
	"display_order": func(a, b domain.Experience) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) },
	"start_date":    func(a, b domain.Experience) int { return timeCmp(a.StartDate.Time, b.StartDate.Time) },
	"end_date":      func(a, b domain.Experience) int { return timeCmp(a.EndDate.Time, b.EndDate.Time) },
	"title":         func(a, b domain.Experience) int { return foldCmp(a.Title, b.Title) },
}

func (r experience) crud() crud[domain.Experience] {
	return crud[domain.Experience]{
		v:     r.v,
		table: func(st *state) map[string]domain.Experience { return st.experience },
		id:    func(e domain.Experience) string { return e.ID },
	}
}

func (r experience) Create(ctx context.Context, e domain.Experience) error {
	return r.crud().create(e, e.Validate, nil)
}

func (r experience) Get(ctx context.Context, id string) (domain.Experience, error) {
	return r.crud().get(id)
}

func (r experience) List(ctx context.Context, f repo.ExperienceFilter) ([]domain.Experience, error) {
	var out []domain.Experience
	err := r.v.do(func(st *state) error {
		items := values(st.experience, func(e domain.Experience) bool {
			return f.Kind == "" || e.Kind == f.Kind
		})
		out = page(items, f.ListParams, experienceOrder, experienceNulls, func(e domain.Experience) string { return e.ID })
		return nil
	})
	return out, err
}

func (r experience) Update(ctx context.Context, e domain.Experience) error {
	return r.crud().update(e, e.Validate, func(existing domain.Experience, e *domain.Experience) {
		e.CreatedAt = existing.CreatedAt
	})
}

func (r experience) Delete(ctx context.Context, id string) error {
	return r.crud().remove(id)
}
