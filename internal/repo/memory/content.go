package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

type projects struct{ v *view }

var projectOrder = map[string]func(a, b domain.Project) int{
	"display_order": func(a, b domain.Project) int { return cmp.Compare(a.DisplayOrder, b.DisplayOrder) },
	"created_at":    func(a, b domain.Project) int { return timeCmp(a.CreatedAt, b.CreatedAt) },
	"updated_at":    func(a, b domain.Project) int { return timeCmp(a.UpdatedAt, b.UpdatedAt) },
	"title":         func(a, b domain.Project) int { return foldCmp(a.Title, b.Title) },
}

func (r projects) Create(ctx context.Context, p domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.v.do(func(st *state) error {
		if _, ok := st.projects[p.ID]; ok {
			return repo.ErrConflict
		}
		for _, other := range st.projects {
			if other.Slug == p.Slug {
				return repo.ErrConflict
			}
		}
		p.UpdatedAt = p.CreatedAt
		st.projects[p.ID] = p
		return nil
	})
}

func (r projects) Get(ctx context.Context, id string) (domain.Project, error) {
	var out domain.Project
	err := r.v.do(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (r projects) GetBySlug(ctx context.Context, slug string) (domain.Project, error) {
	var out domain.Project
	err := r.v.do(func(st *state) error {
		for _, p := range st.projects {
			if p.Slug == slug {
				out = p
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r projects) List(ctx context.Context, f repo.ProjectFilter) ([]domain.Project, error) {
	var out []domain.Project
	err := r.v.do(func(st *state) error {
		items := values(st.projects, func(p domain.Project) bool {
			if f.Category != "" && p.Category != f.Category {
				return false
			}
			if f.Featured != nil && p.Featured != *f.Featured {
				return false
			}
			if f.Technology != "" && !containsFold(p.Technologies, f.Technology) {
				return false
			}
			return true
		})
		out = page(items, f.ListParams, projectOrder, nil, func(p domain.Project) string { return p.ID })
		return nil
	})
	return out, err
}

func (r projects) Update(ctx context.Context, p domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.v.do(func(st *state) error {
		existing, ok := st.projects[p.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for id, other := range st.projects {
			if id != p.ID && other.Slug == p.Slug {
				return repo.ErrConflict
			}
		}
		p.CreatedAt = existing.CreatedAt
		st.projects[p.ID] = p
		return nil
	})
}

func (r projects) Delete(ctx context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.projects, id)
		return nil
	})
}

type posts struct{ v *view }

var postNulls = map[string]func(domain.Post) bool{
	"published_at": func(p domain.Post) bool { return p.PublishedAt == nil },
}

var postOrder = map[string]func(a, b domain.Post) int{
	"published_at": func(a, b domain.Post) int { return timeCmp(*a.PublishedAt, *b.PublishedAt) },
	"created_at": func(a, b domain.Post) int { return timeCmp(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b domain.Post) int { return timeCmp(a.UpdatedAt, b.UpdatedAt) },
	"title":      func(a, b domain.Post) int { return foldCmp(a.Title, b.Title) },
	"views":      func(a, b domain.Post) int { return cmp.Compare(a.Views, b.Views) },
}

func (r posts) Create(ctx context.Context, p domain.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.v.do(func(st *state) error {
		if _, ok := st.posts[p.ID]; ok {
			return repo.ErrConflict
		}
		for _, other := range st.posts {
			if other.Slug == p.Slug {
				return repo.ErrConflict
			}
		}
		st.posts[p.ID] = p
		return nil
	})
}

func (r posts) Get(ctx context.Context, id string) (domain.Post, error) {
	var out domain.Post
	err := r.v.do(func(st *state) error {
		p, ok := st.posts[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (r posts) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	var out domain.Post
	err := r.v.do(func(st *state) error {
		for _, p := range st.posts {
			if p.Slug == slug {
				out = p
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r posts) List(ctx context.Context, f repo.PostFilter) ([]domain.Post, error) {
	var out []domain.Post
	q := strings.ToLower(strings.TrimSpace(f.Query))
	err := r.v.do(func(st *state) error {
		items := values(st.posts, func(p domain.Post) bool {
			if f.Published != nil && p.Published != *f.Published {
				return false
			}
			if f.Tag != "" && !containsFold(p.Tags, strings.TrimSpace(f.Tag)) {
				return false
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Excerpt), q) {
				return false
			}
			return true
		})
		out = page(items, f.ListParams, postOrder, postNulls, func(p domain.Post) string { return p.ID })
		return nil
	})
	return out, err
}

func (r posts) Update(ctx context.Context, p domain.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return r.v.do(func(st *state) error {
		existing, ok := st.posts[p.ID]
		if !ok {
			return repo.ErrNotFound
		}
		for id, other := range st.posts {
			if id != p.ID && other.Slug == p.Slug {
				return repo.ErrConflict
			}
		}
		p.CreatedAt = existing.CreatedAt
		p.Views = existing.Views
		st.posts[p.ID] = p
		return nil
	})
}

func (r posts) Delete(ctx context.Context, id string) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.posts[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.posts, id)
		return nil
	})
}

func (r posts) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	exists := false
	err := r.v.do(func(st *state) error {
		for id, p := range st.posts {
			if id != excludeID && p.Slug == slug {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r posts) IncrementViews(ctx context.Context, id string) (int64, error) {
	var views int64
	err := r.v.do(func(st *state) error {
		p, ok := st.posts[id]
		if !ok {
			return repo.ErrNotFound
		}
		p.Views++
		st.posts[id] = p
		views = p.Views
		return nil
	})
	return views, err
}
