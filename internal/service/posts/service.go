package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
)

const (
	resourceType    = "post"
	maxSlugAttempts = 1000
	excerptLength   = 200
)

// Input is the writable part of a post.
type Input struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	CoverImageURL string   `json:"cover_image_url"`
	Tags          []string `json:"tags"`
	Published     bool     `json:"published"`
}

type Service struct {
	tx    repo.Transactor
	now   func() time.Time
	newID func() string
}

func NewService(tx repo.Transactor) (*Service, error) {
	if tx == nil {
		return nil, errors.New("transactor is required")
	}
	return &Service{tx: tx, now: time.Now, newID: uuid.NewString}, nil
}

// Create stores a new post. meta carries the actor and request fields of the audit event.
func (s *Service) Create(ctx context.Context, in Input, meta auditlog.Event) (domain.Post, error) {
	now := s.now().UTC()
	post := domain.Post{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&post, in, now)
	if err := post.Validate(); err != nil {
		return domain.Post{}, err
	}

	err := s.tx.InTx(ctx, func(stores repo.Stores) error {
		slug, err := allocateSlug(ctx, stores.Posts, slugBase(in.Slug, post.Title), post.ID)
		if err != nil {
			return err
		}
		post.Slug = slug
		if err := stores.Posts.Create(ctx, post); err != nil {
			return err
		}
		return appendAudit(ctx, stores, meta, auditlog.ActionCreate, post)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// Update replaces the mutable fields of post id. Views and CreatedAt are kept.
func (s *Service) Update(ctx context.Context, id string, in Input, meta auditlog.Event) (domain.Post, error) {
	var updated domain.Post
	err := s.tx.InTx(ctx, func(stores repo.Stores) error {
		existing, err := stores.Posts.Get(ctx, id)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		post := existing
		post.UpdatedAt = now
		apply(&post, in, now)
		if err := post.Validate(); err != nil {
			return err
		}

		base := existing.Slug
		switch {
		case strings.TrimSpace(in.Slug) != "":
			base = domain.Slugify(in.Slug)
		case post.Title != existing.Title:
			base = domain.Slugify(post.Title)
		}
		slug, err := allocateSlug(ctx, stores.Posts, base, post.ID)
		if err != nil {
			return err
		}
		post.Slug = slug

		if err := stores.Posts.Update(ctx, post); err != nil {
			return err
		}
		updated = post
		return appendAudit(ctx, stores, meta, auditlog.ActionUpdate, post)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string, meta auditlog.Event) error {
	return s.tx.InTx(ctx, func(stores repo.Stores) error {
		existing, err := stores.Posts.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := stores.Posts.Delete(ctx, id); err != nil {
			return err
		}
		return appendAudit(ctx, stores, meta, auditlog.ActionDelete, existing)
	})
}

// Get returns any post, drafts included.
func (s *Service) Get(ctx context.Context, id string) (domain.Post, error) {
	return s.tx.Stores().Posts.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter repo.PostFilter) ([]domain.Post, error) {
	return s.tx.Stores().Posts.List(ctx, filter)
}

// ReadPublished returns the published post with slug and counts the view.
// Drafts are reported as repo.ErrNotFound.
func (s *Service) ReadPublished(ctx context.Context, slug string) (domain.Post, error) {
	stores := s.tx.Stores()
	post, err := stores.Posts.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Post{}, err
	}
	if !post.Published {
		return domain.Post{}, repo.ErrNotFound
	}
	views, err := stores.Posts.IncrementViews(ctx, post.ID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("count view: %w", err)
	}
	post.Views = views
	return post, nil
}

func apply(post *domain.Post, in Input, now time.Time) {
	post.Title = in.Title
	post.Excerpt = in.Excerpt
	post.Content = in.Content
	post.CoverImageURL = in.CoverImageURL
	post.Tags = in.Tags
	post.Published = in.Published
	post.Normalize()

	if post.Excerpt == "" {
		post.Excerpt = domain.DeriveExcerpt(post.Content, excerptLength)
	}
	post.ReadTimeMinutes = domain.ReadTimeMinutes(post.Content)
	if post.Published && post.PublishedAt == nil {
		t := now
		post.PublishedAt = &t
	}
}

func slugBase(requested, title string) string {
	if strings.TrimSpace(requested) != "" {
		return domain.Slugify(requested)
	}
	return domain.Slugify(title)
}

func allocateSlug(ctx context.Context, posts repo.PostRepository, base, excludeID string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := domain.SlugWithSuffix(base, n)
		exists, err := posts.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("allocate slug %q: %w", base, repo.ErrConflict)
}

func appendAudit(ctx context.Context, stores repo.Stores, meta auditlog.Event, action string, post domain.Post) error {
	if stores.Audit == nil {
		return nil
	}
	meta.Action = action
	meta.ResourceType = resourceType
	meta.ResourceID = post.ID
	meta.Payload = map[string]any{
		"slug":      post.Slug,
		"title":     post.Title,
		"published": post.Published,
	}
	if _, err := stores.Audit.Append(ctx, meta); err != nil {
		return err
	}
	return nil
}
