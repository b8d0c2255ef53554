package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const postColumns = `post_id, title, slug, excerpt, content, cover_image_url, tags, published,
	published_at, read_time_minutes, views, created_at, updated_at`

var postOrderColumns = map[string]string{
	"published_at": "published_at",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"title":        "lower(title)",
	"views":        "views",
}

type PostStore struct {
	db DB
}

func NewPostStore(db DB) *PostStore {
	if db == nil {
		return nil
	}
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, post domain.Post) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("post store not initialized")
	}
	if err := post.Validate(); err != nil {
		return err
	}
	tagsJSON, err := encodeList(post.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	createdAt := normalizeTime(post.CreatedAt)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		strings.TrimSpace(post.ID),
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.CoverImageURL,
		tagsJSON,
		post.Published,
		nullTime(post.PublishedAt),
		post.ReadTimeMinutes,
		post.Views,
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert post", err)
	}
	return nil
}

func (s *PostStore) Get(ctx context.Context, id string) (domain.Post, error) {
	if s == nil || s.db == nil {
		return domain.Post{}, fmt.Errorf("post store not initialized")
	}
	post, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE post_id = $1`, strings.TrimSpace(id)))
	if err != nil {
		return domain.Post{}, handleNotFound(err)
	}
	return post, nil
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (domain.Post, error) {
	if s == nil || s.db == nil {
		return domain.Post{}, fmt.Errorf("post store not initialized")
	}
	post, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, strings.TrimSpace(slug)))
	if err != nil {
		return domain.Post{}, handleNotFound(err)
	}
	return post, nil
}

func (s *PostStore) List(ctx context.Context, filter repo.PostFilter) ([]domain.Post, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("post store not initialized")
	}
	query, args := buildPostListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func buildPostListQuery(filter repo.PostFilter) (string, []any) {
	var b queryBuilder
	if filter.Published != nil {
		b.where("published = " + b.arg(*filter.Published))
	}
	if tag := strings.ToLower(strings.TrimSpace(filter.Tag)); tag != "" {
		tagJSON, _ := encodeList([]string{tag})
		b.where("tags @> " + b.arg(string(tagJSON)) + "::jsonb")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := b.arg("%" + escapeLike(q) + "%")
		b.where("(title ILIKE " + p + " OR excerpt ILIKE " + p + ")")
	}
	query := b.finish(`SELECT `+postColumns+` FROM posts`, postOrderColumns, filter.OrderBy, "post_id", filter.ListParams)
	return query, b.args
}

func (s *PostStore) Update(ctx context.Context, post domain.Post) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("post store not initialized")
	}
	if err := post.Validate(); err != nil {
		return err
	}
	tagsJSON, err := encodeList(post.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE posts SET
			title = $2, slug = $3, excerpt = $4, content = $5, cover_image_url = $6, tags = $7,
			published = $8, published_at = $9, read_time_minutes = $10, updated_at = $11
		 WHERE post_id = $1`,
		strings.TrimSpace(post.ID),
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		post.CoverImageURL,
		tagsJSON,
		post.Published,
		nullTime(post.PublishedAt),
		post.ReadTimeMinutes,
		normalizeTime(post.UpdatedAt),
	)
	if err != nil {
		return handleWriteError("update post", err)
	}
	return requireAffected(res)
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("post store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res)
}

func (s *PostStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("post store not initialized")
	}
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND post_id <> $2)`,
		strings.TrimSpace(slug),
		strings.TrimSpace(excludeID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

func (s *PostStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("post store not initialized")
	}
	var views int64
	err := s.db.QueryRowContext(
		ctx,
		`UPDATE posts SET views = views + 1 WHERE post_id = $1 RETURNING views`,
		strings.TrimSpace(id),
	).Scan(&views)
	if err != nil {
		return 0, handleNotFound(err)
	}
	return views, nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		p           domain.Post
		tagsJSON    []byte
		publishedAt sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverImageURL, &tagsJSON, &p.Published,
		&publishedAt, &p.ReadTimeMinutes, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Post{}, err
	}
	tags, err := decodeList(tagsJSON)
	if err != nil {
		return domain.Post{}, fmt.Errorf("decode tags: %w", err)
	}
	p.Tags = tags
	if publishedAt.Valid {
		t := publishedAt.Time.UTC()
		p.PublishedAt = &t
	}
	return p, nil
}
