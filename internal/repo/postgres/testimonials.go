package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const testimonialColumns = `testimonial_id, author_name, author_role, company, avatar_url, content,
	rating, approved, featured, created_at, updated_at`

var testimonialOrderColumns = map[string]string{
	"created_at":  "created_at",
	"rating":      "rating",
	"author_name": "lower(author_name)",
}

type TestimonialStore struct {
	db DB
}

func NewTestimonialStore(db DB) *TestimonialStore {
	if db == nil {
		return nil
	}
	return &TestimonialStore{db: db}
}

func (s *TestimonialStore) Create(ctx context.Context, t domain.Testimonial) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("testimonial store not initialized")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	createdAt := normalizeTime(t.CreatedAt)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO testimonials (`+testimonialColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		strings.TrimSpace(t.ID),
		t.AuthorName,
		t.AuthorRole,
		t.Company,
		t.AvatarURL,
		t.Content,
		t.Rating,
		t.Approved,
		t.Featured,
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert testimonial", err)
	}
	return nil
}

func (s *TestimonialStore) Get(ctx context.Context, id string) (domain.Testimonial, error) {
	if s == nil || s.db == nil {
		return domain.Testimonial{}, fmt.Errorf("testimonial store not initialized")
	}
	t, err := scanTestimonial(s.db.QueryRowContext(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE testimonial_id = $1`, strings.TrimSpace(id)))
	if err != nil {
		return domain.Testimonial{}, handleNotFound(err)
	}
	return t, nil
}

func (s *TestimonialStore) List(ctx context.Context, filter repo.TestimonialFilter) ([]domain.Testimonial, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("testimonial store not initialized")
	}
	query, args := buildTestimonialListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Testimonial, 0)
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan testimonial: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return out, nil
}

func buildTestimonialListQuery(filter repo.TestimonialFilter) (string, []any) {
	var b queryBuilder
	if filter.Approved != nil {
		b.where("approved = " + b.arg(*filter.Approved))
	}
	if filter.Featured != nil {
		b.where("featured = " + b.arg(*filter.Featured))
	}
	query := b.finish(`SELECT `+testimonialColumns+` FROM testimonials`, testimonialOrderColumns, filter.OrderBy, "testimonial_id", filter.ListParams)
	return query, b.args
}

func (s *TestimonialStore) Update(ctx context.Context, t domain.Testimonial) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("testimonial store not initialized")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE testimonials SET
			author_name = $2, author_role = $3, company = $4, avatar_url = $5, content = $6,
			rating = $7, approved = $8, featured = $9, updated_at = $10
		 WHERE testimonial_id = $1`,
		strings.TrimSpace(t.ID),
		t.AuthorName,
		t.AuthorRole,
		t.Company,
		t.AvatarURL,
		t.Content,
		t.Rating,
		t.Approved,
		t.Featured,
		normalizeTime(t.UpdatedAt),
	)
	if err != nil {
		return handleWriteError("update testimonial", err)
	}
	return requireAffected(res)
}

func (s *TestimonialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("testimonial store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM testimonials WHERE testimonial_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete testimonial: %w", err)
	}
	return requireAffected(res)
}

func scanTestimonial(row rowScanner) (domain.Testimonial, error) {
	var t domain.Testimonial
	err := row.Scan(
		&t.ID, &t.AuthorName, &t.AuthorRole, &t.Company, &t.AvatarURL, &t.Content,
		&t.Rating, &t.Approved, &t.Featured, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
