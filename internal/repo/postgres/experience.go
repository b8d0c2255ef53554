package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const experienceColumns = `experience_id, kind, title, organization, location, start_date, end_date, current,
	description, highlights, technologies, display_order, created_at, updated_at`

var experienceOrderColumns = map[string]string{
	"display_order": "display_order",
	"start_date":    "start_date",
	"end_date":      "end_date",
	"title":         "lower(title)",
}

type ExperienceStore struct {
	db DB
}

func NewExperienceStore(db DB) *ExperienceStore {
	if db == nil {
		return nil
	}
	return &ExperienceStore{db: db}
}

func (s *ExperienceStore) Create(ctx context.Context, e domain.Experience) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("experience store not initialized")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	highlights, techs, err := encodeExperienceLists(e)
	if err != nil {
		return err
	}
	createdAt := normalizeTime(e.CreatedAt)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO experiences (`+experienceColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		strings.TrimSpace(e.ID),
		string(e.Kind),
		e.Title,
		e.Organization,
		e.Location,
		e.StartDate.Time,
		nullDate(e.EndDate),
		e.Current,
		e.Description,
		highlights,
		techs,
		e.DisplayOrder,
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert experience", err)
	}
	return nil
}

func (s *ExperienceStore) Get(ctx context.Context, id string) (domain.Experience, error) {
	if s == nil || s.db == nil {
		return domain.Experience{}, fmt.Errorf("experience store not initialized")
	}
	e, err := scanExperience(s.db.QueryRowContext(ctx, `SELECT `+experienceColumns+` FROM experiences WHERE experience_id = $1`, strings.TrimSpace(id)))
	if err != nil {
		return domain.Experience{}, handleNotFound(err)
	}
	return e, nil
}

func (s *ExperienceStore) List(ctx context.Context, filter repo.ExperienceFilter) ([]domain.Experience, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("experience store not initialized")
	}
	query, args := buildExperienceListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Experience, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	return out, nil
}

func buildExperienceListQuery(filter repo.ExperienceFilter) (string, []any) {
	var b queryBuilder
	if kind := strings.TrimSpace(string(filter.Kind)); kind != "" {
		b.where("kind = " + b.arg(kind))
	}
	query := b.finish(`SELECT `+experienceColumns+` FROM experiences`, experienceOrderColumns, filter.OrderBy, "experience_id", filter.ListParams)
	return query, b.args
}

func (s *ExperienceStore) Update(ctx context.Context, e domain.Experience) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("experience store not initialized")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	highlights, techs, err := encodeExperienceLists(e)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE experiences SET
			kind = $2, title = $3, organization = $4, location = $5, start_date = $6, end_date = $7,
			current = $8, description = $9, highlights = $10, technologies = $11, display_order = $12,
			updated_at = $13
		 WHERE experience_id = $1`,
		strings.TrimSpace(e.ID),
		string(e.Kind),
		e.Title,
		e.Organization,
		e.Location,
		e.StartDate.Time,
		nullDate(e.EndDate),
		e.Current,
		e.Description,
		highlights,
		techs,
		e.DisplayOrder,
		normalizeTime(e.UpdatedAt),
	)
	if err != nil {
		return handleWriteError("update experience", err)
	}
	return requireAffected(res)
}

func (s *ExperienceStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("experience store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM experiences WHERE experience_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}
	return requireAffected(res)
}

func encodeExperienceLists(e domain.Experience) ([]byte, []byte, error) {
	highlights, err := encodeList(e.Highlights)
	if err != nil {
		return nil, nil, fmt.Errorf("encode highlights: %w", err)
	}
	techs, err := encodeList(e.Technologies)
	if err != nil {
		return nil, nil, fmt.Errorf("encode technologies: %w", err)
	}
	return highlights, techs, nil
}

func nullDate(d domain.Date) sql.NullTime {
	if d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func scanExperience(row rowScanner) (domain.Experience, error) {
	var (
		e              domain.Experience
		kind           string
		start          time.Time
		end            sql.NullTime
		highlightsJSON []byte
		techJSON       []byte
	)
	if err := row.Scan(
		&e.ID, &kind, &e.Title, &e.Organization, &e.Location, &start, &end, &e.Current,
		&e.Description, &highlightsJSON, &techJSON, &e.DisplayOrder, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return domain.Experience{}, err
	}
	e.Kind = domain.ExperienceKind(kind)
	e.StartDate = domain.NewDate(start)
	if end.Valid {
		e.EndDate = domain.NewDate(end.Time)
	}
	var err error
	if e.Highlights, err = decodeList(highlightsJSON); err != nil {
		return domain.Experience{}, fmt.Errorf("decode highlights: %w", err)
	}
	if e.Technologies, err = decodeList(techJSON); err != nil {
		return domain.Experience{}, fmt.Errorf("decode technologies: %w", err)
	}
	return e, nil
}
