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

const contactColumns = `message_id, name, email, subject, message, status, ip, user_agent, created_at, updated_at`

var contactOrderColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
	"name":       "lower(name)",
}

type ContactStore struct {
	db  DB
	now func() time.Time
}

func NewContactStore(db DB) *ContactStore {
	if db == nil {
		return nil
	}
	return &ContactStore{db: db, now: time.Now}
}

func (s *ContactStore) Create(ctx context.Context, m domain.ContactMessage) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("contact store not initialized")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	createdAt := normalizeTime(m.CreatedAt)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO contact_messages (`+contactColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		strings.TrimSpace(m.ID),
		m.Name,
		m.Email,
		m.Subject,
		m.Message,
		string(m.Status),
		nullString(m.IP),
		nullString(m.UserAgent),
		createdAt,
		createdAt,
	)
	if err != nil {
		return handleWriteError("insert contact message", err)
	}
	return nil
}

func (s *ContactStore) Get(ctx context.Context, id string) (domain.ContactMessage, error) {
	if s == nil || s.db == nil {
		return domain.ContactMessage{}, fmt.Errorf("contact store not initialized")
	}
	m, err := scanContact(s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE message_id = $1`, strings.TrimSpace(id)))
	if err != nil {
		return domain.ContactMessage{}, handleNotFound(err)
	}
	return m, nil
}

func (s *ContactStore) List(ctx context.Context, filter repo.ContactFilter) ([]domain.ContactMessage, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("contact store not initialized")
	}
	query, args := buildContactListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ContactMessage, 0)
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return out, nil
}

func buildContactListQuery(filter repo.ContactFilter) (string, []any) {
	var b queryBuilder
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		b.where("status = " + b.arg(status))
	}
	query := b.finish(`SELECT `+contactColumns+` FROM contact_messages`, contactOrderColumns, filter.OrderBy, "message_id", filter.ListParams)
	return query, b.args
}

func (s *ContactStore) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (domain.ContactMessage, error) {
	if s == nil || s.db == nil {
		return domain.ContactMessage{}, fmt.Errorf("contact store not initialized")
	}
	if !status.Valid() {
		return domain.ContactMessage{}, &domain.ValidationError{Field: "status", Code: domain.CodeNotAllowed}
	}
	m, err := scanContact(s.db.QueryRowContext(
		ctx,
		`UPDATE contact_messages SET status = $2, updated_at = $3 WHERE message_id = $1 RETURNING `+contactColumns,
		strings.TrimSpace(id),
		string(status),
		s.now().UTC(),
	))
	if err != nil {
		return domain.ContactMessage{}, handleNotFound(err)
	}
	return m, nil
}

func (s *ContactStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("contact store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE message_id = $1`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete contact message: %w", err)
	}
	return requireAffected(res)
}

func scanContact(row rowScanner) (domain.ContactMessage, error) {
	var (
		m         domain.ContactMessage
		status    string
		ip        sql.NullString
		userAgent sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &status, &ip, &userAgent, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return domain.ContactMessage{}, err
	}
	m.Status = domain.ContactStatus(status)
	m.IP = ip.String
	m.UserAgent = userAgent.String
	return m, nil
}
