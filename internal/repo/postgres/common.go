package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.einride.tech/aip/ordering"

	"github.com/folio-labs/folio-go/internal/repo"
)

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func encodeList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func encodeCounts(m map[string]int64) ([]byte, error) {
	if m == nil {
		m = map[string]int64{}
	}
	return json.Marshal(m)
}

func decodeCounts(raw []byte) (map[string]int64, error) {
	out := map[string]int64{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]int64{}
	}
	return out, nil
}

func handleNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrNotFound
	}
	return err
}

// handleWriteError maps unique violations to repo.ErrConflict.
func handleWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", op, repo.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// requireAffected turns a zero-row UPDATE or DELETE into repo.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// queryBuilder accumulates WHERE predicates with positional args.
type queryBuilder struct {
	clauses []string
	args    []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(clause string) {
	b.clauses = append(b.clauses, clause)
}

// finish appends WHERE, ORDER BY and LIMIT/OFFSET to base.
func (b *queryBuilder) finish(base string, columns map[string]string, orderBy ordering.OrderBy, tiebreak string, params repo.ListParams) string {
	query := base
	if len(b.clauses) > 0 {
		query += " WHERE " + strings.Join(b.clauses, " AND ")
	}
	query += " ORDER BY " + orderClause(columns, orderBy, tiebreak)
	query += " LIMIT " + b.arg(repo.ClampLimit(params.Limit))
	if params.Offset > 0 {
		query += " OFFSET " + b.arg(params.Offset)
	}
	return query
}

// orderClause renders validated order fields; unknown paths are skipped.
func orderClause(columns map[string]string, orderBy ordering.OrderBy, tiebreak string) string {
	parts := make([]string, 0, len(orderBy.Fields)+1)
	for _, field := range orderBy.Fields {
		column, ok := columns[field.Path]
		if !ok {
			continue
		}
		if field.Desc {
			parts = append(parts, column+" DESC NULLS LAST")
		} else {
			parts = append(parts, column+" ASC")
		}
	}
	parts = append(parts, tiebreak+" ASC")
	return strings.Join(parts, ", ")
}
