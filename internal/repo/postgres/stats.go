package postgres

import (
	"context"
	"fmt"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const dashboardCountsQuery = `SELECT
	(SELECT count(*) FROM projects),
	(SELECT count(*) FROM posts WHERE published),
	(SELECT count(*) FROM posts WHERE NOT published),
	(SELECT count(*) FROM testimonials),
	(SELECT count(*) FROM testimonials WHERE NOT approved),
	(SELECT count(*) FROM skills),
	(SELECT count(*) FROM experiences),
	COALESCE((SELECT visits FROM daily_visits WHERE day = $1), 0)`

const contactStatusCountsQuery = `SELECT status, count(*) FROM contact_messages GROUP BY status`

type StatsStore struct {
	db DB
}

func NewStatsStore(db DB) *StatsStore {
	if db == nil {
		return nil
	}
	return &StatsStore{db: db}
}

func (s *StatsStore) Dashboard(ctx context.Context, today domain.Date) (repo.DashboardStats, error) {
	if s == nil || s.db == nil {
		return repo.DashboardStats{}, fmt.Errorf("stats store not initialized")
	}
	var stats repo.DashboardStats
	if err := s.db.QueryRowContext(ctx, dashboardCountsQuery, today.Time).Scan(
		&stats.Projects,
		&stats.PostsPublished,
		&stats.PostsDraft,
		&stats.Testimonials,
		&stats.TestimonialsPending,
		&stats.Skills,
		&stats.Experience,
		&stats.VisitsToday,
	); err != nil {
		return repo.DashboardStats{}, fmt.Errorf("dashboard counts: %w", err)
	}

	stats.Contact = make(map[domain.ContactStatus]int64, len(domain.ContactStatuses))
	for _, status := range domain.ContactStatuses {
		stats.Contact[status] = 0
	}
	rows, err := s.db.QueryContext(ctx, contactStatusCountsQuery)
	if err != nil {
		return repo.DashboardStats{}, fmt.Errorf("contact counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return repo.DashboardStats{}, fmt.Errorf("scan contact count: %w", err)
		}
		stats.Contact[domain.ContactStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return repo.DashboardStats{}, fmt.Errorf("contact counts: %w", err)
	}
	return stats, nil
}
