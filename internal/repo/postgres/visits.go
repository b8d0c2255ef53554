package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
)

const (
	insertDayQuery = `INSERT INTO daily_visits (day, updated_at) VALUES ($1, $2) ON CONFLICT (day) DO NOTHING`
	lockDayQuery   = `SELECT day, visits, unique_visitors, pages, devices, referrers, updated_at
		 FROM daily_visits WHERE day = $1 FOR UPDATE`
	updateDayQuery = `UPDATE daily_visits
		 SET visits = $2, unique_visitors = $3, pages = $4, devices = $5, referrers = $6, updated_at = $7
		 WHERE day = $1`
	listDaysQuery = `SELECT day, visits, unique_visitors, pages, devices, referrers, updated_at
		 FROM daily_visits WHERE day BETWEEN $1 AND $2 ORDER BY day ASC`
)

// VisitStore keeps one counter row per UTC day. Record must run inside a transaction.
type VisitStore struct {
	db  DB
	now func() time.Time
}

func NewVisitStore(db DB) *VisitStore {
	if db == nil {
		return nil
	}
	return &VisitStore{db: db, now: time.Now}
}

func (s *VisitStore) Record(ctx context.Context, visit domain.Visit) (domain.DailyVisits, error) {
	if s == nil || s.db == nil {
		return domain.DailyVisits{}, fmt.Errorf("visit store not initialized")
	}
	at := visit.At
	if at.IsZero() {
		at = s.now()
	}
	day := domain.NewDate(at)
	now := s.now().UTC()

	if _, err := s.db.ExecContext(ctx, insertDayQuery, day.Time, now); err != nil {
		return domain.DailyVisits{}, fmt.Errorf("insert day bucket: %w", err)
	}
	bucket, err := scanDailyVisits(s.db.QueryRowContext(ctx, lockDayQuery, day.Time))
	if err != nil {
		return domain.DailyVisits{}, fmt.Errorf("lock day bucket: %w", handleNotFound(err))
	}

	bucket.Apply(visit)
	bucket.UpdatedAt = now

	pages, err := encodeCounts(bucket.Pages)
	if err != nil {
		return domain.DailyVisits{}, fmt.Errorf("encode pages: %w", err)
	}
	devices, err := encodeCounts(bucket.Devices)
	if err != nil {
		return domain.DailyVisits{}, fmt.Errorf("encode devices: %w", err)
	}
	referrers, err := encodeCounts(bucket.Referrers)
	if err != nil {
		return domain.DailyVisits{}, fmt.Errorf("encode referrers: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, updateDayQuery, day.Time, bucket.Visits, bucket.UniqueVisitors, pages, devices, referrers, now); err != nil {
		return domain.DailyVisits{}, fmt.Errorf("update day bucket: %w", err)
	}
	return bucket, nil
}

func (s *VisitStore) ListDays(ctx context.Context, from, to domain.Date) ([]domain.DailyVisits, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("visit store not initialized")
	}
	rows, err := s.db.QueryContext(ctx, listDaysQuery, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("list day buckets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DailyVisits, 0)
	for rows.Next() {
		bucket, err := scanDailyVisits(rows)
		if err != nil {
			return nil, fmt.Errorf("scan day bucket: %w", err)
		}
		out = append(out, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list day buckets: %w", err)
	}
	return out, nil
}

func scanDailyVisits(row rowScanner) (domain.DailyVisits, error) {
	var (
		d                                   domain.DailyVisits
		day                                 time.Time
		pagesJSON, devicesJSON, refererJSON []byte
	)
	if err := row.Scan(&day, &d.Visits, &d.UniqueVisitors, &pagesJSON, &devicesJSON, &refererJSON, &d.UpdatedAt); err != nil {
		return domain.DailyVisits{}, err
	}
	d.Day = domain.NewDate(day)
	var err error
	if d.Pages, err = decodeCounts(pagesJSON); err != nil {
		return domain.DailyVisits{}, fmt.Errorf("decode pages: %w", err)
	}
	if d.Devices, err = decodeCounts(devicesJSON); err != nil {
		return domain.DailyVisits{}, fmt.Errorf("decode devices: %w", err)
	}
	if d.Referrers, err = decodeCounts(refererJSON); err != nil {
		return domain.DailyVisits{}, fmt.Errorf("decode referrers: %w", err)
	}
	return d, nil
}
