package analytics

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/repo"
)

const (
	DefaultRangeDays = 30
	MaxRangeDays     = 366
	topN             = 10
)

// VisitInput is the beacon body sent by the frontend on each page view.
type VisitInput struct {
	Path       string `json:"path"`
	Referrer   string `json:"referrer"`
	NewVisitor bool   `json:"new_visitor"`
}

type RecordResult struct {
	Recorded bool          `json:"recorded"`
	Day      string        `json:"day,omitempty"`
	Device   domain.Device `json:"device,omitempty"`
}

type Count struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type Totals struct {
	Visits         int64            `json:"visits"`
	UniqueVisitors int64            `json:"unique_visitors"`
	Devices        map[string]int64 `json:"devices"`
}

type Summary struct {
	From         domain.Date          `json:"from"`
	To           domain.Date          `json:"to"`
	Days         []domain.DailyVisits `json:"days"`
	Totals       Totals               `json:"totals"`
	TopPages     []Count              `json:"top_pages"`
	TopReferrers []Count              `json:"top_referrers"`
}

type Service struct {
	tx       repo.Transactor
	siteHost string
	now      func() time.Time
}

func NewService(tx repo.Transactor, siteHost string) (*Service, error) {
	if tx == nil {
		return nil, errors.New("transactor is required")
	}
	return &Service{tx: tx, siteHost: siteHost, now: time.Now}, nil
}

// Record classifies one page view and adds it to today's bucket.
// Bot traffic is acknowledged but not counted.
func (s *Service) Record(ctx context.Context, in VisitInput, userAgent string) (RecordResult, error) {
	if IsBot(userAgent) {
		return RecordResult{Recorded: false}, nil
	}
	visit := domain.Visit{
		At:         s.now().UTC(),
		Path:       NormalizePath(in.Path),
		Referrer:   NormalizeReferrer(in.Referrer, s.siteHost),
		Device:     DeviceFromUserAgent(userAgent),
		NewVisitor: in.NewVisitor,
	}
	var bucket domain.DailyVisits
	err := s.tx.InTx(ctx, func(stores repo.Stores) error {
		var err error
		bucket, err = stores.Visits.Record(ctx, visit)
		return err
	})
	if err != nil {
		return RecordResult{}, err
	}
	return RecordResult{Recorded: true, Day: bucket.Day.String(), Device: visit.Device}, nil
}

// ResolveRange applies the default window and checks the bounds. Zero dates mean "unset".
func (s *Service) ResolveRange(from, to domain.Date) (domain.Date, domain.Date, error) {
	if to.IsZero() {
		to = domain.NewDate(s.now())
	}
	if from.IsZero() {
		from = domain.NewDate(to.AddDate(0, 0, -(DefaultRangeDays - 1)))
	}
	if from.After(to.Time) {
		return domain.Date{}, domain.Date{}, &domain.ValidationError{Field: "from", Code: domain.CodeOutOfRange}
	}
	if span := int(to.Sub(from.Time).Hours()/24) + 1; span > MaxRangeDays {
		return domain.Date{}, domain.Date{}, &domain.ValidationError{Field: "to", Code: domain.CodeOutOfRange}
	}
	return from, to, nil
}

// Summarize returns one bucket per day in [from, to], zero-filled, with totals
// and the top pages and referrers over the range.
func (s *Service) Summarize(ctx context.Context, from, to domain.Date) (Summary, error) {
	from, to, err := s.ResolveRange(from, to)
	if err != nil {
		return Summary{}, err
	}
	stored, err := s.tx.Stores().Visits.ListDays(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	byDay := make(map[string]domain.DailyVisits, len(stored))
	for _, d := range stored {
		byDay[d.Day.String()] = d
	}

	summary := Summary{
		From:   from,
		To:     to,
		Days:   make([]domain.DailyVisits, 0, len(stored)),
		Totals: Totals{Devices: map[string]int64{}},
	}
	pages := map[string]int64{}
	referrers := map[string]int64{}
	for day := from; !day.After(to.Time); day = domain.NewDate(day.AddDate(0, 0, 1)) {
		bucket, ok := byDay[day.String()]
		if !ok {
			bucket = domain.NewDailyVisits(day)
		}
		summary.Days = append(summary.Days, bucket)
		summary.Totals.Visits += bucket.Visits
		summary.Totals.UniqueVisitors += bucket.UniqueVisitors
		for k, n := range bucket.Devices {
			summary.Totals.Devices[k] += n
		}
		for k, n := range bucket.Pages {
			pages[k] += n
		}
		for k, n := range bucket.Referrers {
			referrers[k] += n
		}
	}
	summary.TopPages = top(pages, topN)
	summary.TopReferrers = top(referrers, topN)
	return summary, nil
}

// top orders by count descending, then key ascending.
func top(counts map[string]int64, n int) []Count {
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
