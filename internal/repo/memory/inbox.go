package memory

import (
	"context"
	"sort"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
)

type contact struct{ v *view }

var contactOrder = map[string]func(a, b domain.ContactMessage) int{
	"created_at": func(a, b domain.ContactMessage) int { return timeCmp(a.CreatedAt, b.CreatedAt) },
	"status":     func(a, b domain.ContactMessage) int { return foldCmp(string(a.Status), string(b.Status)) },
	"name":       func(a, b domain.ContactMessage) int { return foldCmp(a.Name, b.Name) },
}

func (r contact) crud() crud[domain.ContactMessage] {
	return crud[domain.ContactMessage]{
		v:     r.v,
		table: func(st *state) map[string]domain.ContactMessage { return st.contact },
		id:    func(m domain.ContactMessage) string { return m.ID },
	}
}

func (r contact) Create(ctx context.Context, m domain.ContactMessage) error {
	return r.crud().create(m, m.Validate, nil)
}

func (r contact) Get(ctx context.Context, id string) (domain.ContactMessage, error) {
	return r.crud().get(id)
}

func (r contact) List(ctx context.Context, f repo.ContactFilter) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	err := r.v.do(func(st *state) error {
		items := values(st.contact, func(m domain.ContactMessage) bool {
			return f.Status == "" || m.Status == f.Status
		})
		out = page(items, f.ListParams, contactOrder, nil, func(m domain.ContactMessage) string { return m.ID })
		return nil
	})
	return out, err
}

func (r contact) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (domain.ContactMessage, error) {
	if !status.Valid() {
		return domain.ContactMessage{}, &domain.ValidationError{Field: "status", Code: domain.CodeNotAllowed}
	}
	var out domain.ContactMessage
	err := r.v.do(func(st *state) error {
		m, ok := st.contact[id]
		if !ok {
			return repo.ErrNotFound
		}
		m.Status = status
		m.UpdatedAt = r.v.store.now().UTC()
		st.contact[id] = m
		out = m
		return nil
	})
	return out, err
}

func (r contact) Delete(ctx context.Context, id string) error {
	return r.crud().remove(id)
}

type visits struct{ v *view }

func (r visits) Record(ctx context.Context, visit domain.Visit) (domain.DailyVisits, error) {
	var out domain.DailyVisits
	err := r.v.do(func(st *state) error {
		at := visit.At
		if at.IsZero() {
			at = r.v.store.now()
		}
		day := domain.NewDate(at)
		bucket, ok := st.days[day.String()]
		if !ok {
			bucket = domain.NewDailyVisits(day)
		}
		bucket = cloneBucket(bucket)
		bucket.Apply(visit)
		bucket.UpdatedAt = r.v.store.now().UTC()
		st.days[day.String()] = bucket
		out = cloneBucket(bucket)
		return nil
	})
	return out, err
}

func (r visits) ListDays(ctx context.Context, from, to domain.Date) ([]domain.DailyVisits, error) {
	out := make([]domain.DailyVisits, 0)
	err := r.v.do(func(st *state) error {
		for _, d := range st.days {
			if d.Day.Before(from.Time) || d.Day.After(to.Time) {
				continue
			}
			out = append(out, cloneBucket(d))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day.Time) })
	return out, err
}

func cloneBucket(d domain.DailyVisits) domain.DailyVisits {
	d.Pages = cloneMap(d.Pages)
	d.Devices = cloneMap(d.Devices)
	d.Referrers = cloneMap(d.Referrers)
	return d
}

type stats struct{ v *view }

func (r stats) Dashboard(ctx context.Context, today domain.Date) (repo.DashboardStats, error) {
	out := repo.DashboardStats{Contact: map[domain.ContactStatus]int64{}}
	for _, status := range domain.ContactStatuses {
		out.Contact[status] = 0
	}
	err := r.v.do(func(st *state) error {
		out.Projects = int64(len(st.projects))
		for _, p := range st.posts {
			if p.Published {
				out.PostsPublished++
			} else {
				out.PostsDraft++
			}
		}
		out.Testimonials = int64(len(st.testimonials))
		for _, t := range st.testimonials {
			if !t.Approved {
				out.TestimonialsPending++
			}
		}
		out.Skills = int64(len(st.skills))
		out.Experience = int64(len(st.experience))
		for _, m := range st.contact {
			out.Contact[m.Status]++
		}
		out.VisitsToday = st.days[today.String()].Visits
		return nil
	})
	return out, err
}

type audits struct{ v *view }

func (r audits) Append(ctx context.Context, event auditlog.Event) (int64, error) {
	var id int64
	err := r.v.do(func(st *state) error {
		if event.OccurredAt.IsZero() {
			event.OccurredAt = r.v.store.now().UTC()
		}
		if err := event.Validate(); err != nil {
			return err
		}
		st.audit = append(st.audit, event)
		id = int64(len(st.audit))
		return nil
	})
	return id, err
}
