// Package memory is a process-local implementation of the repo interfaces.
// It backs SITE_STORAGE=memory for local development and the handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
)

type state struct {
	projects     map[string]domain.Project
	posts        map[string]domain.Post
	testimonials map[string]domain.Testimonial
	skills       map[string]domain.Skill
	experience   map[string]domain.Experience
	contact      map[string]domain.ContactMessage
	days         map[string]domain.DailyVisits
	audit        []auditlog.Event
}

func newState() *state {
	return &state{
		projects:     map[string]domain.Project{},
		posts:        map[string]domain.Post{},
		testimonials: map[string]domain.Testimonial{},
		skills:       map[string]domain.Skill{},
		experience:   map[string]domain.Experience{},
		contact:      map[string]domain.ContactMessage{},
		days:         map[string]domain.DailyVisits{},
	}
}

func (s *state) clone() *state {
	out := &state{
		projects:     cloneMap(s.projects),
		posts:        cloneMap(s.posts),
		testimonials: cloneMap(s.testimonials),
		skills:       cloneMap(s.skills),
		experience:   cloneMap(s.experience),
		contact:      cloneMap(s.contact),
		days:         cloneMap(s.days),
		audit:        s.audit[:len(s.audit):len(s.audit)],
	}
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Store implements repo.Transactor. Transactions hold the store lock and roll
// back by restoring a snapshot. Day buckets are replaced, never mutated in
// place, so the snapshot shares their count maps. The audit log is append-only
// and the snapshot keeps only its length.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// AuditEvents returns a copy of every appended audit event.
func (s *Store) AuditEvents() []auditlog.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.audit)
}

func (s *Store) Stores() repo.Stores {
	return s.stores(func() func() {
		s.mu.Lock()
		return s.mu.Unlock
	})
}

func (s *Store) InTx(ctx context.Context, fn func(repo.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(s.stores(func() func() { return func() {} })); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) stores(lock func() func()) repo.Stores {
	v := &view{store: s, lock: lock}
	return repo.Stores{
		Projects:     projects{v},
		Posts:        posts{v},
		Testimonials: testimonials{v},
		Skills:       skills{v},
		Experience:   experience{v},
		Contact:      contact{v},
		Visits:       visits{v},
		Stats:        stats{v},
		Audit:        audits{v},
	}
}

type view struct {
	store *Store
	lock  func() func()
}

func (v *view) do(fn func(st *state) error) error {
	unlock := v.lock()
	defer unlock()
	return fn(v.store.st)
}

// page applies ordering and offset/limit to items already filtered. Fields in
// nulls sort their null values last in both directions, as Postgres does.
func page[T any](items []T, params repo.ListParams, less map[string]func(a, b T) int, nulls map[string]func(T) bool, tiebreak func(T) string) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		for _, field := range params.OrderBy.Fields {
			fn, ok := less[field.Path]
			if !ok {
				continue
			}
			if isNull, ok := nulls[field.Path]; ok {
				an, bn := isNull(a), isNull(b)
				switch {
				case an && bn:
					continue
				case an:
					return 1
				case bn:
					return -1
				}
			}
			c := fn(a, b)
			if field.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(tiebreak(a), tiebreak(b))
	})
	if params.Offset >= len(items) {
		return []T{}
	}
	items = items[params.Offset:]
	if limit := repo.ClampLimit(params.Limit); len(items) > limit {
		items = items[:limit]
	}
	return items
}

func values[V any](m map[string]V, keep func(V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func timeCmp(a, b time.Time) int { return a.Compare(b) }

func foldCmp(a, b string) int { return cmp.Compare(strings.ToLower(a), strings.ToLower(b)) }

func containsFold(items []string, want string) bool {
	return slices.ContainsFunc(items, func(s string) bool { return strings.EqualFold(s, want) })
}
