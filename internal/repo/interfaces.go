package repo

import (
	"context"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
)

type ProjectFilter struct {
	Category   domain.ProjectCategory
	Featured   *bool
	Technology string
	ListParams
}

type PostFilter struct {
	Published *bool
	Tag       string
	Query     string
	ListParams
}

type TestimonialFilter struct {
	Approved *bool
	Featured *bool
	ListParams
}

type SkillFilter struct {
	Category domain.SkillCategory
	ListParams
}

type ExperienceFilter struct {
	Kind domain.ExperienceKind
	ListParams
}

type ContactFilter struct {
	Status domain.ContactStatus
	ListParams
}

// ProjectRepository manages portfolio projects.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	Get(ctx context.Context, id string) (domain.Project, error)
	GetBySlug(ctx context.Context, slug string) (domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, id string) error
}

// PostRepository manages blog posts.
type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	Get(ctx context.Context, id string) (domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]domain.Post, error)
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id string) error
	// SlugExists ignores the post with excludeID so an update can keep its own slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
}

type TestimonialRepository interface {
	Create(ctx context.Context, testimonial domain.Testimonial) error
	Get(ctx context.Context, id string) (domain.Testimonial, error)
	List(ctx context.Context, filter TestimonialFilter) ([]domain.Testimonial, error)
	Update(ctx context.Context, testimonial domain.Testimonial) error
	Delete(ctx context.Context, id string) error
}

type SkillRepository interface {
	Create(ctx context.Context, skill domain.Skill) error
	Get(ctx context.Context, id string) (domain.Skill, error)
	List(ctx context.Context, filter SkillFilter) ([]domain.Skill, error)
	Update(ctx context.Context, skill domain.Skill) error
	Delete(ctx context.Context, id string) error
}

type ExperienceRepository interface {
	Create(ctx context.Context, experience domain.Experience) error
	Get(ctx context.Context, id string) (domain.Experience, error)
	List(ctx context.Context, filter ExperienceFilter) ([]domain.Experience, error)
	Update(ctx context.Context, experience domain.Experience) error
	Delete(ctx context.Context, id string) error
}

type ContactRepository interface {
	Create(ctx context.Context, message domain.ContactMessage) error
	Get(ctx context.Context, id string) (domain.ContactMessage, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (domain.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// VisitRepository holds the per-day analytics buckets.
type VisitRepository interface {
	// Record adds visit to its day bucket with a locked read-modify-write.
	Record(ctx context.Context, visit domain.Visit) (domain.DailyVisits, error)
	ListDays(ctx context.Context, from, to domain.Date) ([]domain.DailyVisits, error)
}

// DashboardStats are the admin overview counters.
type DashboardStats struct {
	Projects            int64                          `json:"projects"`
	PostsPublished      int64                          `json:"posts_published"`
	PostsDraft          int64                          `json:"posts_draft"`
	Testimonials        int64                          `json:"testimonials"`
	TestimonialsPending int64                          `json:"testimonials_pending"`
	Skills              int64                          `json:"skills"`
	Experience          int64                          `json:"experience"`
	Contact             map[domain.ContactStatus]int64 `json:"contact"`
	VisitsToday         int64                          `json:"visits_today"`
}

type StatsRepository interface {
	Dashboard(ctx context.Context, today domain.Date) (DashboardStats, error)
}

// AuditAppender ensures append-only audit writes.
type AuditAppender interface {
	Append(ctx context.Context, event auditlog.Event) (int64, error)
}

// Stores groups the repositories bound to one connection or transaction.
type Stores struct {
	Projects     ProjectRepository
	Posts        PostRepository
	Testimonials TestimonialRepository
	Skills       SkillRepository
	Experience   ExperienceRepository
	Contact      ContactRepository
	Visits       VisitRepository
	Stats        StatsRepository
	Audit        AuditAppender
}

// Transactor runs fn with stores bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Stores() Stores
	InTx(ctx context.Context, fn func(Stores) error) error
}
