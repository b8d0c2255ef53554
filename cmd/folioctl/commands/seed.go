package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/platform/postgres"
	"github.com/folio-labs/folio-go/internal/repo"
	pgrepo "github.com/folio-labs/folio-go/internal/repo/postgres"
	"github.com/folio-labs/folio-go/internal/service/posts"
)

const seedActor = "folioctl"

type seedFile struct {
	Projects     []seedProject     `yaml:"projects"`
	Posts        []seedPost        `yaml:"posts"`
	Testimonials []seedTestimonial `yaml:"testimonials"`
	Skills       []seedSkill       `yaml:"skills"`
	Experience   []seedExperience  `yaml:"experience"`
}

type seedProject struct {
	Title        string   `yaml:"title"`
	Slug         string   `yaml:"slug"`
	Summary      string   `yaml:"summary"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	Category     string   `yaml:"category"`
	ImageURL     string   `yaml:"image_url"`
	RepoURL      string   `yaml:"repo_url"`
	LiveURL      string   `yaml:"live_url"`
	Featured     bool     `yaml:"featured"`
	DisplayOrder int      `yaml:"display_order"`
}

type seedPost struct {
	Title         string   `yaml:"title"`
	Slug          string   `yaml:"slug"`
	Excerpt       string   `yaml:"excerpt"`
	Content       string   `yaml:"content"`
	CoverImageURL string   `yaml:"cover_image_url"`
	Tags          []string `yaml:"tags"`
	Published     bool     `yaml:"published"`
}

type seedTestimonial struct {
	AuthorName string `yaml:"author_name"`
	AuthorRole string `yaml:"author_role"`
	Company    string `yaml:"company"`
	AvatarURL  string `yaml:"avatar_url"`
	Content    string `yaml:"content"`
	Rating     int    `yaml:"rating"`
	Approved   bool   `yaml:"approved"`
	Featured   bool   `yaml:"featured"`
}

type seedSkill struct {
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Proficiency  int    `yaml:"proficiency"`
	Icon         string `yaml:"icon"`
	DisplayOrder int    `yaml:"display_order"`
}

type seedExperience struct {
	Kind         string   `yaml:"kind"`
	Title        string   `yaml:"title"`
	Organization string   `yaml:"organization"`
	Location     string   `yaml:"location"`
	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	Current      bool     `yaml:"current"`
	Description  string   `yaml:"description"`
	Highlights   []string `yaml:"highlights"`
	Technologies []string `yaml:"technologies"`
	DisplayOrder int      `yaml:"display_order"`
}

// seedReport counts created and skipped rows per content type.
type seedReport struct {
	Created map[string]int
	Skipped map[string]int
}

func (r seedReport) String() string {
	var b strings.Builder
	for _, kind := range []string{"project", "post", "testimonial", "skill", "experience"} {
		fmt.Fprintf(&b, "%s: %d created, %d skipped\n", kind, r.Created[kind], r.Skipped[kind])
	}
	return b.String()
}

func seedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed --file content.yaml",
		Short: "Load portfolio content from a YAML file, skipping entries that already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return errors.New("--file is required")
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			doc, err := parseSeed(raw)
			if err != nil {
				return err
			}

			cfg, err := postgres.ConfigFromEnv()
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			report, err := applySeed(cmd.Context(), pgrepo.NewRegistry(db), doc, time.Now)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file")
	return cmd
}

func parseSeed(raw []byte) (seedFile, error) {
	var doc seedFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return seedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return doc, nil
}

// applySeed writes every entry that is not already present. Each entry is its own transaction
// with an audit row; the first invalid entry stops the run.
func applySeed(ctx context.Context, tx repo.Transactor, doc seedFile, now func() time.Time) (seedReport, error) {
	report := seedReport{Created: map[string]int{}, Skipped: map[string]int{}}
	postService, err := posts.NewService(tx)
	if err != nil {
		return report, err
	}
	stores := tx.Stores()
	track := func(kind string, created bool) {
		if created {
			report.Created[kind]++
		} else {
			report.Skipped[kind]++
		}
	}

	for i, in := range doc.Projects {
		ts := now().UTC()
		p := domain.Project{
			ID: uuid.NewString(), Title: in.Title, Slug: in.Slug, Summary: in.Summary, Description: in.Description,
			Technologies: in.Technologies, Category: domain.ProjectCategory(in.Category), ImageURL: in.ImageURL,
			RepoURL: in.RepoURL, LiveURL: in.LiveURL, Featured: in.Featured, DisplayOrder: in.DisplayOrder,
			CreatedAt: ts, UpdatedAt: ts,
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return report, fmt.Errorf("projects[%d]: %w", i, err)
		}
		if _, err := stores.Projects.GetBySlug(ctx, p.Slug); err == nil {
			track("project", false)
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return report, fmt.Errorf("projects[%d]: %w", i, err)
		}
		err := tx.InTx(ctx, func(s repo.Stores) error {
			if err := s.Projects.Create(ctx, p); err != nil {
				return err
			}
			return appendSeedAudit(ctx, s, ts, "project", p.ID)
		})
		if err != nil {
			return report, fmt.Errorf("projects[%d]: %w", i, err)
		}
		track("project", true)
	}

	for i, in := range doc.Posts {
		slug := domain.Slugify(in.Slug)
		if strings.TrimSpace(in.Slug) == "" {
			slug = domain.Slugify(in.Title)
		}
		if _, err := stores.Posts.GetBySlug(ctx, slug); err == nil {
			track("post", false)
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return report, fmt.Errorf("posts[%d]: %w", i, err)
		}
		_, err := postService.Create(ctx, posts.Input{
			Title: in.Title, Slug: in.Slug, Excerpt: in.Excerpt, Content: in.Content,
			CoverImageURL: in.CoverImageURL, Tags: in.Tags, Published: in.Published,
		}, seedMeta(now().UTC(), "post", ""))
		if err != nil {
			return report, fmt.Errorf("posts[%d]: %w", i, err)
		}
		track("post", true)
	}

	if len(doc.Testimonials) > 0 {
		existing, err := listAll(repo.TestimonialOrder, func(p repo.ListParams) ([]domain.Testimonial, error) {
			return stores.Testimonials.List(ctx, repo.TestimonialFilter{ListParams: p})
		})
		if err != nil {
			return report, fmt.Errorf("list testimonials: %w", err)
		}
		seen := map[string]struct{}{}
		for _, t := range existing {
			seen[strings.ToLower(t.AuthorName+"\x00"+t.Content)] = struct{}{}
		}
		for i, in := range doc.Testimonials {
			ts := now().UTC()
			t := domain.Testimonial{
				ID: uuid.NewString(), AuthorName: in.AuthorName, AuthorRole: in.AuthorRole, Company: in.Company,
				AvatarURL: in.AvatarURL, Content: in.Content, Rating: in.Rating, Approved: in.Approved, Featured: in.Featured,
				CreatedAt: ts, UpdatedAt: ts,
			}
			t.Normalize()
			if err := t.Validate(); err != nil {
				return report, fmt.Errorf("testimonials[%d]: %w", i, err)
			}
			key := strings.ToLower(t.AuthorName + "\x00" + t.Content)
			if _, ok := seen[key]; ok {
				track("testimonial", false)
				continue
			}
			err := tx.InTx(ctx, func(s repo.Stores) error {
				if err := s.Testimonials.Create(ctx, t); err != nil {
					return err
				}
				return appendSeedAudit(ctx, s, ts, "testimonial", t.ID)
			})
			if err != nil {
				return report, fmt.Errorf("testimonials[%d]: %w", i, err)
			}
			seen[key] = struct{}{}
			track("testimonial", true)
		}
	}

	if len(doc.Skills) > 0 {
		existing, err := listAll(repo.SkillOrder, func(p repo.ListParams) ([]domain.Skill, error) {
			return stores.Skills.List(ctx, repo.SkillFilter{ListParams: p})
		})
		if err != nil {
			return report, fmt.Errorf("list skills: %w", err)
		}
		seen := map[string]struct{}{}
		for _, s := range existing {
			seen[strings.ToLower(s.Name)] = struct{}{}
		}
		for i, in := range doc.Skills {
			ts := now().UTC()
			skill := domain.Skill{
				ID: uuid.NewString(), Name: in.Name, Category: domain.SkillCategory(in.Category),
				Proficiency: in.Proficiency, Icon: in.Icon, DisplayOrder: in.DisplayOrder,
				CreatedAt: ts, UpdatedAt: ts,
			}
			skill.Normalize()
			if err := skill.Validate(); err != nil {
				return report, fmt.Errorf("skills[%d]: %w", i, err)
			}
			key := strings.ToLower(skill.Name)
			if _, ok := seen[key]; ok {
				track("skill", false)
				continue
			}
			err := tx.InTx(ctx, func(s repo.Stores) error {
				if err := s.Skills.Create(ctx, skill); err != nil {
					return err
				}
				return appendSeedAudit(ctx, s, ts, "skill", skill.ID)
			})
			if err != nil {
				return report, fmt.Errorf("skills[%d]: %w", i, err)
			}
			seen[key] = struct{}{}
			track("skill", true)
		}
	}

	if len(doc.Experience) > 0 {
		existing, err := listAll(repo.ExperienceOrder, func(p repo.ListParams) ([]domain.Experience, error) {
			return stores.Experience.List(ctx, repo.ExperienceFilter{ListParams: p})
		})
		if err != nil {
			return report, fmt.Errorf("list experience: %w", err)
		}
		seen := map[string]struct{}{}
		for _, e := range existing {
			seen[experienceKey(e)] = struct{}{}
		}
		for i, in := range doc.Experience {
			entry, err := in.toDomain(now().UTC())
			if err != nil {
				return report, fmt.Errorf("experience[%d]: %w", i, err)
			}
			key := experienceKey(entry)
			if _, ok := seen[key]; ok {
				track("experience", false)
				continue
			}
			err = tx.InTx(ctx, func(s repo.Stores) error {
				if err := s.Experience.Create(ctx, entry); err != nil {
					return err
				}
				return appendSeedAudit(ctx, s, entry.CreatedAt, "experience", entry.ID)
			})
			if err != nil {
				return report, fmt.Errorf("experience[%d]: %w", i, err)
			}
			seen[key] = struct{}{}
			track("experience", true)
		}
	}

	logger.Info("seed finished", "created", report.Created, "skipped", report.Skipped)
	return report, nil
}

func (in seedExperience) toDomain(ts time.Time) (domain.Experience, error) {
	e := domain.Experience{
		ID: uuid.NewString(), Kind: domain.ExperienceKind(in.Kind), Title: in.Title, Organization: in.Organization,
		Location: in.Location, Current: in.Current, Description: in.Description, Highlights: in.Highlights,
		Technologies: in.Technologies, DisplayOrder: in.DisplayOrder, CreatedAt: ts, UpdatedAt: ts,
	}
	if strings.TrimSpace(in.StartDate) != "" {
		d, err := domain.ParseDate(in.StartDate)
		if err != nil {
			return domain.Experience{}, &domain.ValidationError{Field: "start_date", Code: domain.CodeInvalid}
		}
		e.StartDate = d
	}
	if strings.TrimSpace(in.EndDate) != "" {
		d, err := domain.ParseDate(in.EndDate)
		if err != nil {
			return domain.Experience{}, &domain.ValidationError{Field: "end_date", Code: domain.CodeInvalid}
		}
		e.EndDate = d
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return domain.Experience{}, err
	}
	return e, nil
}

func experienceKey(e domain.Experience) string {
	return strings.ToLower(e.Title + "\x00" + e.Organization + "\x00" + e.StartDate.String())
}

// listAll pages through every row in the default order of cfg.
func listAll[T any](cfg repo.OrderConfig, list func(repo.ListParams) ([]T, error)) ([]T, error) {
	orderBy, err := repo.ParseOrder("", cfg)
	if err != nil {
		return nil, err
	}
	var out []T
	for offset := 0; ; offset += repo.MaxLimit {
		page, err := list(repo.ListParams{Limit: repo.MaxLimit, Offset: offset, OrderBy: orderBy})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < repo.MaxLimit {
			return out, nil
		}
	}
}

func seedMeta(ts time.Time, resourceType, resourceID string) auditlog.Event {
	return auditlog.Event{
		OccurredAt:   ts,
		Actor:        seedActor,
		Action:       auditlog.ActionCreate,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

func appendSeedAudit(ctx context.Context, stores repo.Stores, ts time.Time, resourceType, resourceID string) error {
	if stores.Audit == nil {
		return nil
	}
	_, err := stores.Audit.Append(ctx, seedMeta(ts, resourceType, resourceID))
	return err
}
