package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/folio-labs/folio-go/internal/repo"
)

// Registry hands out stores bound either to the pool or to one transaction.
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) Stores() repo.Stores {
	return storesFor(r.db)
}

func (r *Registry) InTx(ctx context.Context, fn func(repo.Stores) error) error {
	if r == nil || r.db == nil {
		return errors.New("registry not initialized")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(storesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func storesFor(db DB) repo.Stores {
	return repo.Stores{
		Projects:     NewProjectStore(db),
		Posts:        NewPostStore(db),
		Testimonials: NewTestimonialStore(db),
		Skills:       NewSkillStore(db),
		Experience:   NewExperienceStore(db),
		Contact:      NewContactStore(db),
		Visits:       NewVisitStore(db),
		Stats:        NewStatsStore(db),
		Audit:        NewAuditAppender(db),
	}
}
