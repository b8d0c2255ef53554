package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/folio-labs/folio-go/internal/domain"
	"github.com/folio-labs/folio-go/internal/platform/auditlog"
	"github.com/folio-labs/folio-go/internal/repo"
	"github.com/folio-labs/folio-go/internal/repo/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *time.Time) {
	t.Helper()
	store := memory.New()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService() err=%v", err)
	}
	now := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("post-%d", n)
	}
	return svc, store, &now
}

var meta = auditlog.Event{Actor: "owner", RequestID: "rid"}

func TestCreate_DerivesFields(t *testing.T) {
	svc, store, _ := newTestService(t)
	post, err := svc.Create(context.Background(), Input{
		Title:   "Hello, Go!",
		Content: strings.Repeat("word ", 450),
		Tags:    []string{"Go", "go"},
	}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if post.Slug != "hello-go" {
		t.Fatalf("Slug=%q, want hello-go", post.Slug)
	}
	if post.ReadTimeMinutes != 3 {
		t.Fatalf("ReadTimeMinutes=%d, want 3", post.ReadTimeMinutes)
	}
	if post.Excerpt == "" {
		t.Fatalf("expected derived excerpt")
	}
	if post.PublishedAt != nil {
		t.Fatalf("draft should not have PublishedAt")
	}
	if len(post.Tags) != 1 || post.Tags[0] != "go" {
		t.Fatalf("Tags=%v, want [go]", post.Tags)
	}

	events := store.AuditEvents()
	if len(events) != 1 || events[0].Action != auditlog.ActionCreate || events[0].ResourceID != post.ID {
		t.Fatalf("audit events=%+v", events)
	}
}

func TestCreate_DeduplicatesSlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	var slugs []string
	for i := 0; i < 3; i++ {
		post, err := svc.Create(ctx, Input{Title: "Same Title", Content: "body"}, meta)
		if err != nil {
			t.Fatalf("Create() err=%v", err)
		}
		slugs = append(slugs, post.Slug)
	}
	want := []string{"same-title", "same-title-2", "same-title-3"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("slugs=%v, want %v", slugs, want)
		}
	}
}

func TestCreate_ValidationFailsWithoutAudit(t *testing.T) {
	svc, store, _ := newTestService(t)
	_, err := svc.Create(context.Background(), Input{Title: "No body"}, meta)
	ve, ok := domain.AsValidationError(err)
	if !ok || ve.Field != "content" {
		t.Fatalf("err=%v, want content validation error", err)
	}
	if n := len(store.AuditEvents()); n != 0 {
		t.Fatalf("audit events=%d, want 0", n)
	}
}

func TestUpdate_PublishStampsOnce(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, Input{Title: "Draft", Content: "body"}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	*now = now.Add(time.Hour)
	published, err := svc.Update(ctx, post.ID, Input{Title: "Draft", Content: "body", Published: true}, meta)
	if err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(*now) {
		t.Fatalf("PublishedAt=%v, want %v", published.PublishedAt, *now)
	}
	firstPublish := *published.PublishedAt

	*now = now.Add(time.Hour)
	unpublished, err := svc.Update(ctx, post.ID, Input{Title: "Draft", Content: "body"}, meta)
	if err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	*now = now.Add(time.Hour)
	again, err := svc.Update(ctx, post.ID, Input{Title: "Draft", Content: "body", Published: true}, meta)
	if err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	if unpublished.Published || again.PublishedAt == nil || !again.PublishedAt.Equal(firstPublish) {
		t.Fatalf("PublishedAt=%v, want first publish time %v", again.PublishedAt, firstPublish)
	}
}

func TestUpdate_TitleChangeRederivesSlugExcludingSelf(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	first, err := svc.Create(ctx, Input{Title: "Alpha", Content: "body"}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if _, err := svc.Create(ctx, Input{Title: "Beta", Content: "body"}, meta); err != nil {
		t.Fatalf("Create() err=%v", err)
	}

	same, err := svc.Update(ctx, first.ID, Input{Title: "Alpha", Content: "new body"}, meta)
	if err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	if same.Slug != "alpha" {
		t.Fatalf("Slug=%q, want alpha", same.Slug)
	}

	renamed, err := svc.Update(ctx, first.ID, Input{Title: "Beta", Content: "new body"}, meta)
	if err != nil {
		t.Fatalf("Update() err=%v", err)
	}
	if renamed.Slug != "beta-2" {
		t.Fatalf("Slug=%q, want beta-2", renamed.Slug)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", Input{Title: "x", Content: "y"}, meta)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestReadPublished_HidesDraftsAndCountsViews(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, Input{Title: "Draft", Content: "body"}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if _, err := svc.ReadPublished(ctx, draft.Slug); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("ReadPublished(draft) err=%v, want ErrNotFound", err)
	}

	live, err := svc.Create(ctx, Input{Title: "Live", Content: "body", Published: true}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	for want := int64(1); want <= 2; want++ {
		got, err := svc.ReadPublished(ctx, live.Slug)
		if err != nil {
			t.Fatalf("ReadPublished() err=%v", err)
		}
		if got.Views != want {
			t.Fatalf("Views=%d, want %d", got.Views, want)
		}
	}
}

func TestDelete_ThenGet404(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, Input{Title: "Gone", Content: "body"}, meta)
	if err != nil {
		t.Fatalf("Create() err=%v", err)
	}
	if err := svc.Delete(ctx, post.ID, meta); err != nil {
		t.Fatalf("Delete() err=%v", err)
	}
	if _, err := svc.Get(ctx, post.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Get() err=%v, want ErrNotFound", err)
	}
	events := store.AuditEvents()
	if events[len(events)-1].Action != auditlog.ActionDelete {
		t.Fatalf("last audit action=%q, want delete", events[len(events)-1].Action)
	}
}
