package newsletters

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz/authztest"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type fakeNewsletterRepo struct {
	items map[string]Newsletter
}

func (r *fakeNewsletterRepo) List(ctx context.Context, limit int) ([]Newsletter, error) {
	result := make([]Newsletter, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PublishedAt.After(result[j].PublishedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeNewsletterRepo) Create(ctx context.Context, newsletter *Newsletter) error {
	r.items[newsletter.ID] = *newsletter
	return nil
}

func (r *fakeNewsletterRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func newTestService(t *testing.T) (*Service, *fakeNewsletterRepo) {
	t.Helper()
	repo := &fakeNewsletterRepo{items: make(map[string]Newsletter)}
	enforcer, _ := authztest.New(t, "admin")
	service := NewService(repo, enforcer, logger.Nop())
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}
	return service, repo
}

func TestCreateStampsAuthorAndPublishTime(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(context.Background(), "admin", CreateInput{Title: " Spring drive ", Content: "Bring cans."})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Title != "Spring drive" || created.CreatedBy != "admin" || created.PublishedAt.IsZero() {
		t.Fatalf("unexpected newsletter %+v", created)
	}
}

func TestCreateRequiresAdminAndFields(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	if _, err := service.Create(ctx, "member", CreateInput{Title: "x", Content: "y"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.Create(ctx, "admin", CreateInput{Title: "x"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no rows")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third", "fourth"} {
		if _, err := service.Create(ctx, "admin", CreateInput{Title: title, Content: "body"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	items, err := service.List(ctx, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 3 || items[0].Title != "fourth" {
		t.Fatalf("expected latest three newest first, got %+v", items)
	}
}

func TestDeleteNewsletter(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	created, _ := service.Create(ctx, "admin", CreateInput{Title: "x", Content: "y"})
	if err := service.Delete(ctx, "member", created.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := service.Delete(ctx, "admin", created.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := service.Delete(ctx, "admin", created.ID); !errors.Is(err, ErrNewsletterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMalformedNewsletterIDIsNotFound(t *testing.T) {
	service, repo := newTestService(t)
	repo.items["legacy"] = Newsletter{ID: "legacy"}

	if err := service.Delete(context.Background(), "admin", "legacy"); !errors.Is(err, ErrNewsletterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, ok := repo.items["legacy"]; !ok {
		t.Fatalf("expected the repository to be left alone")
	}
}
