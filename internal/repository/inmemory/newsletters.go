package inmemory

import (
	"context"
	"sort"

	"github.com/MalavS298/basiscpk/internal/domain/newsletters"
)

type NewsletterRepository struct {
	store *Store
}

func (r *NewsletterRepository) List(ctx context.Context, limit int) ([]newsletters.Newsletter, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]newsletters.Newsletter, 0, len(r.store.newsletters))
	for _, item := range r.store.newsletters {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PublishedAt.After(result[j].PublishedAt)
	})
	return page(result, limit, 0), nil
}

func (r *NewsletterRepository) Create(ctx context.Context, newsletter *newsletters.Newsletter) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.newsletters[newsletter.ID] = *newsletter
	return nil
}

func (r *NewsletterRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.newsletters[id]; !ok {
		return false, nil
	}
	delete(r.store.newsletters, id)
	return true, nil
}
