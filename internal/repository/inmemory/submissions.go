package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/MalavS298/basiscpk/internal/domain/submissions"
)

type SubmissionRepository struct {
	store *Store
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *submissions.Submission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.submissions[submission.ID] = *submission
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*submissions.Submission, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.submissions[id]
	if !ok {
		return nil, submissions.ErrSubmissionNotFound
	}
	return &item, nil
}

func (r *SubmissionRepository) List(ctx context.Context, filter submissions.ListFilter) ([]submissions.Submission, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]submissions.Submission, 0)
	for _, item := range r.store.submissions {
		if filter.UserID != "" && item.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := int64(len(matched))
	return page(matched, filter.Limit, filter.Offset), total, nil
}

func (r *SubmissionRepository) UpdateDecision(ctx context.Context, id string, status submissions.Status, approvedAt *time.Time, approvedBy *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.submissions[id]
	if !ok {
		return submissions.ErrSubmissionNotFound
	}
	item.Status = status
	item.ApprovedAt = approvedAt
	item.ApprovedBy = approvedBy
	r.store.submissions[id] = item
	return nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.submissions[id]; !ok {
		return false, nil
	}
	delete(r.store.submissions, id)
	return true, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
