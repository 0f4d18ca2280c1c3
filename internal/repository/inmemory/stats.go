package inmemory

import (
	"context"

	"github.com/MalavS298/basiscpk/internal/domain/stats"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
)

type StatsRepository struct {
	store *Store
}

func (r *StatsRepository) ListApproved(ctx context.Context, userID string) ([]submissions.Submission, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]submissions.Submission, 0)
	for _, item := range r.store.submissions {
		if item.Status != submissions.StatusApproved {
			continue
		}
		if userID != "" && item.UserID != userID {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *StatsRepository) CountSubmissions(ctx context.Context, userID string, status submissions.Status) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, item := range r.store.submissions {
		if userID != "" && item.UserID != userID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		count++
	}
	return count, nil
}

func (r *StatsRepository) ListMembers(ctx context.Context) ([]stats.MemberRef, error) {
	profiles, err := r.store.Users().ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]stats.MemberRef, 0, len(profiles))
	for _, profile := range profiles {
		result = append(result, stats.MemberRef{
			UserID:   profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
		})
	}
	return result, nil
}
