package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/domain/user"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Transaction(ctx context.Context, fn func(user.Repository) error) error {
	return r.store.transaction(func(tx *Store) error {
		return fn(&UserRepository{store: tx})
	})
}

func (r *UserRepository) UpsertProfile(ctx context.Context, profile *user.Profile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.profiles[profile.ID]
	if !ok {
		row := *profile
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		r.store.profiles[profile.ID] = row
		return nil
	}
	if profile.Email != nil {
		existing.Email = profile.Email
	}
	if profile.FullName != nil {
		existing.FullName = profile.FullName
	}
	r.store.profiles[profile.ID] = existing
	return nil
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	profile, ok := r.store.profiles[userID]
	if !ok {
		return nil, user.ErrProfileNotFound
	}
	return &profile, nil
}

func (r *UserRepository) ListProfiles(ctx context.Context) ([]user.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]user.Profile, 0, len(r.store.profiles))
	for _, profile := range r.store.profiles {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *UserRepository) EnsureRole(ctx context.Context, assignment *user.RoleAssignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.roles[assignment.UserID]; !ok {
		r.store.roles[assignment.UserID] = *assignment
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, assignment *user.RoleAssignment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.roles[assignment.UserID]; ok {
		existing.Role = assignment.Role
		r.store.roles[assignment.UserID] = existing
		return nil
	}
	r.store.roles[assignment.UserID] = *assignment
	return nil
}

func (r *UserRepository) GetRole(ctx context.Context, userID string) (*user.RoleAssignment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	assignment, ok := r.store.roles[userID]
	if !ok {
		return nil, user.ErrRoleNotFound
	}
	return &assignment, nil
}

func (r *UserRepository) ListRoles(ctx context.Context) (map[string]authz.Role, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make(map[string]authz.Role, len(r.store.roles))
	for userID, assignment := range r.store.roles {
		result[userID] = assignment.Role
	}
	return result, nil
}

func (r *UserRepository) DeleteDependents(ctx context.Context, userID string) (*user.Dependents, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	removed := &user.Dependents{}
	for id, item := range r.store.submissions {
		if item.UserID == userID {
			removed.Submissions = append(removed.Submissions, item)
			delete(r.store.submissions, id)
		}
	}
	if assignment, ok := r.store.roles[userID]; ok {
		removed.Role = &assignment
		delete(r.store.roles, userID)
	}
	if profile, ok := r.store.profiles[userID]; ok {
		removed.Profile = &profile
		delete(r.store.profiles, userID)
	}
	return removed, nil
}

func (r *UserRepository) RestoreDependents(ctx context.Context, dependents *user.Dependents) error {
	if dependents == nil {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if dependents.Profile != nil {
		if _, ok := r.store.profiles[dependents.Profile.ID]; !ok {
			r.store.profiles[dependents.Profile.ID] = *dependents.Profile
		}
	}
	if dependents.Role != nil {
		if _, ok := r.store.roles[dependents.Role.UserID]; !ok {
			r.store.roles[dependents.Role.UserID] = *dependents.Role
		}
	}
	for _, item := range dependents.Submissions {
		if _, ok := r.store.submissions[item.ID]; !ok {
			r.store.submissions[item.ID] = item
		}
	}
	return nil
}
