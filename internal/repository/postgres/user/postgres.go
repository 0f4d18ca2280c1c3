package user

import (
	"context"
	"errors"

	"github.com/MalavS298/basiscpk/internal/authz"
	domain "github.com/MalavS298/basiscpk/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// UpsertProfile only overwrites the columns the caller supplied.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	updates := []string{}
	if profile.Email != nil {
		updates = append(updates, "email")
	}
	if profile.FullName != nil {
		updates = append(updates, "full_name")
	}

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}}
	if len(updates) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(updates)
	}

	return r.db.WithContext(ctx).Clauses(onConflict).Create(profile).Error
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *PostgresRepository) EnsureRole(ctx context.Context, assignment *domain.RoleAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(assignment).Error
}

func (r *PostgresRepository) SetRole(ctx context.Context, assignment *domain.RoleAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(assignment).Error
}

func (r *PostgresRepository) GetRole(ctx context.Context, userID string) (*domain.RoleAssignment, error) {
	var assignment domain.RoleAssignment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

func (r *PostgresRepository) ListRoles(ctx context.Context) (map[string]authz.Role, error) {
	var assignments []domain.RoleAssignment
	if err := r.db.WithContext(ctx).Find(&assignments).Error; err != nil {
		return nil, err
	}
	result := make(map[string]authz.Role, len(assignments))
	for _, assignment := range assignments {
		result[assignment.UserID] = assignment.Role
	}
	return result, nil
}

// DeleteDependents returns the rows the deletes actually removed, so a row
// inserted while the user is being deleted is restored along with the rest.
func (r *PostgresRepository) DeleteDependents(ctx context.Context, userID string) (*domain.Dependents, error) {
	db := r.db.WithContext(ctx)
	returning := clause.Returning{}
	removed := &domain.Dependents{}

	if err := db.Clauses(returning).Where("user_id = ?", userID).Delete(&removed.Submissions).Error; err != nil {
		return nil, err
	}

	var roles []domain.RoleAssignment
	if err := db.Clauses(returning).Where("user_id = ?", userID).Delete(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) > 0 {
		removed.Role = &roles[0]
	}

	var profiles []domain.Profile
	if err := db.Clauses(returning).Where("id = ?", userID).Delete(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) > 0 {
		removed.Profile = &profiles[0]
	}
	return removed, nil
}

func (r *PostgresRepository) RestoreDependents(ctx context.Context, dependents *domain.Dependents) error {
	if dependents == nil {
		return nil
	}
	db := r.db.WithContext(ctx)
	skipExisting := clause.OnConflict{DoNothing: true}
	if dependents.Profile != nil {
		if err := db.Clauses(skipExisting).Create(dependents.Profile).Error; err != nil {
			return err
		}
	}
	if dependents.Role != nil {
		if err := db.Clauses(skipExisting).Create(dependents.Role).Error; err != nil {
			return err
		}
	}
	if len(dependents.Submissions) > 0 {
		if err := db.Clauses(skipExisting).Create(&dependents.Submissions).Error; err != nil {
			return err
		}
	}
	return nil
}
