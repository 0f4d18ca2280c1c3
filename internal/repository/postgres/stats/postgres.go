package stats

import (
	"context"

	domain "github.com/MalavS298/basiscpk/internal/domain/stats"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListApproved loads rows rather than summing in SQL so that every total goes
// through submissions.Aggregate.
func (r *PostgresRepository) ListApproved(ctx context.Context, userID string) ([]submissions.Submission, error) {
	query := r.db.WithContext(ctx).
		Model(&submissions.Submission{}).
		Where("status = ?", submissions.StatusApproved)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var items []submissions.Submission
	if err := query.Order("service_date desc, submitted_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) CountSubmissions(ctx context.Context, userID string, status submissions.Status) (int64, error) {
	query := r.db.WithContext(ctx).Model(&submissions.Submission{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context) ([]domain.MemberRef, error) {
	var profiles []user.Profile
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	result := make([]domain.MemberRef, 0, len(profiles))
	for _, profile := range profiles {
		result = append(result, domain.MemberRef{
			UserID:   profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
		})
	}
	return result, nil
}
