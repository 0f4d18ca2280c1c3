package submissions

import (
	"context"
	"errors"
	"time"

	domain "github.com/MalavS298/basiscpk/internal/domain/submissions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	var submission domain.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Submission{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []domain.Submission
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) UpdateDecision(ctx context.Context, id string, status domain.Status, approvedAt *time.Time, approvedBy *string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"approved_at": approvedAt,
			"approved_by": approvedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Submission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
