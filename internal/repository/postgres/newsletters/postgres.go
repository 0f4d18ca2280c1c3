package newsletters

import (
	"context"

	domain "github.com/MalavS298/basiscpk/internal/domain/newsletters"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, limit int) ([]domain.Newsletter, error) {
	var items []domain.Newsletter
	if err := r.db.WithContext(ctx).Order("published_at desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Create(ctx context.Context, newsletter *domain.Newsletter) error {
	return r.db.WithContext(ctx).Create(newsletter).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Newsletter{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
