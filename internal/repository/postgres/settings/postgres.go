package settings

import (
	"context"
	"errors"
	"time"

	domain "github.com/MalavS298/basiscpk/internal/domain/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (*domain.AppSettings, error) {
	var row domain.AppSettings
	if err := r.db.WithContext(ctx).Where("id = ?", domain.GlobalID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostgresRepository) SetAcceptingResponses(ctx context.Context, accepting bool, at time.Time) (*domain.AppSettings, error) {
	row := domain.AppSettings{ID: domain.GlobalID, AcceptingResponses: accepting, UpdatedAt: at}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"accepting_responses", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
