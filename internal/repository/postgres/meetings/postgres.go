package meetings

import (
	"context"
	"errors"
	"time"

	domain "github.com/MalavS298/basiscpk/internal/domain/meetings"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const foreignKeyViolation = "23503"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	var meeting domain.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *PostgresRepository) List(ctx context.Context, from *time.Time, limit int) ([]domain.Meeting, error) {
	query := r.db.WithContext(ctx).Model(&domain.Meeting{})
	if from != nil {
		query = query.Where("start_time >= ?", *from)
	}
	var items []domain.Meeting
	if err := query.Order("start_time asc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Meeting{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) GetDetails(ctx context.Context, meetingID string) (*domain.Details, error) {
	var details domain.Details
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&details).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDetailsNotFound
		}
		return nil, err
	}
	return &details, nil
}

// UpsertDetails keeps one details row per meeting; RETURNING brings back the
// id of the row that was actually written.
func (r *PostgresRepository) UpsertDetails(ctx context.Context, details *domain.Details) error {
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "meeting_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"attendee_ids", "notes", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(details).Error

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return domain.ErrMeetingNotFound
	}
	return err
}
