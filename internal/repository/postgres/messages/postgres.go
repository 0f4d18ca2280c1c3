package messages

import (
	"context"

	domain "github.com/MalavS298/basiscpk/internal/domain/messages"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

type messageRow struct {
	domain.Message
	SenderEmail *string
	SenderName  *string
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]domain.WithSender, error) {
	query := r.db.WithContext(ctx).
		Table("messages AS m").
		Select("m.*, p.email AS sender_email, p.full_name AS sender_name").
		Joins("LEFT JOIN profiles p ON p.id = m.user_id")
	if userID != "" {
		query = query.Where("m.user_id = ?", userID)
	}

	var rows []messageRow
	if err := query.Order("m.created_at desc").Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]domain.WithSender, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.WithSender{
			Message:     row.Message,
			SenderEmail: row.SenderEmail,
			SenderName:  row.SenderName,
		})
	}
	return result, nil
}

// MarkRead reports whether the message exists; it does not care whether it was
// already read.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Message{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
