package newsletters

import "time"

type Newsletter struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Content     string    `gorm:"type:text;not null"`
	CreatedBy   string    `gorm:"type:uuid;not null"`
	PublishedAt time.Time `gorm:"not null"`
}

func (Newsletter) TableName() string {
	return "newsletters"
}

type CreateInput struct {
	Title   string
	Content string
}
