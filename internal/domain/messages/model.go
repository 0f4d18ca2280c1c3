package messages

import "time"

type Message struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"type:uuid;not null;index"`
	Subject     string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	Read        bool      `gorm:"not null;default:false"`
}

func (Message) TableName() string {
	return "messages"
}

// WithSender is a message with the sender's profile resolved.
type WithSender struct {
	Message
	SenderEmail *string
	SenderName  *string
}

type CreateInput struct {
	Subject     string
	Description string
}
