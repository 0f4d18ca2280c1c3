package meetings

import (
	"time"

	"github.com/lib/pq"
)

type Meeting struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	Title           string    `gorm:"type:text;not null"`
	Description     *string   `gorm:"type:text"`
	StartTime       time.Time `gorm:"not null"`
	DurationMinutes int       `gorm:"not null"`
	ZoomMeetingID   *string   `gorm:"column:zoom_meeting_id;type:text"`
	JoinURL         *string   `gorm:"column:join_url;type:text"`
	CreatedBy       string    `gorm:"type:uuid;not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (Meeting) TableName() string {
	return "meetings"
}

type Details struct {
	ID          string         `gorm:"type:uuid;primaryKey"`
	MeetingID   string         `gorm:"type:uuid;not null;uniqueIndex"`
	AttendeeIDs pq.StringArray `gorm:"type:text[];not null"`
	Notes       *string        `gorm:"type:text"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

func (Details) TableName() string {
	return "meeting_details"
}

// CreateInput is the scheduler relay body. DurationMinutes is optional.
type CreateInput struct {
	Title           string
	Description     string
	StartTime       string
	DurationMinutes *int
}

type DetailsInput struct {
	AttendeeIDs []string
	Notes       string
}

type ListFilter struct {
	UpcomingOnly bool
	Limit        int
}

// RemoteMeetingRequest is what the conferencing service is asked to schedule.
type RemoteMeetingRequest struct {
	Topic     string
	Agenda    string
	StartTime time.Time
	Duration  int
}

type RemoteMeeting struct {
	ID      string
	JoinURL string
}
