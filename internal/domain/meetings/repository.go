package meetings

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, meeting *Meeting) error
	GetByID(ctx context.Context, id string) (*Meeting, error)
	// List orders by start time; with from set, only meetings starting at or
	// after it are returned.
	List(ctx context.Context, from *time.Time, limit int) ([]Meeting, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetDetails(ctx context.Context, meetingID string) (*Details, error)
	// UpsertDetails returns ErrMeetingNotFound when the meeting is gone.
	UpsertDetails(ctx context.Context, details *Details) error
}

// Scheduler is the external conferencing service.
type Scheduler interface {
	AccessToken(ctx context.Context) (string, error)
	CreateMeeting(ctx context.Context, token string, req RemoteMeetingRequest) (*RemoteMeeting, error)
	DeleteMeeting(ctx context.Context, token, remoteID string) error
}
