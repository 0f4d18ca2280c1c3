package meetings

import (
	"context"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/saga"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxDuration      = 24 * 60
)

type Service struct {
	repo            Repository
	scheduler       Scheduler
	authz           authz.Authorizer
	log             logger.Logger
	defaultDuration int
	now             func() time.Time
}

func NewService(repo Repository, scheduler Scheduler, authorizer authz.Authorizer, defaultDuration int, log logger.Logger) *Service {
	if defaultDuration <= 0 {
		defaultDuration = 60
	}
	return &Service{
		repo:            repo,
		scheduler:       scheduler,
		authz:           authorizer,
		log:             log,
		defaultDuration: defaultDuration,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Create schedules a remote meeting and mirrors it locally. Input is checked
// before the scheduler is contacted. If the mirror cannot be written the
// remote meeting is cancelled again.
func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (*Meeting, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.CreateMeeting); err != nil {
		return nil, err
	}

	request, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	var (
		token   string
		remote  *RemoteMeeting
		meeting *Meeting
	)
	run := saga.New("meetings.create", s.log).
		Add(saga.Step{
			Name: "access_token",
			Do: func(ctx context.Context) error {
				var err error
				token, err = s.scheduler.AccessToken(ctx)
				return err
			},
		}).
		Add(saga.Step{
			Name: "create_remote",
			Do: func(ctx context.Context) error {
				var err error
				remote, err = s.scheduler.CreateMeeting(ctx, token, request)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return s.scheduler.DeleteMeeting(ctx, token, remote.ID)
			},
		}).
		Add(saga.Step{
			Name: "insert_mirror",
			Do: func(ctx context.Context) error {
				meeting = &Meeting{
					ID:              uuid.NewString(),
					Title:           request.Topic,
					Description:     optionalString(request.Agenda),
					StartTime:       request.StartTime,
					DurationMinutes: request.Duration,
					ZoomMeetingID:   optionalString(remote.ID),
					JoinURL:         optionalString(remote.JoinURL),
					CreatedBy:       callerID,
					CreatedAt:       s.now(),
				}
				return apperr.Storage("meetings.create", s.repo.Create(ctx, meeting))
			},
		})

	if err := run.Run(ctx); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("meetings: scheduled", "meeting_id", meeting.ID, "zoom_meeting_id", remote.ID, "admin_id", callerID)
	return meeting, nil
}

func (s *Service) validate(input CreateInput) (RemoteMeetingRequest, error) {
	title := strings.TrimSpace(input.Title)
	rawStart := strings.TrimSpace(input.StartTime)
	if title == "" || rawStart == "" {
		return RemoteMeetingRequest{}, ErrMissingFields
	}

	start, err := parseStartTime(rawStart)
	if err != nil {
		return RemoteMeetingRequest{}, apperr.Validation("start_time must be an ISO 8601 timestamp")
	}

	// Zero or a negative duration means none was given.
	duration := s.defaultDuration
	if input.DurationMinutes != nil && *input.DurationMinutes > 0 {
		duration = *input.DurationMinutes
	}
	if duration > maxDuration {
		return RemoteMeetingRequest{}, apperr.Validation("duration_minutes must be at most %d", maxDuration)
	}

	return RemoteMeetingRequest{
		Topic:     title,
		Agenda:    strings.TrimSpace(input.Description),
		StartTime: start.UTC(),
		Duration:  duration,
	}, nil
}

// parseStartTime accepts RFC 3339 and the zone-less form a datetime-local
// input produces, which is read as UTC.
func parseStartTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (s *Service) List(ctx context.Context, callerID string, filter ListFilter) ([]Meeting, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ReadMeetings); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}

	var from *time.Time
	if filter.UpcomingOnly {
		now := s.now()
		from = &now
	}
	items, err := s.repo.List(ctx, from, filter.Limit)
	if err != nil {
		return nil, apperr.Storage("meetings.list", err)
	}
	return items, nil
}

// Delete removes the local mirror only; the remote meeting is left to expire.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DeleteMeeting); err != nil {
		return err
	}
	if uuid.Validate(id) != nil {
		return ErrMeetingNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Storage("meetings.delete", err)
	}
	if !deleted {
		return ErrMeetingNotFound
	}
	s.log.WithContext(ctx).Info("meetings: deleted", "meeting_id", id, "admin_id", callerID)
	return nil
}

func (s *Service) GetDetails(ctx context.Context, callerID, meetingID string) (*Details, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ReadMeetings); err != nil {
		return nil, err
	}
	if uuid.Validate(meetingID) != nil {
		return nil, ErrMeetingNotFound
	}
	if _, err := s.repo.GetByID(ctx, meetingID); err != nil {
		return nil, apperr.Storage("meetings.get", err)
	}
	details, err := s.repo.GetDetails(ctx, meetingID)
	if err != nil {
		return nil, apperr.Storage("meetings.get_details", err)
	}
	return details, nil
}

func (s *Service) UpsertDetails(ctx context.Context, callerID, meetingID string, input DetailsInput) (*Details, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.UpdateMeetingDetails); err != nil {
		return nil, err
	}
	if uuid.Validate(meetingID) != nil {
		return nil, ErrMeetingNotFound
	}

	attendees := make([]string, 0, len(input.AttendeeIDs))
	seen := make(map[string]struct{}, len(input.AttendeeIDs))
	for _, id := range input.AttendeeIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperr.Validation("attendee id %q is not a valid id", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		attendees = append(attendees, id)
	}

	details := &Details{
		ID:          uuid.NewString(),
		MeetingID:   meetingID,
		AttendeeIDs: attendees,
		Notes:       optionalString(input.Notes),
		UpdatedAt:   s.now(),
	}
	if err := s.repo.UpsertDetails(ctx, details); err != nil {
		return nil, apperr.Storage("meetings.upsert_details", err)
	}
	return details, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
