package inmemory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/MalavS298/basiscpk/internal/domain/meetings"
)

type MeetingRepository struct {
	store *Store
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *meetings.Meeting) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.meetings[meeting.ID] = *meeting
	return nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*meetings.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	meeting, ok := r.store.meetings[id]
	if !ok {
		return nil, meetings.ErrMeetingNotFound
	}
	return &meeting, nil
}

func (r *MeetingRepository) List(ctx context.Context, from *time.Time, limit int) ([]meetings.Meeting, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]meetings.Meeting, 0, len(r.store.meetings))
	for _, meeting := range r.store.meetings {
		if from != nil && meeting.StartTime.Before(*from) {
			continue
		}
		result = append(result, meeting)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return page(result, limit, 0), nil
}

// Delete also drops the details row, as ON DELETE CASCADE does in postgres.
func (r *MeetingRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.meetings[id]; !ok {
		return false, nil
	}
	delete(r.store.meetings, id)
	delete(r.store.details, id)
	return true, nil
}

func (r *MeetingRepository) GetDetails(ctx context.Context, meetingID string) (*meetings.Details, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	details, ok := r.store.details[meetingID]
	if !ok {
		return nil, meetings.ErrDetailsNotFound
	}
	details.AttendeeIDs = slices.Clone(details.AttendeeIDs)
	return &details, nil
}

func (r *MeetingRepository) UpsertDetails(ctx context.Context, details *meetings.Details) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.meetings[details.MeetingID]; !ok {
		return meetings.ErrMeetingNotFound
	}
	if existing, ok := r.store.details[details.MeetingID]; ok {
		details.ID = existing.ID
	}
	row := *details
	row.AttendeeIDs = slices.Clone(details.AttendeeIDs)
	r.store.details[details.MeetingID] = row
	return nil
}
