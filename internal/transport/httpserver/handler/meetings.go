package handler

import (
	"net/http"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	meetingsdomain "github.com/MalavS298/basiscpk/internal/domain/meetings"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type meetingResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	ZoomMeetingID   *string   `json:"zoom_meeting_id"`
	JoinURL         *string   `json:"join_url"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type meetingListResponse struct {
	Items []meetingResponse `json:"items"`
}

type meetingDetailsRequest struct {
	AttendeeIDs []string `json:"attendee_ids"`
	Notes       string   `json:"notes"`
}

type meetingDetailsResponse struct {
	MeetingID   string    `json:"meeting_id"`
	AttendeeIDs []string  `json:"attendee_ids"`
	Notes       *string   `json:"notes"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *Handlers) ListMeetings(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	upcoming, err := parseBoolParam(query.Get("upcoming"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid upcoming")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	items, err := h.meetings.List(r.Context(), identity.ID, meetingsdomain.ListFilter{UpcomingOnly: upcoming, Limit: limit})
	if err != nil {
		writeDomainError(w, r, h.log, "meetings.list", err, "user_id", identity.ID)
		return
	}

	resp := meetingListResponse{Items: make([]meetingResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toMeetingResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	meetingID := chi.URLParam(r, "id")
	if err := h.meetings.Delete(r.Context(), identity.ID, meetingID); err != nil {
		writeDomainError(w, r, h.log, "meetings.delete", err, "user_id", identity.ID, "meeting_id", meetingID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetMeetingDetails(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	meetingID := chi.URLParam(r, "id")
	details, err := h.meetings.GetDetails(r.Context(), identity.ID, meetingID)
	if err != nil {
		writeDomainError(w, r, h.log, "meetings.get_details", err, "user_id", identity.ID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingDetailsResponse(*details))
}

func (h *Handlers) UpsertMeetingDetails(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	meetingID := chi.URLParam(r, "id")
	if !h.requireRole(w, r, "meetings.upsert_details", identity.ID, authz.UpdateMeetingDetails) {
		return
	}

	var req meetingDetailsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("meetings.upsert_details: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	details, err := h.meetings.UpsertDetails(r.Context(), identity.ID, meetingID, meetingsdomain.DetailsInput{
		AttendeeIDs: req.AttendeeIDs,
		Notes:       req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, h.log, "meetings.upsert_details", err, "user_id", identity.ID, "meeting_id", meetingID)
		return
	}
	writeJSON(w, http.StatusOK, toMeetingDetailsResponse(*details))
}

func toMeetingResponse(item meetingsdomain.Meeting) meetingResponse {
	return meetingResponse{
		ID:              item.ID,
		Title:           item.Title,
		Description:     item.Description,
		StartTime:       item.StartTime,
		DurationMinutes: item.DurationMinutes,
		ZoomMeetingID:   item.ZoomMeetingID,
		JoinURL:         item.JoinURL,
		CreatedBy:       item.CreatedBy,
		CreatedAt:       item.CreatedAt,
	}
}

func toMeetingDetailsResponse(details meetingsdomain.Details) meetingDetailsResponse {
	attendees := []string(details.AttendeeIDs)
	if attendees == nil {
		attendees = []string{}
	}
	return meetingDetailsResponse{
		MeetingID:   details.MeetingID,
		AttendeeIDs: attendees,
		Notes:       details.Notes,
		UpdatedAt:   details.UpdatedAt,
	}
}
