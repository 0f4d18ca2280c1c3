package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	submissionsdomain "github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/metrics"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

// hoursValue accepts hours as either a JSON number or a string so the
// service can report a malformed value as a validation error.
type hoursValue string

func (v *hoursValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = hoursValue(s)
		return nil
	}
	*v = hoursValue(data)
	return nil
}

type createSubmissionRequest struct {
	Hours       hoursValue `json:"hours"`
	ServiceType string     `json:"service_type"`
	ServiceDate string     `json:"service_date"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
}

type manualSubmissionRequest struct {
	UserID string `json:"user_id"`
	createSubmissionRequest
}

type transitionSubmissionRequest struct {
	Status submissionsdomain.Status `json:"status"`
}

type submissionResponse struct {
	ID          string                        `json:"id"`
	UserID      string                        `json:"user_id"`
	Hours       float64                       `json:"hours"`
	Description *string                       `json:"description"`
	ImageURL    *string                       `json:"image_url"`
	ServiceDate string                        `json:"service_date"`
	ServiceType submissionsdomain.ServiceType `json:"service_type"`
	Status      submissionsdomain.Status      `json:"status"`
	SubmittedAt time.Time                     `json:"submitted_at"`
	ApprovedAt  *time.Time                    `json:"approved_at"`
	ApprovedBy  *string                       `json:"approved_by"`
}

type submissionListResponse struct {
	Items []submissionResponse `json:"items"`
	Total int64                `json:"total"`
}

func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	items, total, err := h.submissions.List(r.Context(), identity.ID, submissionsdomain.ListFilter{
		UserID: strings.TrimSpace(query.Get("user_id")),
		Status: submissionsdomain.Status(strings.TrimSpace(query.Get("status"))),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, r, h.log, "submissions.list", err, "user_id", identity.ID)
		return
	}

	writeJSON(w, http.StatusOK, submissionListResponse{Items: toSubmissionResponses(items), Total: total})
}

func (h *Handlers) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("submissions.create: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	submission, err := h.submissions.Create(r.Context(), identity.ID, req.input())
	if err != nil {
		writeDomainError(w, r, h.log, "submissions.create", err, "user_id", identity.ID)
		return
	}

	metrics.SubmissionEvents.WithLabelValues("created").Inc()
	writeJSON(w, http.StatusCreated, toSubmissionResponse(*submission))
}

func (h *Handlers) CreateManualSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if !h.requireRole(w, r, "submissions.manual", identity.ID, authz.ManualEntrySubmission) {
		return
	}

	var req manualSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("submissions.manual: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	submission, err := h.submissions.CreateManual(r.Context(), identity.ID, req.UserID, req.input())
	if err != nil {
		writeDomainError(w, r, h.log, "submissions.manual", err, "user_id", identity.ID, "target_user_id", req.UserID)
		return
	}

	metrics.SubmissionEvents.WithLabelValues("manual").Inc()
	writeJSON(w, http.StatusCreated, toSubmissionResponse(*submission))
}

func (h *Handlers) TransitionSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	submissionID := chi.URLParam(r, "id")
	if !h.requireRole(w, r, "submissions.transition", identity.ID, authz.DecideSubmission) {
		return
	}

	var req transitionSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("submissions.transition: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	submission, err := h.submissions.Transition(r.Context(), identity.ID, submissionID, req.Status)
	if err != nil {
		writeDomainError(w, r, h.log, "submissions.transition", err, "user_id", identity.ID, "submission_id", submissionID)
		return
	}

	metrics.SubmissionEvents.WithLabelValues(string(submission.Status)).Inc()
	writeJSON(w, http.StatusOK, toSubmissionResponse(*submission))
}

func (h *Handlers) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	submissionID := chi.URLParam(r, "id")
	if err := h.submissions.Delete(r.Context(), identity.ID, submissionID); err != nil {
		writeDomainError(w, r, h.log, "submissions.delete", err, "user_id", identity.ID, "submission_id", submissionID)
		return
	}

	metrics.SubmissionEvents.WithLabelValues("deleted").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (req createSubmissionRequest) input() submissionsdomain.CreateInput {
	return submissionsdomain.CreateInput{
		Hours:       string(req.Hours),
		ServiceType: req.ServiceType,
		ServiceDate: req.ServiceDate,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
}

func toSubmissionResponse(submission submissionsdomain.Submission) submissionResponse {
	return submissionResponse{
		ID:          submission.ID,
		UserID:      submission.UserID,
		Hours:       submission.Hours,
		Description: submission.Description,
		ImageURL:    submission.ImageURL,
		ServiceDate: submission.ServiceDate.Format(submissionsdomain.DateLayout),
		ServiceType: submission.ServiceType,
		Status:      submission.Status,
		SubmittedAt: submission.SubmittedAt,
		ApprovedAt:  submission.ApprovedAt,
		ApprovedBy:  submission.ApprovedBy,
	}
}

func toSubmissionResponses(items []submissionsdomain.Submission) []submissionResponse {
	result := make([]submissionResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toSubmissionResponse(item))
	}
	return result
}
