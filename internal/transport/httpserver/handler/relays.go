package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	meetingsdomain "github.com/MalavS298/basiscpk/internal/domain/meetings"
	userdomain "github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/MalavS298/basiscpk/internal/metrics"
	"github.com/MalavS298/basiscpk/internal/saga"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

const (
	relayDeleteUser   = "delete-user"
	relayZoomMeetings = "zoom-meetings"

	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Authenticator resolves the caller of a relay from its Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (userdomain.Identity, error)
}

// Relays are the privileged endpoints. They authenticate on their own, check
// the admin role before reading the body and answer with a flat
// {"error": "..."} body.
type Relays struct {
	auth     Authenticator
	authz    authz.Authorizer
	users    *userdomain.Service
	meetings *meetingsdomain.Service
	log      logger.Logger
}

func NewRelays(auth Authenticator, authorizer authz.Authorizer, users *userdomain.Service, meetings *meetingsdomain.Service, log logger.Logger) *Relays {
	return &Relays{auth: auth, authz: authorizer, users: users, meetings: meetings, log: log}
}

type deleteUserRequest struct {
	UserID string `json:"userId"`
}

type deleteUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type createMeetingRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"`
	DurationMinutes *int   `json:"duration_minutes"`
	Duration        *int   `json:"duration"`
}

type createMeetingResponse struct {
	Meeting meetingResponse `json:"meeting"`
}

func (h *Relays) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := logger.ContextWithAttrs(r.Context(), "relay", relayDeleteUser)
	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		h.reject(w, relayDeleteUser, http.StatusUnauthorized, "No authorization header")
		return
	}

	caller, err := h.auth.Authenticate(ctx, header)
	if err != nil {
		h.log.WithContext(ctx).BusinessError("relay.delete_user: token rejected", err)
		h.reject(w, relayDeleteUser, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx = logger.ContextWithAttrs(ctx, "caller_id", caller.ID)

	if !h.requireAdmin(ctx, w, relayDeleteUser, "relay.delete_user", caller.ID, authz.DeleteUser, "Only admins can delete users", "Failed to delete user") {
		return
	}

	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.WithContext(ctx).BusinessError("relay.delete_user: invalid json", err)
		h.reject(w, relayDeleteUser, http.StatusBadRequest, "Invalid request body")
		return
	}

	err = h.users.DeleteUser(ctx, caller.ID, req.UserID)
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrForbidden):
		h.log.WithContext(ctx).BusinessError("relay.delete_user: caller is not admin", err)
		h.reject(w, relayDeleteUser, http.StatusForbidden, "Only admins can delete users")
		return
	case errors.Is(err, apperr.ErrValidation):
		h.log.WithContext(ctx).BusinessError("relay.delete_user: invalid target", err, "target_user_id", req.UserID)
		h.reject(w, relayDeleteUser, http.StatusBadRequest, apperr.Message(err))
		return
	default:
		h.fail(ctx, w, relayDeleteUser, "relay.delete_user", err, "Failed to delete user", "target_user_id", req.UserID)
		return
	}

	metrics.RelayOperations.WithLabelValues(relayDeleteUser, outcomeOK).Inc()
	writeJSON(w, http.StatusOK, deleteUserResponse{Success: true, Message: "User deleted successfully"})
}

func (h *Relays) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := logger.ContextWithAttrs(r.Context(), "relay", relayZoomMeetings)
	caller, err := h.auth.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		h.log.WithContext(ctx).BusinessError("relay.zoom_meetings: token rejected", err)
		h.reject(w, relayZoomMeetings, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx = logger.ContextWithAttrs(ctx, "caller_id", caller.ID)

	if !h.requireAdmin(ctx, w, relayZoomMeetings, "relay.zoom_meetings", caller.ID, authz.CreateMeeting, "Forbidden: Admins only", "Failed to create meeting") {
		return
	}

	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.WithContext(ctx).BusinessError("relay.zoom_meetings: invalid json", err)
		h.reject(w, relayZoomMeetings, http.StatusBadRequest, "Invalid request body")
		return
	}
	duration := req.DurationMinutes
	if duration == nil {
		duration = req.Duration
	}

	meeting, err := h.meetings.Create(ctx, caller.ID, meetingsdomain.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
	})
	switch {
	case err == nil:
	case errors.Is(err, apperr.ErrForbidden):
		h.log.WithContext(ctx).BusinessError("relay.zoom_meetings: caller is not admin", err)
		h.reject(w, relayZoomMeetings, http.StatusForbidden, "Forbidden: Admins only")
		return
	case errors.Is(err, apperr.ErrValidation):
		h.log.WithContext(ctx).BusinessError("relay.zoom_meetings: invalid input", err)
		h.reject(w, relayZoomMeetings, http.StatusBadRequest, apperr.Message(err))
		return
	default:
		h.fail(ctx, w, relayZoomMeetings, "relay.zoom_meetings", err, "Failed to create meeting")
		return
	}

	metrics.RelayOperations.WithLabelValues(relayZoomMeetings, outcomeOK).Inc()
	writeJSON(w, http.StatusOK, createMeetingResponse{Meeting: toMeetingResponse(*meeting)})
}

// requireAdmin answers 403 with forbidden when the caller lacks perm. A role
// lookup failure answers 500 with fallback.
func (h *Relays) requireAdmin(ctx context.Context, w http.ResponseWriter, relay, op, callerID string, perm authz.Permission, forbidden, fallback string) bool {
	_, err := authz.Require(ctx, h.authz, callerID, perm)
	switch {
	case err == nil:
		return true
	case errors.Is(err, apperr.ErrForbidden):
		h.log.WithContext(ctx).BusinessError(op+": caller is not admin", err)
		h.reject(w, relay, http.StatusForbidden, forbidden)
	default:
		h.fail(ctx, w, relay, op, err, fallback)
	}
	return false
}

func (h *Relays) reject(w http.ResponseWriter, relay string, status int, message string) {
	metrics.RelayOperations.WithLabelValues(relay, outcomeRejected).Inc()
	middleware.WriteFlatError(w, status, message)
}

// fail answers 500. Only an upstream message reaches the client; anything
// else is replaced by fallback.
func (h *Relays) fail(ctx context.Context, w http.ResponseWriter, relay, op string, err error, fallback string, args ...any) {
	metrics.RelayOperations.WithLabelValues(relay, outcomeFailed).Inc()

	entry := h.log.WithContext(ctx)
	if stepErr, ok := saga.AsStepError(err); ok {
		entry = entry.With("step", stepErr.Step, "compensated", stepErr.Compensated())
	}
	entry.InternalError(op+": failed", err, args...)

	message := fallback
	if errors.Is(err, apperr.ErrUpstream) {
		message = apperr.Message(err)
	}
	middleware.WriteFlatError(w, http.StatusInternalServerError, message)
}
