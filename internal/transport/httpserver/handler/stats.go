package handler

import (
	"net/http"

	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type memberSubmissionsResponse struct {
	UserID string               `json:"user_id"`
	Totals submissions.Totals   `json:"totals"`
	Items  []submissionResponse `json:"items"`
}

func (h *Handlers) MyStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	dashboard, err := h.stats.Dashboard(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "stats.me", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handlers) StatsOverview(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	overview, err := h.stats.Overview(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "stats.overview", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handlers) MemberSubmissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	userID := chi.URLParam(r, "user_id")
	items, totals, err := h.stats.MemberSubmissions(r.Context(), identity.ID, userID)
	if err != nil {
		writeDomainError(w, r, h.log, "stats.member_submissions", err, "user_id", identity.ID, "target_user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, memberSubmissionsResponse{
		UserID: userID,
		Totals: totals,
		Items:  toSubmissionResponses(items),
	})
}
