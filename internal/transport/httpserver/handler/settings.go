package handler

import (
	"net/http"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	settingsdomain "github.com/MalavS298/basiscpk/internal/domain/settings"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
)

type settingsResponse struct {
	AcceptingResponses bool       `json:"accepting_responses"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

type updateSettingsRequest struct {
	AcceptingResponses *bool `json:"accepting_responses"`
}

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	current, err := h.settings.Get(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "settings.get", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(current))
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if !h.requireRole(w, r, "settings.update", identity.ID, authz.UpdateSettings) {
		return
	}

	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("settings.update: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if req.AcceptingResponses == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "accepting_responses is required")
		return
	}

	updated, err := h.settings.SetAcceptingResponses(r.Context(), identity.ID, *req.AcceptingResponses)
	if err != nil {
		writeDomainError(w, r, h.log, "settings.update", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(updated))
}

func toSettingsResponse(current settingsdomain.AppSettings) settingsResponse {
	resp := settingsResponse{AcceptingResponses: current.AcceptingResponses}
	if !current.UpdatedAt.IsZero() {
		updatedAt := current.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
