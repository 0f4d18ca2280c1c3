package handler

import (
	"net/http"
	"time"

	messagesdomain "github.com/MalavS298/basiscpk/internal/domain/messages"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createMessageRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type messageSenderResponse struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

type messageResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Subject     string                 `json:"subject"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
	Read        bool                   `json:"read"`
	Sender      *messageSenderResponse `json:"sender,omitempty"`
}

type messageListResponse struct {
	Items []messageResponse `json:"items"`
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	items, err := h.messages.List(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "messages.list", err, "user_id", identity.ID)
		return
	}

	resp := messageListResponse{Items: make([]messageResponse, 0, len(items))}
	for _, item := range items {
		entry := toMessageResponse(item.Message)
		if item.SenderEmail != nil || item.SenderName != nil {
			entry.Sender = &messageSenderResponse{Email: item.SenderEmail, FullName: item.SenderName}
		}
		resp.Items = append(resp.Items, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CreateMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("messages.create: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	created, err := h.messages.Create(r.Context(), identity.ID, messagesdomain.CreateInput{
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, h.log, "messages.create", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(*created))
}

func (h *Handlers) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	messageID := chi.URLParam(r, "id")
	if err := h.messages.MarkRead(r.Context(), identity.ID, messageID); err != nil {
		writeDomainError(w, r, h.log, "messages.mark_read", err, "user_id", identity.ID, "message_id", messageID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	messageID := chi.URLParam(r, "id")
	if err := h.messages.Delete(r.Context(), identity.ID, messageID); err != nil {
		writeDomainError(w, r, h.log, "messages.delete", err, "user_id", identity.ID, "message_id", messageID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toMessageResponse(item messagesdomain.Message) messageResponse {
	return messageResponse{
		ID:          item.ID,
		UserID:      item.UserID,
		Subject:     item.Subject,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		Read:        item.Read,
	}
}
