package handler

import (
	"net/http"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	newslettersdomain "github.com/MalavS298/basiscpk/internal/domain/newsletters"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createNewsletterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type newsletterResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedBy   string    `json:"created_by"`
	PublishedAt time.Time `json:"published_at"`
}

type newsletterListResponse struct {
	Items []newsletterResponse `json:"items"`
}

// ListNewsletters is public; the landing page shows the latest few.
func (h *Handlers) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r.URL.Query().Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}

	items, err := h.newsletters.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, h.log, "newsletters.list", err)
		return
	}

	resp := newsletterListResponse{Items: make([]newsletterResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toNewsletterResponse(item))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if !h.requireRole(w, r, "newsletters.create", identity.ID, authz.CreateNewsletter) {
		return
	}

	var req createNewsletterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("newsletters.create: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	created, err := h.newsletters.Create(r.Context(), identity.ID, newslettersdomain.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeDomainError(w, r, h.log, "newsletters.create", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusCreated, toNewsletterResponse(*created))
}

func (h *Handlers) DeleteNewsletter(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	newsletterID := chi.URLParam(r, "id")
	if err := h.newsletters.Delete(r.Context(), identity.ID, newsletterID); err != nil {
		writeDomainError(w, r, h.log, "newsletters.delete", err, "user_id", identity.ID, "newsletter_id", newsletterID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toNewsletterResponse(item newslettersdomain.Newsletter) newsletterResponse {
	return newsletterResponse{
		ID:          item.ID,
		Title:       item.Title,
		Content:     item.Content,
		CreatedBy:   item.CreatedBy,
		PublishedAt: item.PublishedAt,
	}
}
