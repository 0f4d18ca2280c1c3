package handler

import (
	"net/http"
	"time"

	"github.com/MalavS298/basiscpk/internal/authz"
	userdomain "github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
)

type memberResponse struct {
	ID        string     `json:"id"`
	Email     *string    `json:"email"`
	FullName  *string    `json:"full_name"`
	Role      authz.Role `json:"role"`
	IsAdmin   bool       `json:"is_admin"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type memberListResponse struct {
	Items []memberResponse `json:"items"`
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type createdUserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	member, err := h.users.Me(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "auth.me", err, "user_id", identity.ID)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponse(*member))
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	members, err := h.users.ListMembers(r.Context(), identity.ID)
	if err != nil {
		writeDomainError(w, r, h.log, "users.list", err, "user_id", identity.ID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, toMemberResponse(member))
	}
	writeJSON(w, http.StatusOK, memberListResponse{Items: items})
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if !h.requireRole(w, r, "users.create", identity.ID, authz.CreateUser) {
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log.WithContext(r.Context()).BusinessError("users.create: invalid json", err, "user_id", identity.ID)
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	created, err := h.users.CreateUser(r.Context(), identity.ID, userdomain.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeDomainError(w, r, h.log, "users.create", err, "user_id", identity.ID)
		return
	}

	writeJSON(w, http.StatusCreated, createdUserResponse{
		ID:       created.ID,
		Email:    created.Email,
		FullName: created.FullName,
	})
}

func toMemberResponse(member userdomain.Member) memberResponse {
	resp := memberResponse{
		ID:       member.ID,
		Email:    member.Email,
		FullName: member.FullName,
		Role:     member.Role,
		IsAdmin:  member.Role == authz.RoleAdmin,
	}
	if !member.CreatedAt.IsZero() {
		createdAt := member.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}
