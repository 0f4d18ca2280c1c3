package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// classify maps an error kind to a status, an error code and the message the
// client may see.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, "invalid_request", apperr.Message(err)
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "invalid_token", "invalid token"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "forbidden", "admin role required"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, apperr.ErrPolicy):
		return http.StatusConflict, "policy_refused", apperr.Message(err)
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusInternalServerError, "upstream_error", apperr.Message(err)
	default:
		return http.StatusInternalServerError, "internal_error", "internal error"
	}
}

// writeDomainError logs err at the level its kind deserves and answers with
// the matching envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error, args ...any) {
	status, code, message := classify(err)
	entry := log.WithContext(r.Context())
	if status >= http.StatusInternalServerError {
		entry.InternalError(op+": failed", err, args...)
	} else {
		entry.BusinessError(op+": rejected", err, args...)
	}
	writeError(w, status, code, message)
}
