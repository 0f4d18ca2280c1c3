package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (user.Identity, error)
}

type ProfileSaver interface {
	SaveProfile(ctx context.Context, identity user.Identity) error
}

type SupabaseAuth struct {
	verifier TokenVerifier
	profiles ProfileSaver
	skipAuth bool
	mockUser user.Identity
	log      logger.Logger
}

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

func NewSupabaseAuth(cfg config.SupabaseConfig, verifier TokenVerifier, profiles ProfileSaver, log logger.Logger) *SupabaseAuth {
	return &SupabaseAuth{
		verifier: verifier,
		profiles: profiles,
		skipAuth: cfg.SkipAuth,
		mockUser: user.Identity{
			ID:       strings.TrimSpace(cfg.MockUserID),
			Email:    strings.TrimSpace(cfg.MockUserEmail),
			FullName: strings.TrimSpace(cfg.MockUserName),
		},
		log: log,
	}
}

func (a *SupabaseAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			identity := a.mockUser
			if identity.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			a.saveProfile(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), identity)))
			return
		}

		token, ok := BearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		identity, err := a.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, apperr.ErrInternal) {
				a.log.WithContext(r.Context()).InternalError("auth: verifier not usable", err)
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}
			a.log.WithContext(r.Context()).BusinessError("auth: token rejected", err)
			unauthorized(w)
			return
		}

		a.saveProfile(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), identity)))
	})
}

// Authenticate verifies a bearer token without touching the profile mirror.
// The relays call it directly.
func (a *SupabaseAuth) Authenticate(ctx context.Context, header string) (user.Identity, error) {
	if a.skipAuth && a.mockUser.ID != "" {
		return a.mockUser, nil
	}
	token, ok := BearerToken(header)
	if !ok {
		return user.Identity{}, apperr.ErrUnauthenticated
	}
	return a.verifier.VerifyToken(ctx, token)
}

func (a *SupabaseAuth) saveProfile(ctx context.Context, identity user.Identity) {
	if a.profiles == nil {
		return
	}
	if err := a.profiles.SaveProfile(ctx, identity); err != nil {
		a.log.WithContext(ctx).InternalError("auth: upsert profile failed", err, "user_id", identity.ID)
	}
}

func BearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, identity user.Identity) context.Context {
	ctx = logger.ContextWithAttrs(ctx, "caller_id", identity.ID)
	ctx = context.WithValue(ctx, userKey, identity)
	return context.WithValue(ctx, userIDKey, identity.ID)
}

func UserFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(userKey).(user.Identity)
	if !ok || identity.ID == "" {
		return user.Identity{}, false
	}
	return identity, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// WriteFlatError writes the relay error shape {"error": "message"}.
func WriteFlatError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
