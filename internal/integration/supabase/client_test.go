package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "user-1",
			"email":         "mia@example.org",
			"user_metadata": map[string]string{"full_name": "Mia Member"},
		})
	})
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@example.org" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":422,"msg":"User already registered"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "new-user", "email": body.Email},
		})
	})
	mux.HandleFunc("DELETE /auth/v1/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"msg":"not admin"}`))
			return
		}
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"msg":"User not found"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, secret string) *Client {
	return NewClient(config.SupabaseConfig{
		URL:            server.URL,
		PublishableKey: "anon",
		ServiceRoleKey: "service",
		JWTSecret:      secret,
		AuthTimeout:    time.Second,
	})
}

func TestVerifyTokenRemotely(t *testing.T) {
	client := newTestClient(newAuthServer(t), "")

	identity, err := client.VerifyToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.ID != "user-1" || identity.Email != "mia@example.org" || identity.FullName != "Mia Member" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := client.VerifyToken(context.Background(), "bad"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func signToken(t *testing.T, secret string, claims accessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("expected signed token, got %v", err)
	}
	return token
}

func TestVerifyTokenLocally(t *testing.T) {
	client := newTestClient(newAuthServer(t), "top-secret")
	now := time.Now()

	valid := signToken(t, "top-secret", accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-2",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email:        "avery@example.org",
		Role:         "authenticated",
		UserMetadata: map[string]interface{}{"name": "Avery"},
	})
	identity, err := client.VerifyToken(context.Background(), valid)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.ID != "user-2" || identity.FullName != "Avery" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	cases := map[string]string{
		"wrong secret": signToken(t, "other", accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}),
		"expired":      signToken(t, "top-secret", accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour))}}),
		"no expiry":    signToken(t, "top-secret", accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"}}),
		"anon role":    signToken(t, "top-secret", accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}, Role: "anon"}),
		"garbage":      "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := client.VerifyToken(context.Background(), token); !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Fatalf("expected unauthenticated, got %v", err)
			}
		})
	}
}

func TestSignUp(t *testing.T) {
	client := newTestClient(newAuthServer(t), "")

	identity, err := client.SignUp(context.Background(), user.CreateUserInput{Email: "new@example.org", Password: "secret1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if identity.ID != "new-user" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	_, err = client.SignUp(context.Background(), user.CreateUserInput{Email: "taken@example.org", Password: "secret1"})
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "User already registered" {
		t.Fatalf("expected provider validation message, got %v", err)
	}
}

func TestDeleteIdentity(t *testing.T) {
	server := newAuthServer(t)
	client := newTestClient(server, "")

	if err := client.DeleteIdentity(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err := client.DeleteIdentity(context.Background(), "missing")
	var upstream *apperr.UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusNotFound || upstream.Body != "User not found" {
		t.Fatalf("expected upstream 404, got %v", err)
	}

	unconfigured := NewClient(config.SupabaseConfig{URL: server.URL})
	if err := unconfigured.DeleteIdentity(context.Background(), "user-1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}
