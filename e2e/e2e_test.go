//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MalavS298/basiscpk/internal/app"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/db"
	"github.com/MalavS298/basiscpk/internal/integration/supabase"
	"github.com/MalavS298/basiscpk/internal/integration/zoom"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"gorm.io/gorm"
)

const (
	adminID  = "aaaaaaaa-0000-4000-8000-000000000001"
	memberID = "bbbbbbbb-0000-4000-8000-000000000002"
)

type testEnv struct {
	server     *httptest.Server
	authServer *authServer
	zoomServer *httptest.Server
	db         *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	auth := newAuthServer(t)
	zoomServer := newZoomServer(t)
	log := logger.Nop()

	cfg := config.Config{
		StoreDriver: config.StoreDriverPostgres,
		DB:          config.DBConfig{DSN: dsn, MaxOpenConns: 5, MaxIdleConns: 2},
		Supabase: config.SupabaseConfig{
			URL:            auth.URL,
			PublishableKey: "test-key",
			ServiceRoleKey: "service-key",
			AuthTimeout:    2 * time.Second,
		},
		Zoom: config.ZoomConfig{
			AccountID:       "acct",
			ClientID:        "client",
			ClientSecret:    "secret",
			OAuthURL:        zoomServer.URL,
			APIURL:          zoomServer.URL,
			Timeout:         2 * time.Second,
			DefaultDuration: 60,
		},
		Relays:       config.RelayConfig{RatePerSecond: 1000, Burst: 1000},
		Requirements: config.RequirementsConfig{ServiceHours: 25, SyncHours: 18.75},
	}

	if err := db.Migrate(cfg.DB, db.DirectionUp, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	identities := supabase.NewClient(cfg.Supabase)
	services, err := app.NewServices(cfg, app.PostgresRepositories(dbConn), identities, zoom.NewClient(cfg.Zoom), log)
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	if err := services.Users.AssignRole(context.Background(), adminID, authz.RoleAdmin); err != nil {
		t.Fatalf("grant admin: %v", err)
	}

	router := httpserver.NewRouter(cfg, services, identities, log)
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: auth, zoomServer: zoomServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	e.zoomServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

type authServer struct {
	*httptest.Server
	mu      sync.Mutex
	deleted []string
}

func (a *authServer) Deleted() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.deleted...)
}

// newAuthServer treats every bearer token as the id of the user it belongs to.
func newAuthServer(t *testing.T) *authServer {
	t.Helper()
	auth := &authServer{}
	auth.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/user":
			if r.Header.Get("apikey") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":    token,
				"email": token + "@example.com",
				"user_metadata": map[string]interface{}{
					"full_name": "User " + token[:8],
				},
			})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/auth/v1/admin/users/"):
			if r.Header.Get("Authorization") != "Bearer service-key" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			auth.mu.Lock()
			auth.deleted = append(auth.deleted, strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/"))
			auth.mu.Unlock()
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{}"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return auth
}

func newZoomServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/oauth/token":
			if user, pass, ok := r.BasicAuth(); !ok || user != "client" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"reason":"Invalid client_id or client_secret"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"zoom-token","token_type":"bearer","expires_in":3599}`))
		case r.URL.Path == "/v2/users/me/meetings":
			if r.Header.Get("Authorization") != "Bearer zoom-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":85746065432,"join_url":"https://zoom.us/j/85746065432"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	err := dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE meeting_details, meetings, messages, newsletters, submissions, user_roles, profiles RESTART IDENTITY CASCADE",
	).Error
	if err != nil {
		return err
	}
	return dbConn.WithContext(context.Background()).Exec(
		"UPDATE app_settings SET accepting_responses = TRUE WHERE id = 'global'",
	).Error
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	return resp, respBody
}

type submissionResponse struct {
	ID     string  `json:"id"`
	Hours  float64 `json:"hours"`
	Status string  `json:"status"`
}

type totalsResponse struct {
	Synchronous  float64 `json:"synchronous"`
	Asynchronous float64 `json:"asynchronous"`
	Total        float64 `json:"total"`
}

func mustStatus(t *testing.T, resp *http.Response, body []byte, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected %d, got %d: %s", expected, resp.StatusCode, string(body))
	}
}

func TestSubmissionLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	client := env.server.Client()
	base := env.server.URL

	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/submissions", memberID, map[string]interface{}{
		"hours":        2.5,
		"service_type": "synchronous",
		"service_date": "2025-03-01",
	})
	mustStatus(t, resp, body, http.StatusCreated)
	var created submissionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != "pending" {
		t.Fatalf("expected pending, got %q", created.Status)
	}

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/submissions/"+created.ID+"/status", memberID, map[string]string{"status": "approved"})
	mustStatus(t, resp, body, http.StatusForbidden)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/submissions/"+created.ID+"/status", adminID, map[string]string{"status": "approved"})
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/me/stats", memberID, nil)
	mustStatus(t, resp, body, http.StatusOK)
	var totals totalsResponse
	if err := json.Unmarshal(body, &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if totals.Total != 2.5 || totals.Synchronous != 2.5 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	resp, body = requestJSON(t, client, http.MethodPut, base+"/api/settings", adminID, map[string]bool{"accepting_responses": false})
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/api/submissions", memberID, map[string]interface{}{
		"hours":        1,
		"service_type": "synchronous",
		"service_date": "2025-03-02",
	})
	mustStatus(t, resp, body, http.StatusConflict)
}

func TestDeleteUserRelay(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	client := env.server.Client()
	base := env.server.URL

	ids := make([]string, 0, 3)
	for _, hours := range []float64{1, 2, 3} {
		resp, body := requestJSON(t, client, http.MethodPost, base+"/api/submissions", memberID, map[string]interface{}{
			"hours":        hours,
			"service_type": "synchronous",
			"service_date": "2025-03-01",
		})
		mustStatus(t, resp, body, http.StatusCreated)
		var created submissionResponse
		if err := json.Unmarshal(body, &created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, created.ID)
	}
	resp, body := requestJSON(t, client, http.MethodPost, base+"/api/submissions/"+ids[0]+"/status", adminID, map[string]string{"status": "approved"})
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/functions/v1/delete-user", adminID, map[string]string{"userId": adminID})
	mustStatus(t, resp, body, http.StatusBadRequest)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/functions/v1/delete-user", adminID, map[string]string{"userId": memberID})
	mustStatus(t, resp, body, http.StatusOK)

	if deleted := env.authServer.Deleted(); len(deleted) != 1 || deleted[0] != memberID {
		t.Fatalf("expected provider deletion of member, got %v", deleted)
	}

	var remaining int64
	if err := env.db.Table("submissions").Where("user_id = ?", memberID).Count(&remaining).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected submissions to be deleted, got %d", remaining)
	}
	for _, table := range []string{"user_roles", "profiles"} {
		column := "user_id"
		if table == "profiles" {
			column = "id"
		}
		var count int64
		if err := env.db.Table(table).Where(column+" = ?", memberID).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s row to be deleted", table)
		}
	}
}

func TestZoomMeetingRelay(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	client := env.server.Client()
	base := env.server.URL

	resp, body := requestJSON(t, client, http.MethodPost, base+"/functions/v1/zoom-meetings", adminID, map[string]interface{}{
		"title": "Chapter meeting",
	})
	mustStatus(t, resp, body, http.StatusBadRequest)

	resp, body = requestJSON(t, client, http.MethodPost, base+"/functions/v1/zoom-meetings", adminID, map[string]interface{}{
		"title":            "Chapter meeting",
		"description":      "Monthly sync",
		"start_time":       "2030-01-10T18:00:00Z",
		"duration_minutes": 30,
	})
	mustStatus(t, resp, body, http.StatusOK)

	var created struct {
		Meeting struct {
			ID            string `json:"id"`
			ZoomMeetingID string `json:"zoom_meeting_id"`
			JoinURL       string `json:"join_url"`
		} `json:"meeting"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Meeting.ZoomMeetingID != "85746065432" || created.Meeting.JoinURL == "" {
		t.Fatalf("unexpected meeting %+v", created.Meeting)
	}

	resp, body = requestJSON(t, client, http.MethodPut, base+"/api/meetings/"+created.Meeting.ID+"/details", adminID, map[string]interface{}{
		"attendee_ids": []string{memberID},
		"notes":        "minutes",
	})
	mustStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodGet, base+"/api/meetings/"+created.Meeting.ID+"/details", memberID, nil)
	mustStatus(t, resp, body, http.StatusOK)
}
