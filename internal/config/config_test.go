package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MalavS298/basiscpk/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ZOOM_ACCOUNT_ID", "")

	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.HTTPPort)
	}
	if cfg.Requirements.ServiceHours != 25 || cfg.Requirements.SyncHours != 18.75 {
		t.Fatalf("unexpected requirements %+v", cfg.Requirements)
	}
	if cfg.Zoom.HasCredentials() {
		t.Fatalf("expected no zoom credentials")
	}
	if cfg.Zoom.DefaultDuration != 60 {
		t.Fatalf("expected default duration 60, got %d", cfg.Zoom.DefaultDuration)
	}
}

func TestLoadDotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	contents := "HTTP_PORT=9090\nZOOM_CLIENT_ID=from-file\n# comment\nexport SUPABASE_URL=\"https://example.supabase.co\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(nested)
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("ZOOM_CLIENT_ID", "")
	os.Unsetenv("ZOOM_CLIENT_ID")
	t.Setenv("SUPABASE_URL", "")
	os.Unsetenv("SUPABASE_URL")

	cfg, err := Load(logger.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "7070" {
		t.Fatalf("expected env to win, got %q", cfg.HTTPPort)
	}
	if cfg.Zoom.ClientID != "from-file" {
		t.Fatalf("expected value from file, got %q", cfg.Zoom.ClientID)
	}
	if cfg.Supabase.URL != "https://example.supabase.co" {
		t.Fatalf("expected quoted export value, got %q", cfg.Supabase.URL)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.org, ,https://b.org")
	got := getEnvList("CORS_ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.org" || got[1] != "https://b.org" {
		t.Fatalf("unexpected origins %v", got)
	}
}

func TestMigrationURL(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "portal", SSLMode: "disable"}
	if got := cfg.MigrationURL(); got != "postgres://app:p%40ss@db:5432/portal?sslmode=disable" {
		t.Fatalf("unexpected url %q", got)
	}
	cfg.DSN = "postgres://x@y/z"
	if got := cfg.MigrationURL(); got != "postgres://x@y/z" {
		t.Fatalf("expected dsn passthrough, got %q", got)
	}
}
