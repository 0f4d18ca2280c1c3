package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestParseLevelDefaultsByEnv(t *testing.T) {
	if got := parseLevel("", "development"); got != slog.LevelDebug {
		t.Fatalf("expected debug in development, got %v", got)
	}
	if got := parseLevel("", "production"); got != slog.LevelInfo {
		t.Fatalf("expected info in production, got %v", got)
	}
	if got := parseLevel("fatal", "production"); got != LevelCritical {
		t.Fatalf("expected critical, got %v", got)
	}
}

func TestCriticalLevelIsRenamed(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "text")
	log.Critical("db: down")
	if !strings.Contains(buf.String(), "level=CRITICAL") {
		t.Fatalf("expected CRITICAL level, got %q", buf.String())
	}
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")
	log.BusinessError("submissions.create: closed", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	log.BusinessError("submissions.create: closed", errors.New("closed"), "user_id", "u-1")
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "user_id=u-1") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-42")
	log.WithContext(ctx).Info("http: handled")
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("expected request id, got %q", buf.String())
	}
}

func TestWithContextAddsStoredAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "text")
	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "req-7")
	ctx = ContextWithAttrs(ctx, "caller_id", "u-1")
	ctx = ContextWithAttrs(ctx, "relay", "delete-user")

	log.WithContext(ctx).Info("relay: done")
	out := buf.String()
	for _, want := range []string{"request_id=req-7", "caller_id=u-1", "relay=delete-user"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
