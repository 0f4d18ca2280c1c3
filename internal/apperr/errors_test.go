package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationIsClassified(t *testing.T) {
	err := Validation("hours must be a non-negative number")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	wrapped := fmt.Errorf("create submission: %w", err)
	if got := Message(wrapped); got != "hours must be a non-negative number" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("insert submission", cause)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("expected storage error wrapping cause, got %v", err)
	}
	notFound := fmt.Errorf("submission %w", ErrNotFound)
	if got := Storage("get submission", notFound); got != notFound {
		t.Fatalf("expected classified error to pass through, got %v", got)
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := error(&UpstreamError{Service: "zoom", Status: 401, Body: `{"reason":"bad creds"}`})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream")
	}
	if got := Message(err); got != `zoom error [401]: {"reason":"bad creds"}` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestPolicyIsClassified(t *testing.T) {
	err := fmt.Errorf("create: %w", Policy("submissions are closed"))
	if !errors.Is(err, ErrPolicy) || errors.Is(err, ErrValidation) {
		t.Fatalf("expected only ErrPolicy, got %v", err)
	}
	if got := Message(err); got != "submissions are closed" {
		t.Fatalf("unexpected message %q", got)
	}
}
