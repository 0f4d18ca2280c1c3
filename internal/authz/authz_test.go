package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type fakeRoles map[string]Role

func (f fakeRoles) ResolveRole(ctx context.Context, userID string) (Role, error) {
	if role, ok := f[userID]; ok {
		return role, nil
	}
	return RoleMember, nil
}

type failingRoles struct{}

func (failingRoles) ResolveRole(ctx context.Context, userID string) (Role, error) {
	return "", apperr.Storage("roles.get", errors.New("connection refused"))
}

func newTestEnforcer(t *testing.T, roles RoleResolver) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer(roles, logger.Nop())
	if err != nil {
		t.Fatalf("expected enforcer, got %v", err)
	}
	return enforcer
}

func TestMemberPermissions(t *testing.T) {
	enforcer := newTestEnforcer(t, fakeRoles{})
	ctx := context.Background()

	for _, perm := range []Permission{CreateSubmission, ListOwnSubmissions, ReadOwnStatistics, CreateMessage, ReadMeetings} {
		decision, err := enforcer.Authorize(ctx, "member", perm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !decision.Allowed {
			t.Fatalf("expected member to hold %s", perm)
		}
	}

	for _, perm := range []Permission{DecideSubmission, DeleteUser, CreateMeeting, UpdateSettings, ListAllMessages} {
		decision, err := enforcer.Authorize(ctx, "member", perm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if decision.Allowed {
			t.Fatalf("expected member to be denied %s", perm)
		}
	}
}

func TestAdminInheritsMemberPermissions(t *testing.T) {
	enforcer := newTestEnforcer(t, fakeRoles{"boss": RoleAdmin})

	for _, perm := range []Permission{CreateSubmission, DecideSubmission, DeleteUser, CreateMeeting} {
		decision, err := enforcer.Authorize(context.Background(), "boss", perm)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !decision.Allowed || !decision.IsAdmin() {
			t.Fatalf("expected admin to hold %s, got %+v", perm, decision)
		}
	}
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	roles := fakeRoles{"boss": RoleAdmin}
	enforcer := newTestEnforcer(t, roles)
	ctx := context.Background()

	if _, err := Require(ctx, enforcer, "boss", DeleteSubmission); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}

	roles["boss"] = RoleMember
	if _, err := Require(ctx, enforcer, "boss", DeleteSubmission); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden after demotion, got %v", err)
	}
}

func TestAuthorizeRequiresCaller(t *testing.T) {
	enforcer := newTestEnforcer(t, fakeRoles{})
	if _, err := enforcer.Authorize(context.Background(), "", ReadMeetings); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAuthorizePropagatesStorageFailure(t *testing.T) {
	enforcer := newTestEnforcer(t, failingRoles{})
	_, err := Require(context.Background(), enforcer, "member", ReadMeetings)
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
