// Package authz answers "may this user do that" by resolving the caller's role
// assignment on every call and evaluating it against an embedded casbin policy.
// Nothing is cached: a revoked admin loses access on the next request.
package authz

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/casbin/casbin/v3"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Permission struct {
	Resource string
	Action   string
}

func (p Permission) String() string {
	return p.Resource + ":" + p.Action
}

var (
	CreateSubmission      = Permission{"submissions", "create"}
	ListOwnSubmissions    = Permission{"submissions", "list_own"}
	ListAllSubmissions    = Permission{"submissions", "list_all"}
	ManualEntrySubmission = Permission{"submissions", "manual_entry"}
	DecideSubmission      = Permission{"submissions", "decide"}
	DeleteSubmission      = Permission{"submissions", "delete"}

	ReadOwnStatistics = Permission{"statistics", "read_own"}
	ReadAllStatistics = Permission{"statistics", "read_all"}

	ListUsers  = Permission{"users", "list"}
	CreateUser = Permission{"users", "create"}
	DeleteUser = Permission{"users", "delete"}

	ReadSettings   = Permission{"settings", "read"}
	UpdateSettings = Permission{"settings", "update"}

	CreateNewsletter = Permission{"newsletters", "create"}
	DeleteNewsletter = Permission{"newsletters", "delete"}

	CreateMessage   = Permission{"messages", "create"}
	ListOwnMessages = Permission{"messages", "list_own"}
	ListAllMessages = Permission{"messages", "list_all"}
	MarkMessageRead = Permission{"messages", "mark_read"}
	DeleteMessage   = Permission{"messages", "delete"}

	ReadMeetings         = Permission{"meetings", "read"}
	CreateMeeting        = Permission{"meetings", "create"}
	DeleteMeeting        = Permission{"meetings", "delete"}
	UpdateMeetingDetails = Permission{"meetings", "update_details"}
)

// RoleResolver looks up the role assignment of a user. A user without an
// assignment must resolve to RoleMember.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (Role, error)
}

// Decision is the typed outcome of a capability check.
type Decision struct {
	UserID     string
	Role       Role
	Permission Permission
	Allowed    bool
}

func (d Decision) IsAdmin() bool {
	return d.Role == RoleAdmin
}

type Authorizer interface {
	Authorize(ctx context.Context, userID string, perm Permission) (Decision, error)
}

type Enforcer struct {
	enforcer *casbin.Enforcer
	roles    RoleResolver
	log      logger.Logger
}

func NewEnforcer(roles RoleResolver, log logger.Logger) (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "chapter-portal-casbin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer, roles: roles, log: log}, nil
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enforcer) Authorize(ctx context.Context, userID string, perm Permission) (Decision, error) {
	decision := Decision{UserID: userID, Permission: perm}
	if userID == "" {
		return decision, apperr.ErrUnauthenticated
	}

	role, err := e.roles.ResolveRole(ctx, userID)
	if err != nil {
		return decision, err
	}
	if !role.Valid() {
		role = RoleMember
	}
	decision.Role = role

	allowed, err := e.enforcer.Enforce(string(role), perm.Resource, perm.Action)
	if err != nil {
		return decision, fmt.Errorf("%w: enforce %s: %v", apperr.ErrInternal, perm, err)
	}
	decision.Allowed = allowed

	e.log.Debug("authz: decision", "user_id", userID, "role", role, "permission", perm.String(), "allowed", allowed)
	return decision, nil
}

// Require is Authorize that turns a deny into an ErrForbidden.
func Require(ctx context.Context, a Authorizer, userID string, perm Permission) (Decision, error) {
	decision, err := a.Authorize(ctx, userID, perm)
	if err != nil {
		return decision, err
	}
	if !decision.Allowed {
		return decision, fmt.Errorf("%w: %s requires a role that %s does not hold", apperr.ErrForbidden, perm, decision.Role)
	}
	return decision, nil
}
