// Package authztest builds a real casbin enforcer over an in-memory role table
// for service tests.
package authztest

import (
	"context"
	"sync"
	"testing"

	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type Roles struct {
	mu    sync.Mutex
	roles map[string]authz.Role
}

func (r *Roles) ResolveRole(ctx context.Context, userID string) (authz.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[userID]; ok {
		return role, nil
	}
	return authz.RoleMember, nil
}

func (r *Roles) Set(userID string, role authz.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID] = role
}

// New returns an enforcer in which every id in admins holds the admin role and
// everyone else is a member.
func New(t testing.TB, admins ...string) (*authz.Enforcer, *Roles) {
	t.Helper()
	roles := &Roles{roles: make(map[string]authz.Role)}
	for _, id := range admins {
		roles.roles[id] = authz.RoleAdmin
	}
	enforcer, err := authz.NewEnforcer(roles, logger.Nop())
	if err != nil {
		t.Fatalf("expected enforcer, got %v", err)
	}
	return enforcer, roles
}
