package user

import (
	"context"

	"github.com/MalavS298/basiscpk/internal/authz"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	UpsertProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	// EnsureRole inserts a role assignment unless one already exists.
	EnsureRole(ctx context.Context, assignment *RoleAssignment) error
	SetRole(ctx context.Context, assignment *RoleAssignment) error
	GetRole(ctx context.Context, userID string) (*RoleAssignment, error)
	ListRoles(ctx context.Context) (map[string]authz.Role, error)
	// DeleteDependents removes every row owned by the user and returns
	// exactly what it removed.
	DeleteDependents(ctx context.Context, userID string) (*Dependents, error)
	RestoreDependents(ctx context.Context, dependents *Dependents) error
}

// IdentityProvider is the auth provider's privileged surface.
type IdentityProvider interface {
	SignUp(ctx context.Context, input CreateUserInput) (*Identity, error)
	DeleteIdentity(ctx context.Context, userID string) error
}
