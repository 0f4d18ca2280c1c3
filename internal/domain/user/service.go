package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/saga"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type Service struct {
	repo       Repository
	identities IdentityProvider
	authz      authz.Authorizer
	log        logger.Logger
}

func NewService(repo Repository, identities IdentityProvider, authorizer authz.Authorizer, log logger.Logger) *Service {
	return &Service{repo: repo, identities: identities, authz: authorizer, log: log}
}

// RoleResolver reads the role assignment table for the authorizer.
type RoleResolver struct {
	repo Repository
}

func NewRoleResolver(repo Repository) *RoleResolver {
	return &RoleResolver{repo: repo}
}

// ResolveRole reads the role assignment on every call. A missing row means
// member access.
func (r *RoleResolver) ResolveRole(ctx context.Context, userID string) (authz.Role, error) {
	assignment, err := r.repo.GetRole(ctx, userID)
	if errors.Is(err, ErrRoleNotFound) {
		return authz.RoleMember, nil
	}
	if err != nil {
		return "", apperr.Storage("user.get_role", err)
	}
	return assignment.Role, nil
}

// SaveProfile mirrors the authenticated identity and makes sure it has a role
// row. It runs on every authenticated request.
func (s *Service) SaveProfile(ctx context.Context, identity Identity) error {
	if identity.ID == "" {
		return apperr.Validation("user id is required")
	}

	profile := Profile{ID: identity.ID}
	if email := strings.TrimSpace(identity.Email); email != "" {
		profile.Email = &email
	}
	if name := strings.TrimSpace(identity.FullName); name != "" {
		profile.FullName = &name
	}

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		if err := repo.UpsertProfile(ctx, &profile); err != nil {
			return err
		}
		return repo.EnsureRole(ctx, &RoleAssignment{ID: uuid.NewString(), UserID: identity.ID, Role: authz.RoleMember})
	})
	return apperr.Storage("user.save_profile", err)
}

func (s *Service) Me(ctx context.Context, userID string) (*Member, error) {
	role, err := NewRoleResolver(s.repo).ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &Member{Profile: Profile{ID: userID}, Role: role}, nil
	}
	if err != nil {
		return nil, apperr.Storage("user.get_profile", err)
	}
	return &Member{Profile: *profile, Role: role}, nil
}

func (s *Service) ListMembers(ctx context.Context, callerID string) ([]Member, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ListUsers); err != nil {
		return nil, err
	}

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, apperr.Storage("user.list_profiles", err)
	}
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, apperr.Storage("user.list_roles", err)
	}

	result := make([]Member, 0, len(profiles))
	for _, profile := range profiles {
		role, ok := roles[profile.ID]
		if !ok {
			role = authz.RoleMember
		}
		result = append(result, Member{Profile: profile, Role: role})
	}
	return result, nil
}

// CreateUser registers an identity with the auth provider. The profile row is
// filled in when the new user first signs in.
func (s *Service) CreateUser(ctx context.Context, callerID string, input CreateUserInput) (*Identity, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.CreateUser); err != nil {
		return nil, err
	}

	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Email == "" {
		return nil, apperr.Validation("email is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperr.Validation("email is invalid")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	identity, err := s.identities.SignUp(ctx, input)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("user: created", "user_id", identity.ID, "admin_id", callerID)
	return identity, nil
}

// AssignRole sets a user's role without a permission check. It backs the
// operator CLI that bootstraps the first admin.
func (s *Service) AssignRole(ctx context.Context, userID string, role authz.Role) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	if !role.Valid() {
		return apperr.Validation("role must be admin or user")
	}
	err := s.repo.SetRole(ctx, &RoleAssignment{ID: uuid.NewString(), UserID: userID, Role: role})
	return apperr.Storage("user.set_role", err)
}

// DeleteUser removes every row that references the target and then the
// identity itself. If the identity cannot be deleted the rows are restored.
func (s *Service) DeleteUser(ctx context.Context, callerID, targetID string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DeleteUser); err != nil {
		return err
	}

	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return ErrUserIDRequired
	}
	if targetID == callerID {
		return ErrSelfDeletion
	}

	var removed *Dependents
	run := saga.New("user.delete", s.log).
		Add(saga.Step{
			Name: "delete_dependents",
			Do: func(ctx context.Context) error {
				err := s.repo.Transaction(ctx, func(repo Repository) error {
					var err error
					removed, err = repo.DeleteDependents(ctx, targetID)
					return err
				})
				return apperr.Storage("user.delete_dependents", err)
			},
			Compensate: func(ctx context.Context) error {
				return s.repo.Transaction(ctx, func(repo Repository) error {
					return repo.RestoreDependents(ctx, removed)
				})
			},
		}).
		Add(saga.Step{
			Name: "delete_identity",
			Do: func(ctx context.Context) error {
				return s.identities.DeleteIdentity(ctx, targetID)
			},
		})

	if err := run.Run(ctx); err != nil {
		return err
	}

	submissionsRemoved := 0
	if removed != nil {
		submissionsRemoved = len(removed.Submissions)
	}
	s.log.WithContext(ctx).Info("user: deleted", "user_id", targetID, "admin_id", callerID, "submissions_removed", submissionsRemoved)
	return nil
}
