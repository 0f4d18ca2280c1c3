package user

import (
	"context"
	"errors"
	"testing"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type fakeUserRepo struct {
	profiles    map[string]Profile
	roles       map[string]RoleAssignment
	submissions []submissions.Submission
	deleteErr   error
	// beforeDelete runs just before DeleteDependents removes anything.
	beforeDelete func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		profiles: make(map[string]Profile),
		roles:    make(map[string]RoleAssignment),
	}
}

func (r *fakeUserRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeUserRepo) UpsertProfile(ctx context.Context, profile *Profile) error {
	existing, ok := r.profiles[profile.ID]
	if ok {
		if profile.Email != nil {
			existing.Email = profile.Email
		}
		if profile.FullName != nil {
			existing.FullName = profile.FullName
		}
		r.profiles[profile.ID] = existing
		return nil
	}
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *fakeUserRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (r *fakeUserRepo) ListProfiles(ctx context.Context) ([]Profile, error) {
	result := make([]Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		result = append(result, profile)
	}
	return result, nil
}

func (r *fakeUserRepo) EnsureRole(ctx context.Context, assignment *RoleAssignment) error {
	if _, ok := r.roles[assignment.UserID]; !ok {
		r.roles[assignment.UserID] = *assignment
	}
	return nil
}

func (r *fakeUserRepo) SetRole(ctx context.Context, assignment *RoleAssignment) error {
	r.roles[assignment.UserID] = *assignment
	return nil
}

func (r *fakeUserRepo) GetRole(ctx context.Context, userID string) (*RoleAssignment, error) {
	assignment, ok := r.roles[userID]
	if !ok {
		return nil, ErrRoleNotFound
	}
	return &assignment, nil
}

func (r *fakeUserRepo) ListRoles(ctx context.Context) (map[string]authz.Role, error) {
	result := make(map[string]authz.Role, len(r.roles))
	for userID, assignment := range r.roles {
		result[userID] = assignment.Role
	}
	return result, nil
}

func (r *fakeUserRepo) DeleteDependents(ctx context.Context, userID string) (*Dependents, error) {
	if r.deleteErr != nil {
		return nil, r.deleteErr
	}
	if r.beforeDelete != nil {
		r.beforeDelete()
	}
	removed := &Dependents{}
	kept := make([]submissions.Submission, 0, len(r.submissions))
	for _, item := range r.submissions {
		if item.UserID == userID {
			removed.Submissions = append(removed.Submissions, item)
			continue
		}
		kept = append(kept, item)
	}
	r.submissions = kept
	if assignment, ok := r.roles[userID]; ok {
		removed.Role = &assignment
		delete(r.roles, userID)
	}
	if profile, ok := r.profiles[userID]; ok {
		removed.Profile = &profile
		delete(r.profiles, userID)
	}
	return removed, nil
}

func (r *fakeUserRepo) RestoreDependents(ctx context.Context, dependents *Dependents) error {
	if dependents.Profile != nil {
		r.profiles[dependents.Profile.ID] = *dependents.Profile
	}
	if dependents.Role != nil {
		r.roles[dependents.Role.UserID] = *dependents.Role
	}
	r.submissions = append(r.submissions, dependents.Submissions...)
	return nil
}

type fakeIdentities struct {
	identities map[string]bool
	deleteErr  error
	signUps    []CreateUserInput
}

func (f *fakeIdentities) SignUp(ctx context.Context, input CreateUserInput) (*Identity, error) {
	f.signUps = append(f.signUps, input)
	return &Identity{ID: "new-user", Email: input.Email, FullName: input.FullName}, nil
}

func (f *fakeIdentities) DeleteIdentity(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.identities, userID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeIdentities) {
	t.Helper()
	repo := newFakeUserRepo()
	identities := &fakeIdentities{identities: map[string]bool{"admin": true, "member": true}}
	enforcer, err := authz.NewEnforcer(NewRoleResolver(repo), logger.Nop())
	if err != nil {
		t.Fatalf("expected enforcer, got %v", err)
	}
	service := NewService(repo, identities, enforcer, logger.Nop())

	ctx := context.Background()
	if err := service.SaveProfile(ctx, Identity{ID: "admin", Email: "admin@example.org"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := service.AssignRole(ctx, "admin", authz.RoleAdmin); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := service.SaveProfile(ctx, Identity{ID: "member", Email: "member@example.org", FullName: "Mia Member"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	repo.submissions = []submissions.Submission{
		{ID: "s1", UserID: "member", Hours: 1, Status: submissions.StatusApproved},
		{ID: "s2", UserID: "member", Hours: 2, Status: submissions.StatusPending},
		{ID: "s3", UserID: "member", Hours: 3, Status: submissions.StatusApproved},
		{ID: "s4", UserID: "admin", Hours: 4, Status: submissions.StatusApproved},
	}
	return service, repo, identities
}

func TestSaveProfileCreatesDefaultRole(t *testing.T) {
	service, repo, _ := newTestService(t)

	if repo.roles["member"].Role != authz.RoleMember {
		t.Fatalf("expected default member role, got %q", repo.roles["member"].Role)
	}
	if err := service.SaveProfile(context.Background(), Identity{ID: "admin"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.roles["admin"].Role != authz.RoleAdmin {
		t.Fatalf("saving a profile must not demote an admin")
	}
}

func TestMissingRoleRowMeansMember(t *testing.T) {
	repo := newFakeUserRepo()
	role, err := NewRoleResolver(repo).ResolveRole(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if role != authz.RoleMember {
		t.Fatalf("expected member, got %s", role)
	}
}

func TestDeleteUserRemovesDependentsAndIdentity(t *testing.T) {
	service, repo, identities := newTestService(t)

	if err := service.DeleteUser(context.Background(), "admin", "member"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.profiles["member"]; ok {
		t.Fatalf("expected profile to be removed")
	}
	if _, ok := repo.roles["member"]; ok {
		t.Fatalf("expected role to be removed")
	}
	for _, item := range repo.submissions {
		if item.UserID == "member" {
			t.Fatalf("expected submissions to be removed, found %s", item.ID)
		}
	}
	if len(repo.submissions) != 1 {
		t.Fatalf("expected other users' submissions to stay, got %d", len(repo.submissions))
	}
	if identities.identities["member"] {
		t.Fatalf("expected identity to be removed")
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	service, repo, identities := newTestService(t)

	err := service.DeleteUser(context.Background(), "admin", "admin")
	if !errors.Is(err, apperr.ErrValidation) || !errors.Is(err, ErrSelfDeletion) {
		t.Fatalf("expected self deletion error, got %v", err)
	}
	if _, ok := repo.profiles["admin"]; !ok || !identities.identities["admin"] {
		t.Fatalf("expected nothing to be deleted")
	}
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	service, repo, _ := newTestService(t)

	if err := service.DeleteUser(context.Background(), "member", "admin"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.submissions) != 4 {
		t.Fatalf("expected no state change")
	}
}

func TestDeleteUserRequiresTarget(t *testing.T) {
	service, _, _ := newTestService(t)

	if err := service.DeleteUser(context.Background(), "admin", " "); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected user id required, got %v", err)
	}
}

func TestDeleteUserRestoresRowsWhenIdentityDeletionFails(t *testing.T) {
	service, repo, identities := newTestService(t)
	identities.deleteErr = &apperr.UpstreamError{Service: "auth", Status: 500, Body: "boom"}

	err := service.DeleteUser(context.Background(), "admin", "member")
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if _, ok := repo.profiles["member"]; !ok {
		t.Fatalf("expected profile to be restored")
	}
	if repo.roles["member"].Role != authz.RoleMember {
		t.Fatalf("expected role to be restored")
	}
	if len(repo.submissions) != 4 {
		t.Fatalf("expected submissions to be restored, got %d", len(repo.submissions))
	}
}

func TestDeleteUserRestoresRowsWrittenDuringDeletion(t *testing.T) {
	service, repo, identities := newTestService(t)
	identities.deleteErr = &apperr.UpstreamError{Service: "auth", Status: 502, Body: "bad gateway"}
	repo.beforeDelete = func() {
		repo.submissions = append(repo.submissions, submissions.Submission{ID: "s5", UserID: "member", Hours: 5, Status: submissions.StatusPending})
	}

	if err := service.DeleteUser(context.Background(), "admin", "member"); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	found := false
	for _, item := range repo.submissions {
		if item.ID == "s5" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected late submission to be restored, got %+v", repo.submissions)
	}
	if len(repo.submissions) != 5 {
		t.Fatalf("expected 5 submissions after restore, got %d", len(repo.submissions))
	}
}

func TestDeleteUserStorageFailureLeavesIdentity(t *testing.T) {
	service, repo, identities := newTestService(t)
	repo.deleteErr = errors.New("connection reset")

	err := service.DeleteUser(context.Background(), "admin", "member")
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if !identities.identities["member"] {
		t.Fatalf("identity must not be deleted after a storage failure")
	}
}

func TestCreateUserValidatesAndDelegates(t *testing.T) {
	service, _, identities := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateUser(ctx, "member", CreateUserInput{Email: "a@example.org", Password: "secret1"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := service.CreateUser(ctx, "admin", CreateUserInput{Email: "not-an-email", Password: "secret1"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := service.CreateUser(ctx, "admin", CreateUserInput{Email: "a@example.org", Password: "123"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	created, err := service.CreateUser(ctx, "admin", CreateUserInput{Email: " a@example.org ", Password: "secret1", FullName: "Ada"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Email != "a@example.org" || len(identities.signUps) != 1 {
		t.Fatalf("expected a single sign-up with trimmed email, got %+v", identities.signUps)
	}
}

func TestListMembersIncludesRoles(t *testing.T) {
	service, _, _ := newTestService(t)

	members, err := service.ListMembers(context.Background(), "admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, member := range members {
		if member.ID == "admin" && member.Role != authz.RoleAdmin {
			t.Fatalf("expected admin role for admin")
		}
	}
}
