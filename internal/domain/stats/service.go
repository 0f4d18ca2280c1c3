package stats

import (
	"context"
	"sort"
	"strings"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/google/uuid"
)

// Service derives every total from the approved rows at read time. Nothing is
// stored or cached between calls.
type Service struct {
	repo         Repository
	authz        authz.Authorizer
	requirements Requirements
}

func NewService(repo Repository, authorizer authz.Authorizer, requirements Requirements) *Service {
	return &Service{repo: repo, authz: authorizer, requirements: requirements}
}

func (s *Service) Dashboard(ctx context.Context, callerID string) (Dashboard, error) {
	decision, err := authz.Require(ctx, s.authz, callerID, authz.ReadOwnStatistics)
	if err != nil {
		return Dashboard{}, err
	}

	approved, err := s.repo.ListApproved(ctx, callerID)
	if err != nil {
		return Dashboard{}, apperr.Storage("stats.list_approved", err)
	}
	count, err := s.repo.CountSubmissions(ctx, callerID, "")
	if err != nil {
		return Dashboard{}, apperr.Storage("stats.count_submissions", err)
	}

	totals := submissions.Aggregate(approved)
	result := Dashboard{
		Totals:                totals,
		SubmissionCount:       count,
		RequiredHours:         s.requirements.ServiceHours,
		RequiredSyncHours:     s.requirements.SyncHours,
		BelowServiceThreshold: totals.Total < s.requirements.ServiceHours,
		BelowSyncThreshold:    totals.Synchronous < s.requirements.SyncHours,
	}

	if decision.IsAdmin() {
		pending, err := s.repo.CountSubmissions(ctx, "", submissions.StatusPending)
		if err != nil {
			return Dashboard{}, apperr.Storage("stats.count_pending", err)
		}
		result.PendingCount = &pending
	}
	return result, nil
}

// Overview is the per-member breakdown and the organization total. Members
// without approved hours are listed with zeros.
func (s *Service) Overview(ctx context.Context, callerID string) (Overview, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ReadAllStatistics); err != nil {
		return Overview{}, err
	}

	members, err := s.repo.ListMembers(ctx)
	if err != nil {
		return Overview{}, apperr.Storage("stats.list_members", err)
	}
	approved, err := s.repo.ListApproved(ctx, "")
	if err != nil {
		return Overview{}, apperr.Storage("stats.list_approved", err)
	}

	byUser := make(map[string][]submissions.Submission)
	for _, item := range approved {
		byUser[item.UserID] = append(byUser[item.UserID], item)
	}

	known := make(map[string]struct{}, len(members))
	result := Overview{
		Members:      make([]MemberTotals, 0, len(members)),
		Organization: submissions.Aggregate(approved),
	}
	for _, member := range members {
		known[member.UserID] = struct{}{}
		result.Members = append(result.Members, MemberTotals{
			MemberRef: member,
			Totals:    submissions.Aggregate(byUser[member.UserID]),
		})
	}
	// Rows whose owner has no profile mirror still count toward the
	// organization, so they are listed too.
	for userID, items := range byUser {
		if _, ok := known[userID]; ok {
			continue
		}
		result.Members = append(result.Members, MemberTotals{
			MemberRef: MemberRef{UserID: userID},
			Totals:    submissions.Aggregate(items),
		})
	}

	sort.SliceStable(result.Members, func(i, j int) bool {
		a, b := result.Members[i], result.Members[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return strings.ToLower(displayName(a.MemberRef)) < strings.ToLower(displayName(b.MemberRef))
	})
	return result, nil
}

// MemberSubmissions lists the approved rows that make up a member's total.
func (s *Service) MemberSubmissions(ctx context.Context, callerID, userID string) ([]submissions.Submission, submissions.Totals, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ReadAllStatistics); err != nil {
		return nil, submissions.Totals{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, submissions.Totals{}, apperr.Validation("user_id is required")
	}
	if uuid.Validate(userID) != nil {
		return nil, submissions.Totals{}, apperr.Validation("user_id is not a valid id")
	}

	approved, err := s.repo.ListApproved(ctx, userID)
	if err != nil {
		return nil, submissions.Totals{}, apperr.Storage("stats.list_approved", err)
	}
	return approved, submissions.Aggregate(approved), nil
}

func displayName(ref MemberRef) string {
	if ref.FullName != nil && *ref.FullName != "" {
		return *ref.FullName
	}
	if ref.Email != nil {
		return *ref.Email
	}
	return ref.UserID
}
