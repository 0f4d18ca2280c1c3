package submissions

import (
	"context"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type Service struct {
	repo     Repository
	settings SettingsReader
	authz    authz.Authorizer
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, settings SettingsReader, authorizer authz.Authorizer, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		authz:    authorizer,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create records a member's claim as pending. The accepting-responses toggle
// is read on every call.
func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (*Submission, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.CreateSubmission); err != nil {
		return nil, err
	}

	accepting, err := s.settings.AcceptingResponses(ctx)
	if err != nil {
		return nil, err
	}
	if !accepting {
		return nil, ErrSubmissionsClosed
	}

	submission, err := s.buildSubmission(callerID, input)
	if err != nil {
		return nil, err
	}
	submission.ID = uuid.NewString()

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, apperr.Storage("submissions.create", err)
	}
	return submission, nil
}

// CreateManual records hours on behalf of targetUserID as already approved.
func (s *Service) CreateManual(ctx context.Context, callerID, targetUserID string, input CreateInput) (*Submission, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ManualEntrySubmission); err != nil {
		return nil, err
	}

	targetUserID = strings.TrimSpace(targetUserID)
	if targetUserID == "" {
		return nil, apperr.Validation("user_id is required")
	}

	submission, err := s.buildSubmission(targetUserID, input)
	if err != nil {
		return nil, err
	}
	submission.ID = uuid.NewString()
	submission.Status = StatusApproved
	approvedAt := submission.SubmittedAt
	submission.ApprovedAt = &approvedAt
	submission.ApprovedBy = &callerID

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, apperr.Storage("submissions.create_manual", err)
	}
	s.log.WithContext(ctx).Info("submissions: manual entry recorded", "submission_id", submission.ID, "user_id", targetUserID, "admin_id", callerID)
	return submission, nil
}

// Transition approves or rejects a submission. A decided submission may be
// decided again; approval stamps time and approver, rejection clears both.
func (s *Service) Transition(ctx context.Context, callerID, submissionID string, target Status) (*Submission, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DecideSubmission); err != nil {
		return nil, err
	}
	if target != StatusApproved && target != StatusRejected {
		return nil, ErrInvalidTransition
	}
	if uuid.Validate(submissionID) != nil {
		return nil, ErrSubmissionNotFound
	}

	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, apperr.Storage("submissions.get", err)
	}
	if submission.Status != StatusPending {
		s.log.WithContext(ctx).Info("submissions: re-deciding submission",
			"submission_id", submissionID, "from", submission.Status, "to", target, "admin_id", callerID)
	}

	var approvedAt *time.Time
	var approvedBy *string
	if target == StatusApproved {
		now := s.now()
		approvedAt = &now
		approvedBy = &callerID
	}

	if err := s.repo.UpdateDecision(ctx, submissionID, target, approvedAt, approvedBy); err != nil {
		return nil, apperr.Storage("submissions.update_decision", err)
	}

	submission.Status = target
	submission.ApprovedAt = approvedAt
	submission.ApprovedBy = approvedBy
	return submission, nil
}

func (s *Service) Delete(ctx context.Context, callerID, submissionID string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DeleteSubmission); err != nil {
		return err
	}
	if uuid.Validate(submissionID) != nil {
		return ErrSubmissionNotFound
	}
	deleted, err := s.repo.Delete(ctx, submissionID)
	if err != nil {
		return apperr.Storage("submissions.delete", err)
	}
	if !deleted {
		return ErrSubmissionNotFound
	}
	s.log.WithContext(ctx).Info("submissions: deleted", "submission_id", submissionID, "admin_id", callerID)
	return nil
}

// List returns every submission for admins and only the caller's own for
// members. Admins may narrow by status or owner.
func (s *Service) List(ctx context.Context, callerID string, filter ListFilter) ([]Submission, int64, error) {
	decision, err := s.authz.Authorize(ctx, callerID, authz.ListAllSubmissions)
	if err != nil {
		return nil, 0, err
	}
	if !decision.Allowed {
		if _, err := authz.Require(ctx, s.authz, callerID, authz.ListOwnSubmissions); err != nil {
			return nil, 0, err
		}
		filter.UserID = callerID
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperr.Validation("status must be pending, approved or rejected")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Storage("submissions.list", err)
	}
	return items, total, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
