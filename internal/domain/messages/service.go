package messages

import (
	"context"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	authz authz.Authorizer
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, authorizer authz.Authorizer, log logger.Logger) *Service {
	return &Service{
		repo:  repo,
		authz: authorizer,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (*Message, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.CreateMessage); err != nil {
		return nil, err
	}

	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" {
		return nil, apperr.Validation("subject is required")
	}
	if description == "" {
		return nil, apperr.Validation("description is required")
	}

	message := &Message{
		ID:          uuid.NewString(),
		UserID:      callerID,
		Subject:     subject,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, apperr.Storage("messages.create", err)
	}
	return message, nil
}

// List shows admins the whole inbox and members only what they sent.
func (s *Service) List(ctx context.Context, callerID string) ([]WithSender, error) {
	decision, err := s.authz.Authorize(ctx, callerID, authz.ListAllMessages)
	if err != nil {
		return nil, err
	}

	scope := ""
	if !decision.Allowed {
		if _, err := authz.Require(ctx, s.authz, callerID, authz.ListOwnMessages); err != nil {
			return nil, err
		}
		scope = callerID
	}

	items, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, apperr.Storage("messages.list", err)
	}
	return items, nil
}

// MarkRead is idempotent: marking a read message again succeeds.
func (s *Service) MarkRead(ctx context.Context, callerID, id string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.MarkMessageRead); err != nil {
		return err
	}
	if uuid.Validate(id) != nil {
		return ErrMessageNotFound
	}
	found, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return apperr.Storage("messages.mark_read", err)
	}
	if !found {
		return ErrMessageNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DeleteMessage); err != nil {
		return err
	}
	if uuid.Validate(id) != nil {
		return ErrMessageNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Storage("messages.delete", err)
	}
	if !deleted {
		return ErrMessageNotFound
	}
	s.log.WithContext(ctx).Info("messages: deleted", "message_id", id, "admin_id", callerID)
	return nil
}
