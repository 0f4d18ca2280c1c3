package newsletters

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
	DefaultLimit = 20
	maxLimit     = 100
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

// List is public.
func (s *Service) List(ctx context.Context, limit int) ([]Newsletter, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperr.Storage("newsletters.list", err)
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, callerID string, input CreateInput) (*Newsletter, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.CreateNewsletter); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if content == "" {
		return nil, apperr.Validation("content is required")
	}

	newsletter := &Newsletter{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		CreatedBy:   callerID,
		PublishedAt: s.now(),
	}
	if err := s.repo.Create(ctx, newsletter); err != nil {
		return nil, apperr.Storage("newsletters.create", err)
	}
	return newsletter, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.DeleteNewsletter); err != nil {
		return err
	}
	if uuid.Validate(id) != nil {
		return ErrNewsletterNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Storage("newsletters.delete", err)
	}
	if !deleted {
		return ErrNewsletterNotFound
	}
	s.log.WithContext(ctx).Info("newsletters: deleted", "newsletter_id", id, "admin_id", callerID)
	return nil
}
