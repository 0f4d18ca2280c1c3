package settings

import (
	"context"
	"errors"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/pkg/logger"
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

func (s *Service) Get(ctx context.Context, callerID string) (AppSettings, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.ReadSettings); err != nil {
		return AppSettings{}, err
	}
	return s.current(ctx)
}

// AcceptingResponses is read by the submission workflow on every create.
func (s *Service) AcceptingResponses(ctx context.Context) (bool, error) {
	current, err := s.current(ctx)
	if err != nil {
		return false, err
	}
	return current.AcceptingResponses, nil
}

func (s *Service) SetAcceptingResponses(ctx context.Context, callerID string, accepting bool) (AppSettings, error) {
	if _, err := authz.Require(ctx, s.authz, callerID, authz.UpdateSettings); err != nil {
		return AppSettings{}, err
	}
	updated, err := s.ForceAcceptingResponses(ctx, accepting)
	if err != nil {
		return AppSettings{}, err
	}
	s.log.WithContext(ctx).Info("settings: accepting responses changed", "user_id", callerID, "accepting", accepting)
	return updated, nil
}

// ForceAcceptingResponses skips the role check. It backs the operator CLI.
func (s *Service) ForceAcceptingResponses(ctx context.Context, accepting bool) (AppSettings, error) {
	updated, err := s.repo.SetAcceptingResponses(ctx, accepting, s.now())
	if err != nil {
		return AppSettings{}, apperr.Storage("settings.set_accepting", err)
	}
	return *updated, nil
}

func (s *Service) current(ctx context.Context) (AppSettings, error) {
	current, err := s.repo.Get(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return AppSettings{}, apperr.Storage("settings.get", err)
	}
	return *current, nil
}
