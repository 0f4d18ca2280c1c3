package app

import (
	"fmt"

	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/domain/meetings"
	"github.com/MalavS298/basiscpk/internal/domain/messages"
	"github.com/MalavS298/basiscpk/internal/domain/newsletters"
	"github.com/MalavS298/basiscpk/internal/domain/settings"
	"github.com/MalavS298/basiscpk/internal/domain/stats"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/MalavS298/basiscpk/internal/repository/inmemory"
	meetingsrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/meetings"
	messagesrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/messages"
	newslettersrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/newsletters"
	settingsrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/settings"
	statsrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/stats"
	submissionsrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/submissions"
	userrepo "github.com/MalavS298/basiscpk/internal/repository/postgres/user"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/handler"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"gorm.io/gorm"
)

type Repositories struct {
	Users       user.Repository
	Submissions submissions.Repository
	Settings    settings.Repository
	Newsletters newsletters.Repository
	Messages    messages.Repository
	Meetings    meetings.Repository
	Stats       stats.Repository
}

func PostgresRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       userrepo.NewPostgres(db),
		Submissions: submissionsrepo.NewPostgres(db),
		Settings:    settingsrepo.NewPostgres(db),
		Newsletters: newslettersrepo.NewPostgres(db),
		Messages:    messagesrepo.NewPostgres(db),
		Meetings:    meetingsrepo.NewPostgres(db),
		Stats:       statsrepo.NewPostgres(db),
	}
}

func MemoryRepositories(store *inmemory.Store) Repositories {
	return Repositories{
		Users:       store.Users(),
		Submissions: store.Submissions(),
		Settings:    store.Settings(),
		Newsletters: store.Newsletters(),
		Messages:    store.Messages(),
		Meetings:    store.Meetings(),
		Stats:       store.Stats(),
	}
}

// NewServices builds every domain service over repos. Permissions are
// resolved against the role table of repos.Users on every check.
func NewServices(cfg config.Config, repos Repositories, identities user.IdentityProvider, scheduler meetings.Scheduler, log logger.Logger) (handler.Services, error) {
	enforcer, err := authz.NewEnforcer(user.NewRoleResolver(repos.Users), log)
	if err != nil {
		return handler.Services{}, fmt.Errorf("init authz: %w", err)
	}

	settingsService := settings.NewService(repos.Settings, enforcer, log)
	return handler.Services{
		Authorizer:  enforcer,
		Users:       user.NewService(repos.Users, identities, enforcer, log),
		Submissions: submissions.NewService(repos.Submissions, settingsService, enforcer, log),
		Stats: stats.NewService(repos.Stats, enforcer, stats.Requirements{
			ServiceHours: cfg.Requirements.ServiceHours,
			SyncHours:    cfg.Requirements.SyncHours,
		}),
		Settings:    settingsService,
		Newsletters: newsletters.NewService(repos.Newsletters, enforcer, log),
		Messages:    messages.NewService(repos.Messages, enforcer, log),
		Meetings:    meetings.NewService(repos.Meetings, scheduler, enforcer, cfg.Zoom.DefaultDuration, log),
	}, nil
}
