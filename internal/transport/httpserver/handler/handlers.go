package handler

import (
	"net/http"

	"github.com/MalavS298/basiscpk/internal/authz"
	"github.com/MalavS298/basiscpk/internal/domain/meetings"
	"github.com/MalavS298/basiscpk/internal/domain/messages"
	"github.com/MalavS298/basiscpk/internal/domain/newsletters"
	"github.com/MalavS298/basiscpk/internal/domain/settings"
	"github.com/MalavS298/basiscpk/internal/domain/stats"
	"github.com/MalavS298/basiscpk/internal/domain/submissions"
	"github.com/MalavS298/basiscpk/internal/domain/user"
	"github.com/MalavS298/basiscpk/pkg/logger"
)

type Services struct {
	Authorizer  authz.Authorizer
	Users       *user.Service
	Submissions *submissions.Service
	Stats       *stats.Service
	Settings    *settings.Service
	Newsletters *newsletters.Service
	Messages    *messages.Service
	Meetings    *meetings.Service
}

type Handlers struct {
	authz       authz.Authorizer
	users       *user.Service
	submissions *submissions.Service
	stats       *stats.Service
	settings    *settings.Service
	newsletters *newsletters.Service
	messages    *messages.Service
	meetings    *meetings.Service
	log         logger.Logger
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		authz:       services.Authorizer,
		users:       services.Users,
		submissions: services.Submissions,
		stats:       services.Stats,
		settings:    services.Settings,
		newsletters: services.Newsletters,
		messages:    services.Messages,
		meetings:    services.Meetings,
		log:         log,
	}
}

// requireRole refuses a caller lacking perm before the request body is read.
// The services check again on their own.
func (h *Handlers) requireRole(w http.ResponseWriter, r *http.Request, op, userID string, perm authz.Permission) bool {
	if _, err := authz.Require(r.Context(), h.authz, userID, perm); err != nil {
		writeDomainError(w, r, h.log, op, err, "user_id", userID)
		return false
	}
	return true
}
