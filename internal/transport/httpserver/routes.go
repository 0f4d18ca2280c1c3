package httpserver

import (
	"net/http"
	"time"

	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/metrics"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/handler"
	authmw "github.com/MalavS298/basiscpk/internal/transport/httpserver/middleware"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const rateLimiterTTL = 10 * time.Minute

func NewRouter(cfg config.Config, services handler.Services, verifier authmw.TokenVerifier, log logger.Logger) http.Handler {
	handlers := handler.New(services, log)
	auth := authmw.NewSupabaseAuth(cfg.Supabase, verifier, services.Users, log)
	relays := handler.NewRelays(auth, services.Authorizer, services.Users, services.Meetings, log)
	limiter := authmw.NewRateLimiter(cfg.Relays.RatePerSecond, cfg.Relays.Burst, rateLimiterTTL)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authmw.NewCORS(cfg.AllowedOrigins))

		r.Get("/health", handlers.Health)
		r.Get("/newsletters", handlers.ListNewsletters)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/settings", handlers.GetSettings)
			r.Put("/settings", handlers.UpdateSettings)

			r.Get("/submissions", handlers.ListSubmissions)
			r.Post("/submissions", handlers.CreateSubmission)
			r.Post("/submissions/manual", handlers.CreateManualSubmission)
			r.Post("/submissions/{id}/status", handlers.TransitionSubmission)
			r.Delete("/submissions/{id}", handlers.DeleteSubmission)

			r.Get("/me/stats", handlers.MyStats)
			r.Get("/stats", handlers.StatsOverview)
			r.Get("/stats/users/{user_id}/submissions", handlers.MemberSubmissions)

			r.Get("/users", handlers.ListUsers)
			r.With(limiter.Middleware).Post("/users", handlers.CreateUser)

			r.Post("/newsletters", handlers.CreateNewsletter)
			r.Delete("/newsletters/{id}", handlers.DeleteNewsletter)

			r.Get("/messages", handlers.ListMessages)
			r.Post("/messages", handlers.CreateMessage)
			r.Post("/messages/{id}/read", handlers.MarkMessageRead)
			r.Delete("/messages/{id}", handlers.DeleteMessage)

			r.Get("/meetings", handlers.ListMeetings)
			r.Delete("/meetings/{id}", handlers.DeleteMeeting)
			r.Get("/meetings/{id}/details", handlers.GetMeetingDetails)
			r.Put("/meetings/{id}/details", handlers.UpsertMeetingDetails)
		})
	})

	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(authmw.RelayCORS())
		r.Use(limiter.Middleware)

		r.Post("/delete-user", relays.DeleteUser)
		r.Post("/zoom-meetings", relays.CreateMeeting)
	})

	return r
}
