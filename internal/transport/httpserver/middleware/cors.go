package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// NewCORS allows the portal front-end origins on the JSON API.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}

// RelayCORS answers any origin with the header set supabase-js sends.
func RelayCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{
			"authorization", "x-client-info", "apikey", "content-type",
			"x-supabase-client-platform", "x-supabase-client-platform-version",
			"x-supabase-client-runtime", "x-supabase-client-runtime-version",
		},
		MaxAge: 86400,
	})
}
