package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const corsPreflightMaxAge = 300

var fallbackCORSOrigins = []string{"http://localhost:3000"}

// CORS lets the storefront and admin frontends call the API from the
// configured origins. Blank and duplicate entries are ignored; an empty list
// falls back to the local dev origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: normalizeOrigins(origins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", idempotencyHeader, requestIDHeader, "X-Requested-With"},
		// Clients read these to correlate logs and to tell a replay from a
		// fresh write.
		ExposedHeaders:   []string{requestIDHeader, replayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           corsPreflightMaxAge,
	}).Handler
}

func normalizeOrigins(origins []string) []string {
	seen := make(map[string]struct{}, len(origins))
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		out = append(out, origin)
	}
	if len(out) == 0 {
		return fallbackCORSOrigins
	}
	return out
}
