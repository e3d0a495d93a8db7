package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or wildcards like "https://*.example.com".
	// Empty means cross-origin requests get no CORS headers.
	AllowedOrigins []string
	MaxAge         int
}

// CORS handles cross-origin requests and preflights for browser clients.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         cfg.MaxAge,
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = 86400
	}
	// go-chi/cors treats an empty list as "allow all".
	if len(cfg.AllowedOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	return cors.Handler(opts)
}
