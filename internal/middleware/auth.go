package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/service"
)

// IdentityResolver turns a bearer token into an identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver IdentityResolver
}

// Authenticate resolves an optional bearer token into the request context.
// Missing or invalid tokens leave the request anonymous; RequireAuth
// decides whether that is acceptable. Resolver failures other than a bad
// token are answered with 500.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := cfg.Resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					cfg.Logger.Error("identity resolution failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
					return
				}

				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reasonFor(err)),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
// Must be applied after Authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFromContext(r.Context()) == nil {
			writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// present is true whenever an Authorization header was sent.
func bearerToken(r *http.Request) (token string, present bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(value), true
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown_user"
	}
}
