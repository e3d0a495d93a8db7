package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/cache"
)

// RateLimiter checks token buckets.
type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, perMinute, burst int) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, scope, ip string, perMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for one rate-limited route group.
type RateLimitConfig struct {
	Logger    *slog.Logger
	Limiter   RateLimiter
	Enabled   bool
	Scope     string // bucket namespace for anonymous callers, e.g. "auth"
	PerMinute int
	Burst     int
}

// RateLimit limits authenticated callers per user and anonymous callers
// per client IP. Apply it after Authenticate so the identity is known.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.PerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			var (
				result  *cache.RateLimitResult
				err     error
				subject string
			)
			if userID := auth.UserIDFromContext(r.Context()); userID != "" {
				subject = "user"
				result, err = cfg.Limiter.CheckUserRateLimit(r.Context(), userID, cfg.PerMinute, cfg.Burst)
			} else {
				subject = "ip"
				result, err = cfg.Limiter.CheckIPRateLimit(r.Context(), cfg.Scope, clientIP(r), cfg.PerMinute, cfg.Burst)
			}
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", cfg.Scope),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.PerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				retry := retrySeconds(result.RetryAfter)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", cfg.Scope),
					slog.String("subject", subject),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retry),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED",
					fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func retrySeconds(d time.Duration) int {
	s := int(d.Seconds())
	if s < 1 {
		return 1
	}
	return s
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already applied proxy headers by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
