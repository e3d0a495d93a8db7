package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/penblog/penblog/internal/config"
	"github.com/penblog/penblog/internal/handler"
	"github.com/penblog/penblog/internal/metrics"
	"github.com/penblog/penblog/internal/middleware"
)

// routerDeps is everything setupRouter wires together.
type routerDeps struct {
	cfg            *config.Config
	logger         *slog.Logger
	recorder       metrics.Recorder
	metricsHandler http.Handler
	resolver       middleware.IdentityResolver
	limiter        middleware.RateLimiter

	home     *handler.Handler
	health   *handler.HealthHandler
	articles *handler.ArticleHandler
	auth     *handler.AuthHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Metrics(d.recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: d.cfg.GetCORSAllowedOrigins()}))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))
	r.Use(middleware.Authenticate(middleware.AuthConfig{Logger: d.logger, Resolver: d.resolver}))

	r.Get("/", d.home.Hello)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.metricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Logger:    d.logger,
			Limiter:   d.limiter,
			Enabled:   d.cfg.RateLimitEnabled && d.limiter != nil,
			Scope:     "auth",
			PerMinute: d.cfg.RateLimitAuthPerMinute,
			Burst:     d.cfg.RateLimitAuthBurst,
		}))

		r.Post("/signup", d.auth.Signup)
		r.Post("/login", d.auth.Login)
	})

	r.Route("/api/articles", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Logger:    d.logger,
			Limiter:   d.limiter,
			Enabled:   d.cfg.RateLimitEnabled && d.limiter != nil,
			Scope:     "api",
			PerMinute: d.cfg.RateLimitAPIPerMinute,
			Burst:     d.cfg.RateLimitAPIBurst,
		}))

		r.Get("/", d.articles.List)
		r.Get("/{id}", d.articles.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/", d.articles.Create)
			r.Get("/me", d.articles.ListMine)
			r.Patch("/{id}", d.articles.Update)
			r.Patch("/{id}/publish", d.articles.Publish)
			r.Delete("/{id}", d.articles.Delete)
		})
	})

	r.NotFound(d.home.NotFound)
	r.MethodNotAllowed(d.home.MethodNotAllowed)

	return r
}
