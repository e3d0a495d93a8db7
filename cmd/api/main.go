// Package main is the entrypoint for the penblog API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/docgen"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/cache"
	"github.com/penblog/penblog/internal/config"
	"github.com/penblog/penblog/internal/handler"
	"github.com/penblog/penblog/internal/metrics"
	"github.com/penblog/penblog/internal/repository"
	"github.com/penblog/penblog/internal/server"
	"github.com/penblog/penblog/internal/service"
)

func main() {
	routes := flag.Bool("routes", false, "print the route table as JSON and exit")
	flag.Parse()

	if *routes {
		fmt.Println(docgen.JSONRoutesDoc(setupRouter(routeOnlyDeps())))
		return
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenService(cfg.TokenConfig())
	if err != nil {
		logger.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	recorder := metrics.NewPrometheus()

	articleService := service.NewArticleService(repo, repo, recorder)
	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:    repo,
		Tokens:   tokens,
		Cache:    cacheClient,
		CacheTTL: cfg.IdentityCacheTTL,
		Metrics:  recorder,
	})

	r := setupRouter(routerDeps{
		cfg:            cfg,
		logger:         logger,
		recorder:       recorder,
		metricsHandler: recorder.Handler(),
		resolver:       authService,
		limiter:        cacheClient,
		home:           handler.New(),
		health:         handler.NewHealthHandler(repo, cacheClient),
		articles:       handler.NewArticleHandler(articleService, logger),
		auth:           handler.NewAuthHandler(authService, logger),
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", tokens.TTL().String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// routeOnlyDeps builds enough of the router to describe it.
// No handler is ever invoked.
func routeOnlyDeps() routerDeps {
	return routerDeps{
		cfg:            &config.Config{},
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder:       metrics.NewNoop(),
		metricsHandler: metrics.NewPrometheus().Handler(),
		home:           handler.New(),
		health:         handler.NewHealthHandler(nil, nil),
		articles:       handler.NewArticleHandler(nil, nil),
		auth:           handler.NewAuthHandler(nil, nil),
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL keeps the username of a connection URL and drops its password.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
