package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/repository"
	"github.com/penblog/penblog/internal/service"
)

type output struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
	Reused bool   `json:"reused"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		secret      = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret")
		issuer      = flag.String("jwt-issuer", envOr("JWT_ISSUER", "penblog"), "Token issuer")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime")
		email       = flag.String("email", "author@penblog.local", "Author email")
		password    = flag.String("password", "", "Author password (required)")
		firstName   = flag.String("first-name", "Seed", "Author first name")
		lastName    = flag.String("last-name", "Author", "Author last name")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" || *secret == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL, JWT_SECRET and -password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: *secret, Issuer: *issuer, TTL: *ttl})
	if err != nil {
		fmt.Fprintln(os.Stderr, "configure tokens:", err)
		os.Exit(1)
	}

	svc := service.NewAuthService(service.AuthServiceConfig{Users: repo, Tokens: tokens})

	reused := false
	result, err := svc.Signup(ctx, service.SignupInput{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  *password,
	})
	if errors.Is(err, service.ErrEmailExists) {
		reused = true
		result, err = svc.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed author:", err)
		os.Exit(1)
	}

	out := output{
		UserID: result.User.ID,
		Email:  result.User.Email,
		Token:  result.Token,
		Reused: reused,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
