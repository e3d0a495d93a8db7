package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/cache"
	"github.com/penblog/penblog/internal/content"
	"github.com/penblog/penblog/internal/metrics"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/repository"
	"github.com/penblog/penblog/internal/validation"
)

// AuthService handles signup, login and token resolution.
type AuthService struct {
	users     UserStore
	tokens    TokenService
	cache     IdentityCache
	cacheTTL  time.Duration
	validate  *validation.Validator
	sanitizer *content.Sanitizer
	metrics   metrics.Recorder
	now       func() time.Time
}

// AuthServiceConfig wires the collaborators of an AuthService.
// Cache may be nil; CacheTTL defaults to cache.DefaultIdentityTTL.
type AuthServiceConfig struct {
	Users    UserStore
	Tokens   TokenService
	Cache    IdentityCache
	CacheTTL time.Duration
	Metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultIdentityTTL
	}
	return &AuthService{
		users:     cfg.Users,
		tokens:    cfg.Tokens,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		validate:  validation.New(),
		sanitizer: content.NewSanitizer(),
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	FirstName string `json:"first_name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" validate:"notblank,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,max=1024"`
	Bio       string `json:"bio" validate:"max=2000"`
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is a freshly issued token and the account it belongs to.
type AuthResult struct {
	Token string
	User  *model.User
}

// Signup registers a user and returns a token for them.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	input.FirstName = s.sanitizer.Text(input.FirstName)
	input.LastName = s.sanitizer.Text(input.LastName)
	input.Email = normalizeEmail(input.Email)
	input.Bio = s.sanitizer.Text(input.Bio)

	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           newID(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Bio:          input.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncSignup()

	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and returns a token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.BurnPasswordCheck(input.Password)
			s.metrics.IncLogin("failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin("success")

	return &AuthResult{Token: token, User: user}, nil
}

// ResolveIdentity verifies a bearer token and returns its user.
// Identities are cached by token hash for at most the token's remaining life.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*model.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	hash := auth.QuickHash(token)
	if s.cache != nil {
		if cached, err := s.cache.GetIdentity(ctx, hash); err == nil && cached != nil {
			return cached, nil
		}
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	identity := user.Identity()
	if s.cache != nil {
		ttl := min(s.cacheTTL, claims.Remaining(s.now()))
		_ = s.cache.SetIdentity(ctx, hash, identity, ttl)
	}

	return identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
