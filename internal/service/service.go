// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/policy"
	"github.com/penblog/penblog/internal/repository"
	"github.com/penblog/penblog/internal/validation"
)

// Service errors.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidID           = errors.New("invalid article id")
	ErrInvalidSort         = errors.New("invalid sort field")
	ErrUnauthorized        = errors.New("authentication required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleNotPublished = errors.New("article is not published")
	ErrTitleExists         = errors.New("an article with this title already exists")
	ErrEmailExists         = errors.New("email is already registered")

	ErrForbidden         = policy.ErrForbidden
	ErrInvalidState      = policy.ErrInvalidState
	ErrStateRequiresAuth = policy.ErrStateRequiresAuth
)

// ArticleStore is the persistence the article service needs.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	GetArticleByID(ctx context.Context, id string) (*model.Article, error)
	TitleTaken(ctx context.Context, title, exceptID string) (bool, error)
	UpdateArticle(ctx context.Context, article *model.Article) error
	PublishArticle(ctx context.Context, id string, at time.Time) error
	DeleteArticle(ctx context.Context, id string) error
	IncrementReadCount(ctx context.Context, id string) (int64, error)
	ListArticles(ctx context.Context, q repository.ArticleListQuery) (*repository.ArticlePage, error)
}

// UserStore is the persistence the auth and article services need.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// IdentityCache caches resolved token identities.
type IdentityCache interface {
	GetIdentity(ctx context.Context, tokenHash string) (*model.Identity, error)
	SetIdentity(ctx context.Context, tokenHash string, identity *model.Identity, ttl time.Duration) error
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(identity *model.Identity) (string, error)
	Verify(raw string) (*auth.Claims, error)
}

// validationError joins ErrValidation with per-field detail so handlers
// can match either.
func validationError(err error) error {
	var fe *validation.FieldErrors
	if errors.As(err, &fe) {
		return fmt.Errorf("%w: %w", ErrValidation, fe)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func newID() string {
	return ulid.Make().String()
}
