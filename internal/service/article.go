package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/penblog/penblog/internal/content"
	"github.com/penblog/penblog/internal/metrics"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/policy"
	"github.com/penblog/penblog/internal/repository"
	"github.com/penblog/penblog/internal/validation"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ArticleService handles article business logic.
type ArticleService struct {
	articles  ArticleStore
	users     UserStore
	validate  *validation.Validator
	sanitizer *content.Sanitizer
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewArticleService creates a new ArticleService.
func NewArticleService(articles ArticleStore, users UserStore, recorder metrics.Recorder) *ArticleService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ArticleService{
		articles:  articles,
		users:     users,
		validate:  validation.New(),
		sanitizer: content.NewSanitizer(),
		metrics:   recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateArticleInput defines input for creating an article.
type CreateArticleInput struct {
	Author      *model.Identity
	Title       string
	Description string
	Body        string
	Tags        []string
}

// createFields is the sanitized create payload checked by the validator.
type createFields struct {
	Title string `json:"title" validate:"notblank,max=255"`
	Body  string `json:"body" validate:"notblank"`
}

// CreateArticle stores a new draft owned by the caller.
func (s *ArticleService) CreateArticle(ctx context.Context, input CreateArticleInput) (*model.Article, error) {
	if input.Author == nil {
		return nil, ErrUnauthorized
	}

	fields := createFields{
		Title: s.sanitizer.Text(input.Title),
		Body:  input.Body,
	}
	if err := s.validate.Struct(fields); err != nil {
		return nil, validationError(err)
	}

	author, err := s.users.GetUserByID(ctx, input.Author.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	if err := s.ensureTitleFree(ctx, fields.Title, ""); err != nil {
		return nil, err
	}

	article := model.NewArticle(
		newID(),
		author.ID,
		fields.Title,
		s.sanitizer.Text(input.Description),
		fields.Body,
		s.sanitizer.Tags(input.Tags),
		s.now(),
	)

	if err := s.articles.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, repository.ErrTitleExists) {
			return nil, ErrTitleExists
		}
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	summary := author.Summary()
	summary.Bio = ""
	article.Author = summary

	s.metrics.IncArticleCreated()

	return article, nil
}

// ListArticlesInput defines input for listing articles.
// Zero or negative Page and Limit fall back to defaults.
type ListArticlesInput struct {
	Viewer *model.Identity
	Page   int
	Limit  int
	State  string
	Search string
	Sort   string
}

// ListArticlesOutput is one page of a listing.
type ListArticlesOutput struct {
	Page     int
	Limit    int
	Total    int64
	Articles []*model.Article
}

// ListArticles lists articles visible to the viewer.
func (s *ArticleService) ListArticles(ctx context.Context, input ListArticlesInput) (*ListArticlesOutput, error) {
	scope, err := policy.ListScope(input.Viewer, input.State)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, scope, input)
}

// ListMyArticles lists the caller's own articles. Search is ignored.
func (s *ArticleService) ListMyArticles(ctx context.Context, input ListArticlesInput) (*ListArticlesOutput, error) {
	if input.Viewer == nil {
		return nil, ErrUnauthorized
	}
	scope, err := policy.OwnListScope(input.Viewer, input.State)
	if err != nil {
		return nil, err
	}
	input.Search = ""
	return s.list(ctx, scope, input)
}

func (s *ArticleService) list(ctx context.Context, scope policy.Scope, input ListArticlesInput) (*ListArticlesOutput, error) {
	sort, err := repository.ParseSort(input.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSort, input.Sort)
	}

	page, limit := NormalizePage(input.Page, input.Limit)

	start := time.Now()
	result, err := s.articles.ListArticles(ctx, repository.ArticleListQuery{
		Filter: repository.ArticleFilter{
			State:     scope.State,
			AuthorID:  scope.AuthorID,
			VisibleTo: scope.VisibleTo,
			Search:    input.Search,
		},
		Sort:   sort,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	s.metrics.ObserveListDuration(result.Strategy, time.Since(start))

	return &ListArticlesOutput{
		Page:     page,
		Limit:    limit,
		Total:    result.Total,
		Articles: result.Articles,
	}, nil
}

// NormalizePage clamps pagination parameters. Page is capped so that
// (page-1)*limit cannot overflow.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// GetArticle returns one article, counting the read when the viewer is
// not its author.
func (s *ArticleService) GetArticle(ctx context.Context, viewer *model.Identity, id string) (*model.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := policy.ReadDecision(viewer, article.State, article.AuthorID)
	if !decision.Allowed() {
		return nil, ErrArticleNotPublished
	}
	if decision == policy.AllowReadIncrement {
		count, err := s.articles.IncrementReadCount(ctx, article.ID)
		if err != nil {
			if errors.Is(err, repository.ErrArticleNotFound) {
				return nil, ErrArticleNotFound
			}
			return nil, fmt.Errorf("failed to count read: %w", err)
		}
		article.ReadCount = count
		s.metrics.IncArticleRead()
	}

	return article, nil
}

// UpdateArticleInput defines input for updating an article.
// Nil fields are left unchanged.
type UpdateArticleInput struct {
	Viewer      *model.Identity
	ID          string
	Title       *string
	Description *string
	Body        *string
	Tags        []string
	SetTags     bool
}

// UpdateArticle merges supplied fields into an owned article.
func (s *ArticleService) UpdateArticle(ctx context.Context, input UpdateArticleInput) (*model.Article, error) {
	article, err := s.loadOwned(ctx, input.Viewer, input.ID)
	if err != nil {
		return nil, err
	}

	changes, err := s.sanitizeChanges(input)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil && *changes.Title != article.Title {
		if err := s.ensureTitleFree(ctx, *changes.Title, article.ID); err != nil {
			return nil, err
		}
	}

	article.ApplyUpdate(changes, s.now())

	if err := s.articles.UpdateArticle(ctx, article); err != nil {
		switch {
		case errors.Is(err, repository.ErrArticleNotFound):
			return nil, ErrArticleNotFound
		case errors.Is(err, repository.ErrTitleExists):
			return nil, ErrTitleExists
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	s.metrics.IncArticleUpdated()

	return stripBio(article), nil
}

func (s *ArticleService) sanitizeChanges(input UpdateArticleInput) (model.ArticleChanges, error) {
	var changes model.ArticleChanges
	fields := make(map[string]string)

	if input.Title != nil {
		title := s.sanitizer.Text(*input.Title)
		if title == "" {
			fields["title"] = "title is required"
		}
		changes.Title = &title
	}
	if input.Body != nil {
		if strings.TrimSpace(*input.Body) == "" {
			fields["body"] = "body is required"
		}
		body := *input.Body
		changes.Body = &body
	}
	if input.Description != nil {
		description := s.sanitizer.Text(*input.Description)
		changes.Description = &description
	}
	if input.SetTags {
		changes.Tags = s.sanitizer.Tags(input.Tags)
		changes.SetTags = true
	}

	if len(fields) > 0 {
		return changes, validationError(&validation.FieldErrors{Fields: fields})
	}
	return changes, nil
}

// PublishArticle marks an owned article as published. Publishing twice
// is not an error.
func (s *ArticleService) PublishArticle(ctx context.Context, viewer *model.Identity, id string) (*model.Article, error) {
	article, err := s.loadOwned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.articles.PublishArticle(ctx, article.ID, now); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to publish article: %w", err)
	}
	article.Publish(now)

	s.metrics.IncArticlePublished()

	return stripBio(article), nil
}

// DeleteArticle removes an owned article.
func (s *ArticleService) DeleteArticle(ctx context.Context, viewer *model.Identity, id string) error {
	article, err := s.loadOwned(ctx, viewer, id)
	if err != nil {
		return err
	}

	if err := s.articles.DeleteArticle(ctx, article.ID); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("failed to delete article: %w", err)
	}

	s.metrics.IncArticleDeleted()

	return nil
}

func (s *ArticleService) load(ctx context.Context, id string) (*model.Article, error) {
	if !validation.IsULID(id) {
		return nil, ErrInvalidID
	}

	article, err := s.articles.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// loadOwned checks the id, then existence, then ownership, in that order.
func (s *ArticleService) loadOwned(ctx context.Context, viewer *model.Identity, id string) (*model.Article, error) {
	if viewer == nil {
		return nil, ErrUnauthorized
	}

	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.CanMutate(viewer, article.AuthorID); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) ensureTitleFree(ctx context.Context, title, exceptID string) error {
	taken, err := s.articles.TitleTaken(ctx, title, exceptID)
	if err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if taken {
		return ErrTitleExists
	}
	return nil
}

func stripBio(article *model.Article) *model.Article {
	if article.Author != nil {
		article.Author.Bio = ""
	}
	return article
}
