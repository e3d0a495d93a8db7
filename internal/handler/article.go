package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/handler/dto"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/service"
)

// ArticleService is the article logic the article handler needs.
type ArticleService interface {
	CreateArticle(ctx context.Context, input service.CreateArticleInput) (*model.Article, error)
	ListArticles(ctx context.Context, input service.ListArticlesInput) (*service.ListArticlesOutput, error)
	ListMyArticles(ctx context.Context, input service.ListArticlesInput) (*service.ListArticlesOutput, error)
	GetArticle(ctx context.Context, viewer *model.Identity, id string) (*model.Article, error)
	UpdateArticle(ctx context.Context, input service.UpdateArticleInput) (*model.Article, error)
	PublishArticle(ctx context.Context, viewer *model.Identity, id string) (*model.Article, error)
	DeleteArticle(ctx context.Context, viewer *model.Identity, id string) error
}

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	svc    ArticleService
	logger *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{svc: svc, logger: logger}
}

// Create handles POST /api/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	article, err := h.svc.CreateArticle(r.Context(), service.CreateArticleInput{
		Author:      auth.IdentityFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Tags:        req.Tags,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("article_created",
		"article_id", article.ID,
		"author_id", article.AuthorID,
		"reading_time", article.ReadingTime,
	)

	writeJSON(w, r, http.StatusCreated, dto.ToArticleResponse(article))
}

// List handles GET /api/articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListArticles(r.Context(), listInput(r))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ToArticleListResponse(result.Page, result.Limit, result.Total, result.Articles))
}

// ListMine handles GET /api/articles/me.
func (h *ArticleHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListMyArticles(r.Context(), listInput(r))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ToArticleListResponse(result.Page, result.Limit, result.Total, result.Articles))
}

// listInput reads listing query parameters. Malformed page and limit
// values become zero and fall back to defaults in the service.
func listInput(r *http.Request) service.ListArticlesInput {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	return service.ListArticlesInput{
		Viewer: auth.IdentityFromContext(r.Context()),
		Page:   page,
		Limit:  limit,
		State:  query.Get("state"),
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
	}
}

// Get handles GET /api/articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.GetArticle(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ToArticleResponse(article))
}

// Update handles PATCH /api/articles/{id}.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.UpdateArticleInput{
		Viewer:      auth.IdentityFromContext(r.Context()),
		ID:          chi.URLParam(r, "id"),
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
		input.SetTags = true
	}

	article, err := h.svc.UpdateArticle(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("article_updated", "article_id", article.ID)

	writeJSON(w, r, http.StatusOK, dto.ToArticleResponse(article))
}

// Publish handles PATCH /api/articles/{id}/publish.
func (h *ArticleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.PublishArticle(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("article_published", "article_id", article.ID)

	writeJSON(w, r, http.StatusOK, dto.ToArticleResponse(article))
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteArticle(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("article_deleted", "article_id", id)

	writeJSON(w, r, http.StatusOK, dto.MessageResponse{Message: "Deleted"})
}
