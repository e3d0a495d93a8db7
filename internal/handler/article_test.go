package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penblog/penblog/internal/handler/dto"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/service"
	"github.com/penblog/penblog/internal/validation"
)

var viewer = &model.Identity{UserID: "01HVIEWER", Email: "viewer@example.com"}

func sampleArticle() *model.Article {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Article{
		ID:          "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Title:       "Hello",
		Body:        "body",
		AuthorID:    viewer.UserID,
		Author:      &model.AuthorSummary{ID: viewer.UserID, FirstName: "Vi", LastName: "Ewer", Email: viewer.Email},
		State:       model.ArticleStateDraft,
		Tags:        []string{"a", "b"},
		ReadingTime: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func decodeError(t *testing.T, body string) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestArticleHandler_Create(t *testing.T) {
	t.Parallel()

	svc := &stubArticles{article: sampleArticle()}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodPost, "/api/articles", "/api/articles",
		`{"title":"Hello","body":"body","tags":"a, b"}`, viewer, h.Create)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"a", "b"}, svc.createIn.Tags)
	assert.Equal(t, viewer, svc.createIn.Author)

	var resp dto.ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "draft", resp.State)
	assert.Equal(t, "Vi", resp.Author.FirstName)
	assert.Equal(t, 0, int(resp.ReadCount))
}

func TestArticleHandler_CreateBadBodies(t *testing.T) {
	t.Parallel()

	h := NewArticleHandler(&stubArticles{article: sampleArticle()}, discardLogger())

	rec := request(http.MethodPost, "/api/articles", "/api/articles", `{"title":`, viewer, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeError(t, rec.Body.String()).Code)

	rec = request(http.MethodPost, "/api/articles", "/api/articles", `{"title":"t","body":"b","tags":7}`, viewer, h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec.Body.String())
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, resp.Fields, "tags")
}

func TestArticleHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fmt.Errorf("%w: %w", service.ErrValidation, validation.Single("title", "title is required")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid id", service.ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
		{"invalid state", service.ErrInvalidState, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid sort", fmt.Errorf("%w: -nope", service.ErrInvalidSort), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"state requires auth", service.ErrStateRequiresAuth, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not published", service.ErrArticleNotPublished, http.StatusForbidden, "FORBIDDEN"},
		{"not found", service.ErrArticleNotFound, http.StatusNotFound, "ARTICLE_NOT_FOUND"},
		{"title taken", service.ErrTitleExists, http.StatusConflict, "TITLE_TAKEN"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewArticleHandler(&stubArticles{err: tt.err}, discardLogger())
			rec := request(http.MethodGet, "/api/articles/{id}", "/api/articles/01HX", "", nil, h.Get)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec.Body.String())
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotContains(t, resp.Error, "pq:")
		})
	}
}

func TestArticleHandler_ValidationFields(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %w", service.ErrValidation, &validation.FieldErrors{Fields: map[string]string{
		"title": "title is required",
		"body":  "body is required",
	}})
	h := NewArticleHandler(&stubArticles{err: err}, discardLogger())

	rec := request(http.MethodPost, "/api/articles", "/api/articles", `{}`, viewer, h.Create)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec.Body.String())
	assert.Equal(t, "body is required; title is required", resp.Error)
	assert.Equal(t, "title is required", resp.Fields["title"])
}

func TestArticleHandler_ListParsesQuery(t *testing.T) {
	t.Parallel()

	svc := &stubArticles{list: &service.ListArticlesOutput{
		Page: 2, Limit: 5, Total: 11, Articles: []*model.Article{sampleArticle()},
	}}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodGet, "/api/articles",
		"/api/articles?page=2&limit=5&state=published&search=go&sort=-read_count", "", viewer, h.List)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, svc.listIn.Page)
	assert.Equal(t, 5, svc.listIn.Limit)
	assert.Equal(t, "published", svc.listIn.State)
	assert.Equal(t, "go", svc.listIn.Search)
	assert.Equal(t, "-read_count", svc.listIn.Sort)
	assert.Equal(t, viewer, svc.listIn.Viewer)

	var resp dto.ArticleListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, int64(11), resp.Total)
	assert.Len(t, resp.Results, 1)
}

func TestArticleHandler_ListMalformedPaging(t *testing.T) {
	t.Parallel()

	svc := &stubArticles{list: &service.ListArticlesOutput{Page: 1, Limit: 20, Articles: []*model.Article{}}}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodGet, "/api/articles", "/api/articles?page=abc&limit=-4", "", nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.listIn.Page)
	assert.Equal(t, -4, svc.listIn.Limit)
	assert.Nil(t, svc.listIn.Viewer)
	assert.True(t, strings.Contains(rec.Body.String(), `"results":[]`))
}

func TestArticleHandler_GetPassesViewerAndID(t *testing.T) {
	t.Parallel()

	svc := &stubArticles{article: sampleArticle()}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodGet, "/api/articles/{id}", "/api/articles/01HZZZZZZZZZZZZZZZZZZZZZZZ", "", viewer, h.Get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", svc.id)
	assert.Equal(t, viewer, svc.viewer)
}

func TestArticleHandler_UpdateTagsPresence(t *testing.T) {
	t.Parallel()

	svc := &stubArticles{article: sampleArticle()}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodPatch, "/api/articles/{id}", "/api/articles/01HX", `{"title":"New"}`, viewer, h.Update)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updateIn.Title)
	assert.Equal(t, "New", *svc.updateIn.Title)
	assert.False(t, svc.updateIn.SetTags)
	assert.Nil(t, svc.updateIn.Body)

	rec = request(http.MethodPatch, "/api/articles/{id}", "/api/articles/01HX", `{"tags":"x,y","state":"published","author":"someone"}`, viewer, h.Update)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.updateIn.SetTags)
	assert.Equal(t, []string{"x", "y"}, svc.updateIn.Tags)
}

func TestArticleHandler_PublishAndDelete(t *testing.T) {
	t.Parallel()

	published := sampleArticle()
	published.State = model.ArticleStatePublished
	svc := &stubArticles{article: published}
	h := NewArticleHandler(svc, discardLogger())

	rec := request(http.MethodPatch, "/api/articles/{id}/publish", "/api/articles/01HX/publish", "", viewer, h.Publish)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"published"`)
	assert.Equal(t, "01HX", svc.id)

	rec = request(http.MethodDelete, "/api/articles/{id}", "/api/articles/01HX", "", viewer, h.Delete)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Deleted"}`, rec.Body.String())
}
