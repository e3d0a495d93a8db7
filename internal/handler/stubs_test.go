package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubArticles records its inputs and returns canned results.
type stubArticles struct {
	article *model.Article
	list    *service.ListArticlesOutput
	err     error

	createIn service.CreateArticleInput
	listIn   service.ListArticlesInput
	updateIn service.UpdateArticleInput
	viewer   *model.Identity
	id       string
}

func (s *stubArticles) CreateArticle(_ context.Context, in service.CreateArticleInput) (*model.Article, error) {
	s.createIn = in
	return s.article, s.err
}

func (s *stubArticles) ListArticles(_ context.Context, in service.ListArticlesInput) (*service.ListArticlesOutput, error) {
	s.listIn = in
	return s.list, s.err
}

func (s *stubArticles) ListMyArticles(_ context.Context, in service.ListArticlesInput) (*service.ListArticlesOutput, error) {
	s.listIn = in
	return s.list, s.err
}

func (s *stubArticles) GetArticle(_ context.Context, viewer *model.Identity, id string) (*model.Article, error) {
	s.viewer, s.id = viewer, id
	return s.article, s.err
}

func (s *stubArticles) UpdateArticle(_ context.Context, in service.UpdateArticleInput) (*model.Article, error) {
	s.updateIn = in
	return s.article, s.err
}

func (s *stubArticles) PublishArticle(_ context.Context, viewer *model.Identity, id string) (*model.Article, error) {
	s.viewer, s.id = viewer, id
	return s.article, s.err
}

func (s *stubArticles) DeleteArticle(_ context.Context, viewer *model.Identity, id string) error {
	s.viewer, s.id = viewer, id
	return s.err
}

// stubAuth returns canned auth results.
type stubAuth struct {
	result   *service.AuthResult
	err      error
	signupIn service.SignupInput
	loginIn  service.LoginInput
}

func (s *stubAuth) Signup(_ context.Context, in service.SignupInput) (*service.AuthResult, error) {
	s.signupIn = in
	return s.result, s.err
}

func (s *stubAuth) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	s.loginIn = in
	return s.result, s.err
}

// request builds a request routed through chi so URL params resolve.
func request(method, pattern, target, body string, identity *model.Identity, h http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if identity != nil {
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
