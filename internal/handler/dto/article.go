// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/penblog/penblog/internal/content"
	"github.com/penblog/penblog/internal/model"
)

// ErrInvalidTags is returned when tags are neither a string nor a list of strings.
var ErrInvalidTags = errors.New("tags must be an array of strings or a comma-separated string")

// Tags accepts either a JSON array of strings or one comma-separated string.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return ErrInvalidTags
		}
		*t = content.SplitTags(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return ErrInvalidTags
	}
	*t = list
	return nil
}

// CreateArticleRequest represents the request body for creating an article.
type CreateArticleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body"`
	Tags        Tags   `json:"tags,omitempty"`
}

// UpdateArticleRequest represents the request body for updating an article.
// Absent fields are left unchanged. Author and state cannot be changed here.
type UpdateArticleRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Body        *string `json:"body,omitempty"`
	Tags        *Tags   `json:"tags,omitempty"`
}

// AuthorResponse is the author summary embedded in articles.
type AuthorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
}

// ArticleResponse represents an article in API responses.
type ArticleResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Body        string          `json:"body"`
	Author      *AuthorResponse `json:"author"`
	State       string          `json:"state"`
	Tags        []string        `json:"tags"`
	ReadCount   int64           `json:"read_count"`
	ReadingTime int             `json:"reading_time"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ArticleListResponse is one page of articles.
type ArticleListResponse struct {
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Total   int64             `json:"total"`
	Results []ArticleResponse `json:"results"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToArticleResponse converts an Article model to its response DTO.
func ToArticleResponse(article *model.Article) ArticleResponse {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	resp := ArticleResponse{
		ID:          article.ID,
		Title:       article.Title,
		Description: article.Description,
		Body:        article.Body,
		State:       string(article.State),
		Tags:        tags,
		ReadCount:   article.ReadCount,
		ReadingTime: article.ReadingTime,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
	}

	if a := article.Author; a != nil {
		resp.Author = &AuthorResponse{
			ID:        a.ID,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Bio:       a.Bio,
		}
	} else {
		resp.Author = &AuthorResponse{ID: article.AuthorID}
	}

	return resp
}

// ToArticleListResponse converts a page of articles.
func ToArticleListResponse(page, limit int, total int64, articles []*model.Article) ArticleListResponse {
	results := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		results = append(results, ToArticleResponse(a))
	}
	return ArticleListResponse{Page: page, Limit: limit, Total: total, Results: results}
}
