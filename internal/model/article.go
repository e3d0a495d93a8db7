package model

import (
	"time"

	"github.com/penblog/penblog/internal/content"
)

// ArticleState is the publication state of an article.
type ArticleState string

const (
	ArticleStateDraft     ArticleState = "draft"
	ArticleStatePublished ArticleState = "published"
)

// IsValid checks if the state is a known value.
func (s ArticleState) IsValid() bool {
	return s == ArticleStateDraft || s == ArticleStatePublished
}

// AuthorSummary is the author projection joined onto articles.
// Bio is only loaded on the single-article path.
type AuthorSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
}

// Article represents a blog post.
type Article struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Body        string         `json:"body"`
	AuthorID    string         `json:"author_id"`
	Author      *AuthorSummary `json:"author,omitempty"`
	State       ArticleState   `json:"state"`
	Tags        []string       `json:"tags"`
	ReadCount   int64          `json:"read_count"`
	ReadingTime int            `json:"reading_time"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewArticle builds a draft article owned by authorID.
// Inputs are expected to be validated already. Body is kept as given and
// reading time is computed from it.
func NewArticle(id, authorID, title, description, body string, tags []string, now time.Time) *Article {
	if tags == nil {
		tags = []string{}
	}
	return &Article{
		ID:          id,
		Title:       title,
		Description: description,
		Body:        body,
		AuthorID:    authorID,
		State:       ArticleStateDraft,
		Tags:        tags,
		ReadCount:   0,
		ReadingTime: content.ReadingTime(body),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ArticleChanges holds the owner-editable fields of an article.
// Nil fields are left untouched.
type ArticleChanges struct {
	Title       *string
	Description *string
	Body        *string
	Tags        []string
	SetTags     bool
}

// ApplyUpdate merges changes into the article.
// Reading time is recomputed whenever a body is supplied.
func (a *Article) ApplyUpdate(changes ArticleChanges, now time.Time) {
	if changes.Title != nil {
		a.Title = *changes.Title
	}
	if changes.Description != nil {
		a.Description = *changes.Description
	}
	if changes.Body != nil {
		a.Body = *changes.Body
		a.ReadingTime = content.ReadingTime(a.Body)
	}
	if changes.SetTags {
		a.Tags = changes.Tags
		if a.Tags == nil {
			a.Tags = []string{}
		}
	}
	a.UpdatedAt = now
}

// Publish moves the article to the published state.
// Publishing an already published article only refreshes UpdatedAt.
func (a *Article) Publish(now time.Time) {
	a.State = ArticleStatePublished
	a.UpdatedAt = now
}

// IsPublished returns true if the article is publicly visible.
func (a *Article) IsPublished() bool {
	return a.State == ArticleStatePublished
}
