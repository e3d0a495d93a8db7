package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/penblog/penblog/internal/model"
)

// Common errors for article repository operations.
var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleExists     = errors.New("title already exists")
)

// articleColumns are selected together with authorColumns on every read.
const articleColumns = `a.id, a.title, a.description, a.body, a.author_id, a.state, a.tags,
		a.read_count, a.reading_time, a.created_at, a.updated_at`

const authorColumns = `u.id, u.first_name, u.last_name, u.email`

// CreateArticle inserts a new article.
func (r *Repository) CreateArticle(ctx context.Context, article *model.Article) error {
	query := `
		INSERT INTO articles (id, title, description, body, author_id, state, tags, read_count, reading_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.Body,
		article.AuthorID,
		string(article.State),
		pq.Array(article.Tags),
		article.ReadCount,
		article.ReadingTime,
		article.CreatedAt,
		article.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleExists
		}
		return fmt.Errorf("failed to create article: %w", err)
	}

	return nil
}

// GetArticleByID retrieves an article with its author, including the bio.
func (r *Repository) GetArticleByID(ctx context.Context, id string) (*model.Article, error) {
	query := `
		SELECT ` + articleColumns + `, ` + authorColumns + `, u.bio
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.id = $1
	`

	var bio string
	article, err := scanArticle(r.pool.QueryRow(ctx, query, id), &bio)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article by ID: %w", err)
	}
	article.Author.Bio = bio

	return article, nil
}

// TitleTaken checks whether another article already uses title.
// exceptID excludes the article being updated; pass "" on create.
func (r *Repository) TitleTaken(ctx context.Context, title, exceptID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM articles WHERE title = $1 AND id <> $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, title, exceptID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check title existence: %w", err)
	}

	return exists, nil
}

// UpdateArticle persists the owner-editable fields of an article.
// Author, state and read count are never written here.
func (r *Repository) UpdateArticle(ctx context.Context, article *model.Article) error {
	query := `
		UPDATE articles
		SET title = $2, description = $3, body = $4, tags = $5, reading_time = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Description,
		article.Body,
		pq.Array(article.Tags),
		article.ReadingTime,
		article.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleExists
		}
		return fmt.Errorf("failed to update article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// PublishArticle sets the state to published. Repeated calls are harmless.
func (r *Repository) PublishArticle(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE articles
		SET state = 'published', updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to publish article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// DeleteArticle permanently removes an article.
func (r *Repository) DeleteArticle(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// IncrementReadCount atomically adds one read to a published article
// and returns the new count. updated_at is left alone.
func (r *Repository) IncrementReadCount(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE articles
		SET read_count = read_count + 1
		WHERE id = $1 AND state = 'published'
		RETURNING read_count
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrArticleNotFound
		}
		return 0, fmt.Errorf("failed to increment read count: %w", err)
	}

	return count, nil
}

// scanArticle scans articleColumns followed by authorColumns.
// Extra destinations are appended after the author columns.
func scanArticle(row pgx.Row, extra ...any) (*model.Article, error) {
	var (
		article model.Article
		author  model.AuthorSummary
		state   string
		tags    []string
	)

	dest := []any{
		&article.ID,
		&article.Title,
		&article.Description,
		&article.Body,
		&article.AuthorID,
		&state,
		pq.Array(&tags),
		&article.ReadCount,
		&article.ReadingTime,
		&article.CreatedAt,
		&article.UpdatedAt,
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Email,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	article.State = model.ArticleState(state)
	article.Tags = tags
	article.Author = &author

	return &article, nil
}
