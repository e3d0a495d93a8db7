package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/penblog/penblog/internal/model"
)

// ErrInvalidSort is returned for sort fields outside the whitelist.
var ErrInvalidSort = errors.New("invalid sort field")

// ArticleFilter narrows a listing. Empty fields do not filter.
type ArticleFilter struct {
	State     model.ArticleState
	AuthorID  string
	VisibleTo string // published articles or any article by this user
	Search    string
}

// ArticleSort is a whitelisted ORDER BY column and direction.
type ArticleSort struct {
	Column string
	Desc   bool
}

// DefaultArticleSort is newest first.
var DefaultArticleSort = ArticleSort{Column: "a.created_at", Desc: true}

// sortColumns maps accepted sort keys to SQL columns.
var sortColumns = map[string]string{
	"created_at":   "a.created_at",
	"createdAt":    "a.created_at",
	"updated_at":   "a.updated_at",
	"updatedAt":    "a.updated_at",
	"title":        "a.title",
	"read_count":   "a.read_count",
	"reading_time": "a.reading_time",
	"state":        "a.state",
}

// ParseSort parses "field" (ascending) or "-field" (descending).
// An empty string yields DefaultArticleSort.
func ParseSort(raw string) (ArticleSort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultArticleSort, nil
	}

	desc := strings.HasPrefix(raw, "-")
	column, ok := sortColumns[strings.TrimPrefix(raw, "-")]
	if !ok {
		return ArticleSort{}, fmt.Errorf("%w: %s", ErrInvalidSort, raw)
	}

	return ArticleSort{Column: column, Desc: desc}, nil
}

// orderBy renders the ORDER BY clause with an id tiebreaker.
func (s ArticleSort) orderBy() string {
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, a.id %s", s.Column, dir, dir)
}

// ArticleListQuery is a fully resolved listing request.
type ArticleListQuery struct {
	Filter ArticleFilter
	Sort   ArticleSort
	Limit  int
	Offset int
}

// ArticlePage is one page of a listing plus the total match count.
type ArticlePage struct {
	Articles []*model.Article
	Total    int64
	Strategy string
}

// ListStrategy builds the count and page queries for a listing.
// Both strategies share filtering, ordering and pagination and differ
// only in how the author join and text predicate are applied.
type ListStrategy interface {
	Name() string
	countSQL(where string) string
	selectSQL(where string) string
	applySearch(b *whereBuilder, term string)
}

// StrategyFor picks the search strategy when a term is present.
func StrategyFor(search string) ListStrategy {
	if strings.TrimSpace(search) != "" {
		return searchStrategy{}
	}
	return directStrategy{}
}

// directStrategy counts on articles alone and joins users only to
// populate the author of each returned row.
type directStrategy struct{}

func (directStrategy) Name() string { return "direct" }

func (directStrategy) countSQL(where string) string {
	return `SELECT COUNT(*) FROM articles a` + where
}

func (directStrategy) selectSQL(where string) string {
	return `SELECT ` + articleColumns + `, ` + authorColumns + `
		FROM articles a
		JOIN users u ON u.id = a.author_id` + where
}

func (directStrategy) applySearch(*whereBuilder, string) {}

// searchStrategy joins users before matching so author fields are
// searchable, and counts the joined set.
type searchStrategy struct{}

func (searchStrategy) Name() string { return "search" }

func (searchStrategy) countSQL(where string) string {
	return `SELECT COUNT(*) FROM articles a JOIN users u ON u.id = a.author_id` + where
}

func (s searchStrategy) selectSQL(where string) string {
	return directStrategy{}.selectSQL(where)
}

func (searchStrategy) applySearch(b *whereBuilder, term string) {
	p := b.arg(likePattern(term))
	b.add(fmt.Sprintf(`(a.title ILIKE %[1]s
			OR a.description ILIKE %[1]s
			OR EXISTS (SELECT 1 FROM unnest(a.tags) AS t(tag) WHERE t.tag ILIKE %[1]s)
			OR u.first_name ILIKE %[1]s
			OR u.last_name ILIKE %[1]s
			OR u.email ILIKE %[1]s)`, p))
}

// whereBuilder accumulates AND-ed predicates and positional args.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

func buildArticleWhere(strategy ListStrategy, filter ArticleFilter) *whereBuilder {
	b := &whereBuilder{}

	if filter.State != "" {
		b.add("a.state = " + b.arg(string(filter.State)))
	}
	if filter.AuthorID != "" {
		b.add("a.author_id = " + b.arg(filter.AuthorID))
	}
	if filter.VisibleTo != "" {
		b.add("(a.state = 'published' OR a.author_id = " + b.arg(filter.VisibleTo) + ")")
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		strategy.applySearch(b, term)
	}

	return b
}

// likePattern wraps term in % after escaping LIKE metacharacters.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// ListArticles returns one page of articles and the total match count.
func (r *Repository) ListArticles(ctx context.Context, q ArticleListQuery) (*ArticlePage, error) {
	strategy := StrategyFor(q.Filter.Search)
	b := buildArticleWhere(strategy, q.Filter)
	where := b.sql()

	var total int64
	if err := r.pool.QueryRow(ctx, strategy.countSQL(where), b.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	page := &ArticlePage{Articles: []*model.Article{}, Total: total, Strategy: strategy.Name()}
	if total == 0 || int64(q.Offset) >= total {
		return page, nil
	}

	sort := q.Sort
	if sort.Column == "" {
		sort = DefaultArticleSort
	}

	args := append([]any{}, b.args...)
	query := strategy.selectSQL(where) + sort.orderBy() +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		page.Articles = append(page.Articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return page, nil
}
