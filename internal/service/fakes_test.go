package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/penblog/penblog/internal/model"
	"github.com/penblog/penblog/internal/repository"
)

// fakeArticles is an in-memory ArticleStore.
type fakeArticles struct {
	mu        sync.Mutex
	byID      map[string]*model.Article
	authors   map[string]*model.User
	lastQuery repository.ArticleListQuery
	listErr   error
}

func newFakeArticles(users *fakeUsers) *fakeArticles {
	return &fakeArticles{byID: make(map[string]*model.Article), authors: users.byID}
}

func (f *fakeArticles) put(a *model.Article) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.byID[a.ID] = &cp
}

func (f *fakeArticles) get(id string) *model.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

func (f *fakeArticles) CreateArticle(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Title == a.Title {
			return repository.ErrTitleExists
		}
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticles) GetArticleByID(_ context.Context, id string) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrArticleNotFound
	}
	cp := *a
	if u, ok := f.authors[a.AuthorID]; ok {
		cp.Author = u.Summary()
	}
	return &cp, nil
}

func (f *fakeArticles) TitleTaken(_ context.Context, title, exceptID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if a.Title == title && a.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeArticles) UpdateArticle(_ context.Context, a *model.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.ID]; !ok {
		return repository.ErrArticleNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeArticles) PublishArticle(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrArticleNotFound
	}
	a.State = model.ArticleStatePublished
	a.UpdatedAt = at
	return nil
}

func (f *fakeArticles) DeleteArticle(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrArticleNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeArticles) IncrementReadCount(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || a.State != model.ArticleStatePublished {
		return 0, repository.ErrArticleNotFound
	}
	a.ReadCount++
	return a.ReadCount, nil
}

func (f *fakeArticles) ListArticles(_ context.Context, q repository.ArticleListQuery) (*repository.ArticlePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []*model.Article
	for _, a := range f.byID {
		if q.Filter.State != "" && a.State != q.Filter.State {
			continue
		}
		if q.Filter.AuthorID != "" && a.AuthorID != q.Filter.AuthorID {
			continue
		}
		if q.Filter.VisibleTo != "" && a.State != model.ArticleStatePublished && a.AuthorID != q.Filter.VisibleTo {
			continue
		}
		if q.Filter.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(q.Filter.Search)) {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page := &repository.ArticlePage{
		Articles: []*model.Article{},
		Total:    int64(len(matched)),
		Strategy: repository.StrategyFor(q.Filter.Search).Name(),
	}
	for i := q.Offset; i < len(matched) && i < q.Offset+q.Limit; i++ {
		page.Articles = append(page.Articles, matched[i])
	}
	return page, nil
}

// fakeUsers is an in-memory UserStore.
type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]*model.User
	lookup int
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[string]*model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookup++
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup
}

// fakeIdentityCache records identities and their TTLs.
type fakeIdentityCache struct {
	mu      sync.Mutex
	entries map[string]*model.Identity
	ttls    map[string]time.Duration
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{
		entries: make(map[string]*model.Identity),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeIdentityCache) GetIdentity(_ context.Context, hash string) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[hash], nil
}

func (f *fakeIdentityCache) SetIdentity(_ context.Context, hash string, identity *model.Identity, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl <= 0 {
		return nil
	}
	f.entries[hash] = identity
	f.ttls[hash] = ttl
	return nil
}
