package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ArticlesCreated   uint64
	ArticlesUpdated   uint64
	ArticlesPublished uint64
	ArticlesDeleted   uint64
	ArticleReads      uint64
	ListsByStrategy   map[string]uint64
	Signups           uint64
	LoginsByStatus    map[string]uint64
	Requests          uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	articlesCreated   uint64
	articlesUpdated   uint64
	articlesPublished uint64
	articlesDeleted   uint64
	articleReads      uint64
	signups           uint64
	requests          uint64

	mu     sync.Mutex
	lists  map[string]uint64
	logins map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		lists:  make(map[string]uint64),
		logins: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	lists := make(map[string]uint64, len(m.lists))
	for k, v := range m.lists {
		lists[k] = v
	}
	logins := make(map[string]uint64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		ArticlesCreated:   atomic.LoadUint64(&m.articlesCreated),
		ArticlesUpdated:   atomic.LoadUint64(&m.articlesUpdated),
		ArticlesPublished: atomic.LoadUint64(&m.articlesPublished),
		ArticlesDeleted:   atomic.LoadUint64(&m.articlesDeleted),
		ArticleReads:      atomic.LoadUint64(&m.articleReads),
		ListsByStrategy:   lists,
		Signups:           atomic.LoadUint64(&m.signups),
		LoginsByStatus:    logins,
		Requests:          atomic.LoadUint64(&m.requests),
	}
}

func (m *InMemoryRecorder) IncArticleCreated()   { atomic.AddUint64(&m.articlesCreated, 1) }
func (m *InMemoryRecorder) IncArticleUpdated()   { atomic.AddUint64(&m.articlesUpdated, 1) }
func (m *InMemoryRecorder) IncArticlePublished() { atomic.AddUint64(&m.articlesPublished, 1) }
func (m *InMemoryRecorder) IncArticleDeleted()   { atomic.AddUint64(&m.articlesDeleted, 1) }
func (m *InMemoryRecorder) IncArticleRead()      { atomic.AddUint64(&m.articleReads, 1) }
func (m *InMemoryRecorder) IncSignup()           { atomic.AddUint64(&m.signups, 1) }

// ObserveListDuration counts list calls per strategy.
func (m *InMemoryRecorder) ObserveListDuration(strategy string, _ time.Duration) {
	m.mu.Lock()
	m.lists[strategy]++
	m.mu.Unlock()
}

// IncLogin counts login attempts per outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.mu.Lock()
	m.logins[status]++
	m.mu.Unlock()
}

// ObserveRequest counts served requests.
func (m *InMemoryRecorder) ObserveRequest(string, string, int, time.Duration) {
	atomic.AddUint64(&m.requests, 1)
}
