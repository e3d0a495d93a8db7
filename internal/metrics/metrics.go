// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Article lifecycle metrics
	IncArticleCreated()
	IncArticleUpdated()
	IncArticlePublished()
	IncArticleDeleted()
	IncArticleRead()
	ObserveListDuration(strategy string, duration time.Duration)

	// Account metrics
	IncSignup()
	IncLogin(status string) // status: "success" or "failure"

	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
