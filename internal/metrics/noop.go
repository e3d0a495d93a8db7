package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncArticleCreated()                                 {}
func (n *NoopRecorder) IncArticleUpdated()                                 {}
func (n *NoopRecorder) IncArticlePublished()                               {}
func (n *NoopRecorder) IncArticleDeleted()                                 {}
func (n *NoopRecorder) IncArticleRead()                                    {}
func (n *NoopRecorder) ObserveListDuration(string, time.Duration)          {}
func (n *NoopRecorder) IncSignup()                                         {}
func (n *NoopRecorder) IncLogin(string)                                    {}
func (n *NoopRecorder) ObserveRequest(string, string, int, time.Duration) {}
