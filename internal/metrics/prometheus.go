package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "penblog"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	articleEvents *prometheus.CounterVec
	articleReads  prometheus.Counter
	listDuration  *prometheus.HistogramVec
	signups       prometheus.Counter
	logins        *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewPrometheus builds a recorder with process and Go runtime collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		articleEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_events_total",
			Help:      "Article lifecycle events by type",
		}, []string{"event"}),
		articleReads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_reads_total",
			Help:      "Counted reads of published articles",
		}),
		listDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "article_list_duration_seconds",
			Help:      "Duration of article list queries by strategy",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		signups: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Completed signups",
		}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"status"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncArticleCreated()   { p.articleEvents.WithLabelValues("created").Inc() }
func (p *PrometheusRecorder) IncArticleUpdated()   { p.articleEvents.WithLabelValues("updated").Inc() }
func (p *PrometheusRecorder) IncArticlePublished() { p.articleEvents.WithLabelValues("published").Inc() }
func (p *PrometheusRecorder) IncArticleDeleted()   { p.articleEvents.WithLabelValues("deleted").Inc() }
func (p *PrometheusRecorder) IncArticleRead()      { p.articleReads.Inc() }
func (p *PrometheusRecorder) IncSignup()           { p.signups.Inc() }

func (p *PrometheusRecorder) ObserveListDuration(strategy string, d time.Duration) {
	p.listDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLogin(status string) {
	p.logins.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
