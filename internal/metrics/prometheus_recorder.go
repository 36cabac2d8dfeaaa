package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	resolveDuration *prom.HistogramVec
	listDuration    *prom.HistogramVec
	docsSkipped     *prom.CounterVec
	submissions     *prom.CounterVec
	cacheEvents     *prom.CounterVec
	documents       *prom.GaugeVec
	httpRequests    *prom.HistogramVec
	reindexDuration *prom.HistogramVec
	notifyResults   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.resolveDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserver",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of document resolution by category and result",
			Buckets:   prom.DefBuckets,
		}, []string{"category", "result"})
		pr.listDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserver",
			Name:      "list_duration_seconds",
			Help:      "Duration of listing operations by scope",
			Buckets:   prom.DefBuckets,
		}, []string{"scope"})
		pr.docsSkipped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserver",
			Name:      "documents_skipped_total",
			Help:      "Documents excluded from listings due to parse failures",
		}, []string{"category"})
		pr.submissions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserver",
			Name:      "submissions_total",
			Help:      "Document submissions by category and result",
		}, []string{"category", "result"})
		pr.cacheEvents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserver",
			Name:      "cache_events_total",
			Help:      "Document cache events",
		}, []string{"event"})
		pr.documents = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "docserver",
			Name:      "documents",
			Help:      "Parseable documents currently indexed, by category",
		}, []string{"category"})
		pr.httpRequests = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserver",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by server, method, and status",
			Buckets:   prom.DefBuckets,
		}, []string{"server", "method", "status"})
		pr.reindexDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docserver",
			Name:      "reindex_duration_seconds",
			Help:      "Duration of scheduled reindex runs",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.notifyResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docserver",
			Name:      "notify_results_total",
			Help:      "Submission event publish results",
		}, []string{"result"})
		reg.MustRegister(pr.resolveDuration, pr.listDuration, pr.docsSkipped, pr.submissions,
			pr.cacheEvents, pr.documents, pr.httpRequests, pr.reindexDuration, pr.notifyResults)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(category string, d time.Duration, result ResultLabel) {
	if p == nil || p.resolveDuration == nil {
		return
	}
	p.resolveDuration.WithLabelValues(category, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveListDuration(scope string, d time.Duration) {
	if p == nil || p.listDuration == nil {
		return
	}
	p.listDuration.WithLabelValues(scope).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocSkipped(category string) {
	if p == nil || p.docsSkipped == nil {
		return
	}
	p.docsSkipped.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) IncSubmission(category string, result ResultLabel) {
	if p == nil || p.submissions == nil {
		return
	}
	p.submissions.WithLabelValues(category, string(result)).Inc()
}

func (p *PrometheusRecorder) IncCacheEvent(event CacheEventLabel) {
	if p == nil || p.cacheEvents == nil {
		return
	}
	p.cacheEvents.WithLabelValues(string(event)).Inc()
}

func (p *PrometheusRecorder) SetDocumentCount(category string, n int) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.WithLabelValues(category).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveHTTPRequest(server, method string, status int, d time.Duration) {
	if p == nil || p.httpRequests == nil {
		return
	}
	p.httpRequests.WithLabelValues(server, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveReindexDuration(d time.Duration, result ResultLabel) {
	if p == nil || p.reindexDuration == nil {
		return
	}
	p.reindexDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncNotifyResult(result ResultLabel) {
	if p == nil || p.notifyResults == nil {
		return
	}
	p.notifyResults.WithLabelValues(string(result)).Inc()
}
