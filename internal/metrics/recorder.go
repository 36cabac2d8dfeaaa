package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultNotFound ResultLabel = "not_found"
	ResultInvalid  ResultLabel = "invalid"
	ResultError    ResultLabel = "error"
)

// CacheEventLabel enumerates document cache events.
type CacheEventLabel string

const (
	CacheHit        CacheEventLabel = "hit"
	CacheMiss       CacheEventLabel = "miss"
	CacheInvalidate CacheEventLabel = "invalidate"
	CachePurge      CacheEventLabel = "purge"
)

// Recorder defines observability hooks for library and server metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveResolveDuration(category string, d time.Duration, result ResultLabel)
	ObserveListDuration(scope string, d time.Duration) // scope: all|category|adjacent
	IncDocSkipped(category string)                     // listings exclude unparseable documents
	IncSubmission(category string, result ResultLabel)
	IncCacheEvent(event CacheEventLabel)
	SetDocumentCount(category string, n int)
	ObserveHTTPRequest(server, method string, status int, d time.Duration)
	ObserveReindexDuration(d time.Duration, result ResultLabel)
	IncNotifyResult(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(string, time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveListDuration(string, time.Duration)                 {}
func (NoopRecorder) IncDocSkipped(string)                                      {}
func (NoopRecorder) IncSubmission(string, ResultLabel)                         {}
func (NoopRecorder) IncCacheEvent(CacheEventLabel)                             {}
func (NoopRecorder) SetDocumentCount(string, int)                              {}
func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration)     {}
func (NoopRecorder) ObserveReindexDuration(time.Duration, ResultLabel)         {}
func (NoopRecorder) IncNotifyResult(ResultLabel)                               {}
