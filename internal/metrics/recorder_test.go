package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*testRecorder)(nil)
)

type testRecorder struct {
	resolveDurations map[string]int
	listDurations    map[string]int
	docsSkipped      map[string]int
	submissions      map[string]map[ResultLabel]int
	cacheEvents      map[CacheEventLabel]int
	documentCounts   map[string]int
	httpRequests     int
	reindexRuns      int
	notifyResults    map[ResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		resolveDurations: map[string]int{},
		listDurations:    map[string]int{},
		docsSkipped:      map[string]int{},
		submissions:      map[string]map[ResultLabel]int{},
		cacheEvents:      map[CacheEventLabel]int{},
		documentCounts:   map[string]int{},
		notifyResults:    map[ResultLabel]int{},
	}
}

func (t *testRecorder) ObserveResolveDuration(category string, _ time.Duration, _ ResultLabel) {
	t.resolveDurations[category]++
}
func (t *testRecorder) ObserveListDuration(scope string, _ time.Duration) { t.listDurations[scope]++ }
func (t *testRecorder) IncDocSkipped(category string)                     { t.docsSkipped[category]++ }
func (t *testRecorder) IncSubmission(category string, result ResultLabel) {
	m, ok := t.submissions[category]
	if !ok {
		m = map[ResultLabel]int{}
		t.submissions[category] = m
	}
	m[result]++
}
func (t *testRecorder) IncCacheEvent(event CacheEventLabel) { t.cacheEvents[event]++ }
func (t *testRecorder) SetDocumentCount(category string, n int) {
	t.documentCounts[category] = n
}
func (t *testRecorder) ObserveHTTPRequest(string, string, int, time.Duration) { t.httpRequests++ }
func (t *testRecorder) ObserveReindexDuration(time.Duration, ResultLabel)     { t.reindexRuns++ }
func (t *testRecorder) IncNotifyResult(result ResultLabel)                    { t.notifyResults[result]++ }

func TestTestRecorder_AccumulatesObservations(t *testing.T) {
	rec := newTestRecorder()
	rec.ObserveResolveDuration("guides", 10*time.Millisecond, ResultSuccess)
	rec.ObserveResolveDuration("guides", 5*time.Millisecond, ResultNotFound)
	rec.IncSubmission("guides", ResultSuccess)
	rec.IncSubmission("guides", ResultInvalid)
	rec.IncCacheEvent(CacheHit)
	rec.SetDocumentCount("guides", 7)

	if rec.resolveDurations["guides"] != 2 {
		t.Fatalf("expected 2 resolve observations, got %d", rec.resolveDurations["guides"])
	}
	if rec.submissions["guides"][ResultInvalid] != 1 {
		t.Fatalf("expected 1 invalid submission, got %d", rec.submissions["guides"][ResultInvalid])
	}
	if rec.cacheEvents[CacheHit] != 1 {
		t.Fatalf("expected 1 cache hit, got %d", rec.cacheEvents[CacheHit])
	}
	if rec.documentCounts["guides"] != 7 {
		t.Fatalf("expected document count 7, got %d", rec.documentCounts["guides"])
	}
}
