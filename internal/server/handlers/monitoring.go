package handlers

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/docserver/internal/foundation/errors"
	"git.home.luguber.info/inful/docserver/internal/server/responses"
	"git.home.luguber.info/inful/docserver/internal/version"
)

// StatusSource exposes the daemon state the admin endpoints report.
type StatusSource interface {
	StartTime() time.Time
	IndexHash() string
	LastReindex() (time.Time, bool)
	DocumentCounts() map[string]int
}

// MonitoringHandlers serves health and status on the admin listener.
type MonitoringHandlers struct {
	source  StatusSource
	adapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers wires the admin monitoring handlers.
func NewMonitoringHandlers(source StatusSource, adapter *errors.HTTPErrorAdapter) *MonitoringHandlers {
	return &MonitoringHandlers{source: source, adapter: adapter}
}

// HandleHealth answers the liveness probe.
func (h *MonitoringHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := responses.HealthResponse{
		Status:    "healthy",
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write health response").Build())
	}
}

// HandleStatus answers GET /api/status with uptime, document counts and
// index state.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	counts := h.source.DocumentCounts()
	total := 0
	for _, n := range counts {
		total += n
	}

	resp := responses.StatusResponse{
		Status:         "running",
		Version:        version.Version,
		StartTime:      h.source.StartTime(),
		UptimeSeconds:  time.Since(h.source.StartTime()).Seconds(),
		DocumentCounts: counts,
		DocumentsTotal: total,
		IndexHash:      h.source.IndexHash(),
		Timestamp:      time.Now().UTC(),
	}
	if last, ok := h.source.LastReindex(); ok {
		resp.LastReindex = &last
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "write status response").Build())
	}
}
