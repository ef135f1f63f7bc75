package handlers

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/ashkam58/mathflix/internal/server/events"
	"github.com/ashkam58/mathflix/internal/server/response"
	"github.com/ashkam58/mathflix/pkg/differ"
	"github.com/ashkam58/mathflix/pkg/logging"
	"github.com/ashkam58/mathflix/pkg/reconcile"
)

// ReconcileReport is the body of a POST /reconcile response.
type ReconcileReport struct {
	Status     string               `json:"status"`
	DryRun     bool                 `json:"dry_run"`
	Changed    bool                 `json:"changed"`
	FirstRun   bool                 `json:"first_run"`
	Summary    string               `json:"summary"`
	Records    int                  `json:"records"`
	Changes    *differ.Changeset    `json:"changes,omitempty"`
	Preserved  []string             `json:"preserved"`
	Dropped    []string             `json:"dropped"`
	Statistics reconcile.Statistics `json:"statistics"`
	DurationMS int64                `json:"duration_ms"`
}

func newReconcileReport(result *reconcile.Result, dryRun bool) ReconcileReport {
	dropped := make([]string, len(result.Dropped))
	for i, r := range result.Dropped {
		dropped[i] = r.ID
	}
	preserved := result.Preserved
	if preserved == nil {
		preserved = []string{}
	}
	return ReconcileReport{
		Status:     "completed",
		DryRun:     dryRun,
		Changed:    result.Changed,
		FirstRun:   result.FirstRun,
		Summary:    result.Summary(),
		Records:    len(result.Records),
		Changes:    result.Changeset,
		Preserved:  preserved,
		Dropped:    dropped,
		Statistics: result.Statistics,
		DurationMS: result.Metadata.Duration.Milliseconds(),
	}
}

// HandleReconcile handles POST /api/v1/reconcile. With dry_run=true the
// merge is computed but nothing is saved.
func (h *Handlers) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "Invalid query parameters", "dry_run must be true or false")
			return
		}
		dryRun = b
	}

	var (
		result *reconcile.Result
		err    error
	)
	if dryRun {
		result, err = h.client.Preview(r.Context())
	} else {
		result, err = h.client.Reconcile(r.Context())
	}
	if err != nil {
		h.observeReconcile("error")
		logging.FromContext(r.Context()).Error().Err(err).Bool("dry_run", dryRun).Msg("reconcile failed")
		response.ErrorFromType(w, err)
		return
	}

	report := newReconcileReport(result, dryRun)
	if !dryRun {
		h.catalogSize.Store(int64(len(result.Records)))
		if result.Changed {
			h.observeReconcile("changed")
		} else {
			h.observeReconcile("unchanged")
		}
		h.broker.Publish(events.ReconcileCompleted, map[string]any{
			"changed": result.Changed,
			"summary": report.Summary,
		})
	}

	response.OK(w, report)
}

func (h *Handlers) observeReconcile(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveReconcile(outcome)
	}
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response.OK(w, map[string]any{
		"catalog": map[string]any{
			"games": h.catalogSize.Load(),
		},
		"server": map[string]any{
			"uptime_seconds":    int64(time.Since(h.startTime).Seconds()),
			"websocket_clients": h.wsHub.ClientCount(),
			"cache":             h.cache.GetStats(),
			"goroutines":        runtime.NumGoroutine(),
			"heap_alloc_bytes":  m.HeapAlloc,
		},
	})
}
