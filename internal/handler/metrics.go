package handler

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/penshort/linkstats/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus text exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, _ *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	scopes := make([]string, 0, len(snap.ReportsGenerated))
	for scope := range snap.ReportsGenerated {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	for _, scope := range scopes {
		writeMetric(w, "linkstats_reports_generated_total{scope=%q} %d\n", scope, snap.ReportsGenerated[scope])
	}
	writeMetric(w, "linkstats_report_cache_hits_total %d\n", snap.ReportCacheHits)
	writeMetric(w, "linkstats_report_cache_misses_total %d\n", snap.ReportCacheMisses)
	writeMetric(w, "linkstats_report_duration_seconds_count %d\n", snap.ReportDurationCount)
	writeMetric(w, "linkstats_report_duration_seconds_sum %.6f\n", float64(snap.ReportDurationTotalNs)/1e9)
	writeMetric(w, "linkstats_report_events_total %d\n", snap.ReportEventsScannedTotal)

	writeMetric(w, "linkstats_click_events_published_total{status=\"success\"} %d\n", snap.AnalyticsEventsPublished)
	writeMetric(w, "linkstats_click_events_published_total{status=\"dropped\"} %d\n", snap.AnalyticsEventsDropped)
	writeMetric(w, "linkstats_click_events_processed_total{status=\"success\"} %d\n", snap.AnalyticsEventsProcessed)
	writeMetric(w, "linkstats_click_events_processed_total{status=\"failed\"} %d\n", snap.AnalyticsEventsProcessedFailed)
	writeMetric(w, "linkstats_click_events_processed_total{status=\"dead_lettered\"} %d\n", snap.AnalyticsEventsDeadLettered)

	writeMetric(w, "linkstats_ingest_batches_total %d\n", snap.AnalyticsBatchCount)
	writeMetric(w, "linkstats_ingest_batch_events_total %d\n", snap.AnalyticsBatchEventsTotal)
	writeMetric(w, "linkstats_ingest_batch_duration_seconds_count %d\n", snap.AnalyticsBatchDurationCount)
	writeMetric(w, "linkstats_ingest_batch_duration_seconds_sum %.6f\n", float64(snap.AnalyticsBatchDurationTotalNs)/1e9)
	writeMetric(w, "linkstats_ingest_queue_depth %d\n", snap.AnalyticsQueueDepth)
	writeMetric(w, "linkstats_ingest_lag_seconds_count %d\n", snap.AnalyticsIngestLagCount)
	writeMetric(w, "linkstats_ingest_lag_seconds_sum %.6f\n", float64(snap.AnalyticsIngestLagTotalNs)/1e9)
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
