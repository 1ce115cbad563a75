package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncReportGenerated(string) {}
func (n *NoopRecorder) IncReportCacheHit() {}
func (n *NoopRecorder) IncReportCacheMiss() {}
func (n *NoopRecorder) ObserveReportDuration(time.Duration) {}
func (n *NoopRecorder) ObserveReportEvents(int64) {}
func (n *NoopRecorder) IncAnalyticsEventPublished(string) {}
func (n *NoopRecorder) IncAnalyticsEventProcessed(string) {}
func (n *NoopRecorder) ObserveAnalyticsBatchSize(int) {}
func (n *NoopRecorder) ObserveAnalyticsBatchDuration(time.Duration) {}
func (n *NoopRecorder) SetAnalyticsQueueDepth(int64) {}
func (n *NoopRecorder) ObserveAnalyticsIngestLag(time.Duration) {}
