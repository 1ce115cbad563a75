package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ReportsGenerated         map[string]uint64
	ReportCacheHits          uint64
	ReportCacheMisses        uint64
	ReportDurationCount      uint64
	ReportDurationTotalNs    int64
	ReportEventsScannedTotal int64

	AnalyticsEventsPublished       uint64
	AnalyticsEventsDropped         uint64
	AnalyticsEventsProcessed       uint64
	AnalyticsEventsProcessedFailed uint64
	AnalyticsEventsDeadLettered    uint64
	AnalyticsBatchCount            uint64
	AnalyticsBatchEventsTotal      int64
	AnalyticsBatchDurationCount    uint64
	AnalyticsBatchDurationTotalNs  int64
	AnalyticsQueueDepth            int64
	AnalyticsIngestLagCount        uint64
	AnalyticsIngestLagTotalNs      int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is safe for concurrent use.
type InMemoryRecorder struct {
	reportsLink     atomic.Uint64
	reportsCampaign atomic.Uint64
	reportsAccount  atomic.Uint64

	reportCacheHits       atomic.Uint64
	reportCacheMisses     atomic.Uint64
	reportDurationCount   atomic.Uint64
	reportDurationTotalNs atomic.Int64
	reportEventsScanned   atomic.Int64

	eventsPublished      atomic.Uint64
	eventsDropped        atomic.Uint64
	eventsProcessed      atomic.Uint64
	eventsFailed         atomic.Uint64
	eventsDeadLettered   atomic.Uint64
	batchCount           atomic.Uint64
	batchEventsTotal     atomic.Int64
	batchDurationCount   atomic.Uint64
	batchDurationTotalNs atomic.Int64
	queueDepth           atomic.Int64
	ingestLagCount       atomic.Uint64
	ingestLagTotalNs     atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ReportsGenerated: map[string]uint64{
			"link":     m.reportsLink.Load(),
			"campaign": m.reportsCampaign.Load(),
			"account":  m.reportsAccount.Load(),
		},
		ReportCacheHits:          m.reportCacheHits.Load(),
		ReportCacheMisses:        m.reportCacheMisses.Load(),
		ReportDurationCount:      m.reportDurationCount.Load(),
		ReportDurationTotalNs:    m.reportDurationTotalNs.Load(),
		ReportEventsScannedTotal: m.reportEventsScanned.Load(),

		AnalyticsEventsPublished:       m.eventsPublished.Load(),
		AnalyticsEventsDropped:         m.eventsDropped.Load(),
		AnalyticsEventsProcessed:       m.eventsProcessed.Load(),
		AnalyticsEventsProcessedFailed: m.eventsFailed.Load(),
		AnalyticsEventsDeadLettered:    m.eventsDeadLettered.Load(),
		AnalyticsBatchCount:            m.batchCount.Load(),
		AnalyticsBatchEventsTotal:      m.batchEventsTotal.Load(),
		AnalyticsBatchDurationCount:    m.batchDurationCount.Load(),
		AnalyticsBatchDurationTotalNs:  m.batchDurationTotalNs.Load(),
		AnalyticsQueueDepth:            m.queueDepth.Load(),
		AnalyticsIngestLagCount:        m.ingestLagCount.Load(),
		AnalyticsIngestLagTotalNs:      m.ingestLagTotalNs.Load(),
	}
}

// IncReportGenerated counts a built report. Unknown scopes are ignored.
func (m *InMemoryRecorder) IncReportGenerated(scope string) {
	switch scope {
	case "link":
		m.reportsLink.Add(1)
	case "campaign":
		m.reportsCampaign.Add(1)
	case "account":
		m.reportsAccount.Add(1)
	}
}

// IncReportCacheHit increments the report cache hit counter.
func (m *InMemoryRecorder) IncReportCacheHit() {
	m.reportCacheHits.Add(1)
}

// IncReportCacheMiss increments the report cache miss counter.
func (m *InMemoryRecorder) IncReportCacheMiss() {
	m.reportCacheMisses.Add(1)
}

// ObserveReportDuration records how long a report build took.
func (m *InMemoryRecorder) ObserveReportDuration(duration time.Duration) {
	m.reportDurationCount.Add(1)
	m.reportDurationTotalNs.Add(duration.Nanoseconds())
}

// ObserveReportEvents records how many events a report scanned.
func (m *InMemoryRecorder) ObserveReportEvents(count int64) {
	m.reportEventsScanned.Add(count)
}

// IncAnalyticsEventPublished counts publish outcomes.
func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	switch status {
	case "success":
		m.eventsPublished.Add(1)
	case "dropped":
		m.eventsDropped.Add(1)
	}
}

// IncAnalyticsEventProcessed counts worker outcomes.
func (m *InMemoryRecorder) IncAnalyticsEventProcessed(status string) {
	switch status {
	case "success":
		m.eventsProcessed.Add(1)
	case "failed":
		m.eventsFailed.Add(1)
	case "dead_lettered":
		m.eventsDeadLettered.Add(1)
	}
}

// ObserveAnalyticsBatchSize records a processed batch.
func (m *InMemoryRecorder) ObserveAnalyticsBatchSize(size int) {
	m.batchCount.Add(1)
	m.batchEventsTotal.Add(int64(size))
}

// ObserveAnalyticsBatchDuration records batch processing time.
func (m *InMemoryRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {
	m.batchDurationCount.Add(1)
	m.batchDurationTotalNs.Add(duration.Nanoseconds())
}

// SetAnalyticsQueueDepth stores the latest pending + lag count.
func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	m.queueDepth.Store(depth)
}

// ObserveAnalyticsIngestLag records the delay between click and storage.
func (m *InMemoryRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {
	m.ingestLagCount.Add(1)
	m.ingestLagTotalNs.Add(lag.Nanoseconds())
}
