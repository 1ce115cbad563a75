package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryRecorder_Reports(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncReportGenerated("link")
	m.IncReportGenerated("link")
	m.IncReportGenerated("account")
	m.IncReportGenerated("bogus")
	m.IncReportCacheHit()
	m.IncReportCacheMiss()
	m.IncReportCacheMiss()
	m.ObserveReportDuration(250 * time.Millisecond)
	m.ObserveReportEvents(42)

	snap := m.Snapshot()

	assert.Equal(t, map[string]uint64{"link": 2, "campaign": 0, "account": 1}, snap.ReportsGenerated)
	assert.EqualValues(t, 1, snap.ReportCacheHits)
	assert.EqualValues(t, 2, snap.ReportCacheMisses)
	assert.EqualValues(t, 1, snap.ReportDurationCount)
	assert.Equal(t, (250 * time.Millisecond).Nanoseconds(), snap.ReportDurationTotalNs)
	assert.EqualValues(t, 42, snap.ReportEventsScannedTotal)
}

func TestInMemoryRecorder_Pipeline(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncAnalyticsEventPublished("success")
	m.IncAnalyticsEventPublished("dropped")
	m.IncAnalyticsEventProcessed("success")
	m.IncAnalyticsEventProcessed("failed")
	m.IncAnalyticsEventProcessed("dead_lettered")
	m.ObserveAnalyticsBatchSize(10)
	m.ObserveAnalyticsBatchDuration(time.Second)
	m.SetAnalyticsQueueDepth(7)
	m.SetAnalyticsQueueDepth(3)
	m.ObserveAnalyticsIngestLag(2 * time.Second)

	snap := m.Snapshot()

	assert.EqualValues(t, 1, snap.AnalyticsEventsPublished)
	assert.EqualValues(t, 1, snap.AnalyticsEventsDropped)
	assert.EqualValues(t, 1, snap.AnalyticsEventsProcessed)
	assert.EqualValues(t, 1, snap.AnalyticsEventsProcessedFailed)
	assert.EqualValues(t, 1, snap.AnalyticsEventsDeadLettered)
	assert.EqualValues(t, 1, snap.AnalyticsBatchCount)
	assert.EqualValues(t, 10, snap.AnalyticsBatchEventsTotal)
	assert.EqualValues(t, 3, snap.AnalyticsQueueDepth)
	assert.EqualValues(t, 1, snap.AnalyticsIngestLagCount)
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncReportCacheHit()
			m.IncAnalyticsEventProcessed("success")
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.EqualValues(t, 50, snap.ReportCacheHits)
	assert.EqualValues(t, 50, snap.AnalyticsEventsProcessed)
}

func TestNoopRecorder_SatisfiesInterface(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncReportGenerated("link")
	r.ObserveReportDuration(time.Second)

	var _ Recorder = NewInMemory()
	var _ Snapshotter = NewInMemory()
}
