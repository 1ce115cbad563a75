package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penshort/linkstats/internal/metrics"
	"github.com/penshort/linkstats/internal/model"
)

type fakeStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	events   []*model.ClickEvent
}

func (f *fakeStore) BulkInsert(_ context.Context, events []*model.ClickEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	f.events = append(f.events, events...)
	return nil
}

func newTestWorker(store EventStore, recorder metrics.Recorder) *Worker {
	w := NewWorker(nil, store, nil, "test-consumer", recorder)
	w.backoff = func(int) time.Duration { return time.Millisecond }
	return w
}

func message(t *testing.T, id string, payload any) redis.XMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return redis.XMessage{ID: id, Values: map[string]any{"payload": string(data)}}
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	valid := validPayload()

	tests := []struct {
		name   string
		msg    redis.XMessage
		reason string
	}{
		{"valid", message(t, "1-0", valid), ""},
		{"missing payload", redis.XMessage{ID: "2-0", Values: map[string]any{}}, reasonInvalidFormat},
		{"non-string payload", redis.XMessage{ID: "3-0", Values: map[string]any{"payload": 42}}, reasonInvalidFormat},
		{"bad json", redis.XMessage{ID: "4-0", Values: map[string]any{"payload": "{"}}, reasonUnmarshalError},
		{"invalid payload", message(t, "5-0", ClickEventPayload{OccurredAt: 1}), reasonValidationError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload, reason, err := decodeMessage(tt.msg)

			assert.Equal(t, tt.reason, reason)
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, valid, payload)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestProcessBatchWithRetry_RecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failures: 2}
	recorder := metrics.NewInMemory()
	w := newTestWorker(store, recorder)
	events := []*model.ClickEvent{
		validPayload().ToClickEvent("a", "1-0"),
		validPayload().ToClickEvent("b", "2-0"),
	}

	err := w.processBatchWithRetry(context.Background(), events)

	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
	assert.Len(t, store.events, 2)
	snap := recorder.Snapshot()
	assert.EqualValues(t, 2, snap.AnalyticsEventsProcessed)
	assert.EqualValues(t, 1, snap.AnalyticsBatchCount)
	assert.Zero(t, snap.AnalyticsEventsProcessedFailed)
}

func TestProcessBatchWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failures: 10}
	recorder := metrics.NewInMemory()
	w := newTestWorker(store, recorder)

	err := w.processBatchWithRetry(context.Background(), []*model.ClickEvent{validPayload().ToClickEvent("a", "1-0")})

	assert.Error(t, err)
	assert.Equal(t, DefaultMaxRetries, store.calls)
	assert.EqualValues(t, 1, recorder.Snapshot().AnalyticsEventsProcessedFailed)
}

func TestProcessBatchWithRetry_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failures: 10}
	w := newTestWorker(store, nil)
	w.backoff = func(int) time.Duration { return time.Hour }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.processBatchWithRetry(ctx, []*model.ClickEvent{validPayload().ToClickEvent("a", "1-0")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.calls)
}

func TestShutdown_NotStarted(t *testing.T) {
	t.Parallel()

	w := newTestWorker(&fakeStore{}, nil)

	assert.NoError(t, w.Shutdown(context.Background()))
}

func TestIsConsumerGroupExistsError(t *testing.T) {
	t.Parallel()

	assert.True(t, isConsumerGroupExistsError(errors.New("BUSYGROUP Consumer Group name already exists")))
	assert.False(t, isConsumerGroupExistsError(errors.New("ERR no such key")))
	assert.False(t, isConsumerGroupExistsError(nil))
}

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2*time.Second, exponentialBackoff(1))
	assert.Equal(t, 4*time.Second, exponentialBackoff(2))
}
