package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/penshort/linkstats/internal/cache"
	"github.com/penshort/linkstats/internal/model"
)

type fakeLimiter struct {
	result *cache.RateLimitResult
	err    error
	calls  int
	rate   int
	burst  int
}

func (f *fakeLimiter) CheckAPIRateLimit(_ context.Context, _ string, rate, burst int) (*cache.RateLimitResult, error) {
	f.calls++
	f.rate, f.burst = rate, burst
	return f.result, f.err
}

func serveRateLimited(cfg RateLimitConfig, tier string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	req = withAuth(req, &model.AuthContext{KeyID: "key-1", RateLimitTier: tier})
	rec := httptest.NewRecorder()
	RateLimitAPI(cfg)(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAPI_Allowed(t *testing.T) {
	t.Parallel()

	reset := time.Unix(1_700_000_000, 0)
	limiter := &fakeLimiter{result: &cache.RateLimitResult{Allowed: true, Remaining: 9, ResetAt: reset}}
	rec := serveRateLimited(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true}, model.TierFree)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1700000000", rec.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, 60, limiter.rate)
	assert.Equal(t, 10, limiter.burst)
}

func TestRateLimitAPI_Exceeded(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{result: &cache.RateLimitResult{Allowed: false, RetryAfter: 1500 * time.Millisecond, ResetAt: time.Now()}}
	rec := serveRateLimited(RateLimitConfig{Logger: discardLogger(), Limiter: limiter, Enabled: true}, model.TierPro)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeErrorCode(t, rec))
}

func TestRateLimitAPI_Bypasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       RateLimitConfig
		tier      string
		wantCalls int
	}{
		{"disabled", RateLimitConfig{Enabled: false}, model.TierFree, 0},
		{"unlimited tier", RateLimitConfig{Enabled: true}, model.TierUnlimited, 0},
		{"limiter error fails open", RateLimitConfig{Enabled: true, Limiter: &fakeLimiter{err: errors.New("redis down")}}, model.TierFree, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiter, ok := tt.cfg.Limiter.(*fakeLimiter)
			if !ok {
				limiter = &fakeLimiter{}
				tt.cfg.Limiter = limiter
			}
			tt.cfg.Logger = discardLogger()

			rec := serveRateLimited(tt.cfg, tt.tier)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantCalls, limiter.calls)
		})
	}
}
