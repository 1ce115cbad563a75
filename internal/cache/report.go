package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/penshort/linkstats/internal/model"
)

const reportKeyPrefix = "report:"

// ReportKey builds the cache key for a report. The owner is part of the key
// so an admin view never leaks into an owner's cache slot.
func ReportKey(scope model.ReportScope, days int) string {
	var b strings.Builder
	b.WriteString(reportKeyPrefix)
	b.WriteString(string(scope.Kind))
	b.WriteByte(':')
	b.WriteString(scope.ID)
	b.WriteByte(':')
	b.WriteString(scope.OwnerID)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(days))
	return b.String()
}

// GetReport returns a cached report. Returns ErrCacheMiss when absent or
// when the stored payload no longer decodes.
func (c *Cache) GetReport(ctx context.Context, key string) (*model.Report, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, ErrCacheMiss
	}
	return &report, nil
}

// SetReport stores a report for ttl. A non-positive ttl is a no-op.
func (c *Cache) SetReport(ctx context.Context, key string, report *model.Report, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set report: %w", err)
	}
	return nil
}
