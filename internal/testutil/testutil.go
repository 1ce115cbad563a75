// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/penshort/linkstats/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// Migrations lists the schema migrations in apply order.
var Migrations = []string{
	"000001_init",
	"000002_users",
	"000003_api_keys",
	"000004_links",
	"000005_click_events",
}

// ResetSchema drops every table and reapplies all migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i := len(Migrations) - 1; i >= 0; i-- {
		if err := applyMigration(ctx, pool, Migrations[i], "down"); err != nil {
			return err
		}
	}
	for _, name := range Migrations {
		if err := applyMigration(ctx, pool, name, "up"); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMigration executes a single migration file in the given direction.
func ApplyMigration(ctx context.Context, pool *pgxpool.Pool, name, direction string) error {
	return applyMigration(ctx, pool, name, direction)
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, name, direction string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	path := filepath.Join(root, "migrations", name+"."+direction+".sql")
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s %s migration: %w", name, direction, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply %s %s migration: %w", name, direction, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", "..")), nil
}

// ============================================================================
// Seed Helpers
// ============================================================================

// Links and campaigns are written by the link service in production; tests
// seed them with plain SQL.

// InsertLink seeds a link row.
func InsertLink(ctx context.Context, pool *pgxpool.Pool, link *model.Link) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO links (id, short_code, destination, owner_id, campaign_id, enabled, expires_at, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		link.ID,
		link.ShortCode,
		link.Destination,
		link.OwnerID,
		link.CampaignID,
		link.Enabled,
		link.ExpiresAt,
		link.DeletedAt,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert link %s: %w", link.ID, err)
	}
	return nil
}

// SoftDeleteLink marks a link deleted the way the link service does.
func SoftDeleteLink(ctx context.Context, pool *pgxpool.Pool, id string) error {
	_, err := pool.Exec(ctx, `UPDATE links SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}
	return nil
}

// InsertCampaign seeds a campaign row.
func InsertCampaign(ctx context.Context, pool *pgxpool.Pool, campaign *model.Campaign) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO campaigns (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, campaign.ID, campaign.OwnerID, campaign.Name, campaign.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign %s: %w", campaign.ID, err)
	}
	return nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

// NewTestLink creates an active test link owned by ownerID.
func NewTestLink(t testing.TB, ownerID string) *model.Link {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := UniqueID("link")
	return &model.Link{
		ID:          id,
		ShortCode:   id,
		Destination: "https://example.com/" + id,
		OwnerID:     ownerID,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestCampaign creates a test campaign owned by ownerID.
func NewTestCampaign(t testing.TB, ownerID string) *model.Campaign {
	t.Helper()
	return &model.Campaign{
		ID:        UniqueID("camp"),
		OwnerID:   ownerID,
		Name:      "Spring launch",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestClickEvent creates a click event for linkID at occurredAt.
func NewTestClickEvent(t testing.TB, linkID string, occurredAt time.Time) *model.ClickEvent {
	t.Helper()
	return &model.ClickEvent{
		ID:         ulid.Make().String(),
		EventID:    UniqueID("evt"),
		LinkID:     linkID,
		Referrer:   "https://www.google.com/search?q=go",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		IPAddress:  "203.0.113.10",
		Country:    "US",
		OccurredAt: occurredAt.UTC().Truncate(time.Microsecond),
	}
}

// NewTestAPIKey creates a test API key with sensible defaults.
func NewTestAPIKey(t testing.TB, userID string) *model.APIKey {
	t.Helper()
	return &model.APIKey{
		ID:            UniqueID("key"),
		UserID:        userID,
		KeyHash:       UniqueID("hash"),
		KeyPrefix:     "a1b2c3",
		Scopes:        []string{model.ScopeRead, model.ScopeWrite},
		RateLimitTier: model.TierFree,
		Name:          "Test Key",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}
