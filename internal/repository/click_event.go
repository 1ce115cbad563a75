package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/penshort/linkstats/internal/model"
)

const clickEventColumns = `
	id, event_id, link_id, short_code, referrer, user_agent, ip_address,
	country, utm_source, utm_medium, utm_campaign, occurred_at, created_at`

// BulkInsert stores click events. Duplicate event_id values are ignored so
// redelivered stream messages never double count.
func (r *Repository) BulkInsert(ctx context.Context, events []*model.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO click_events (` + clickEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.LinkID,
			event.ShortCode,
			nullableString(event.Referrer),
			nullableString(event.UserAgent),
			nullableString(event.IPAddress),
			nullableString(event.Country),
			nullableString(event.UTMSource),
			nullableString(event.UTMMedium),
			nullableString(event.UTMCampaign),
			event.OccurredAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// ListClickEvents returns the events of the given links that occurred in
// [from, to], newest first.
func (r *Repository) ListClickEvents(ctx context.Context, linkIDs []string, from, to time.Time) ([]*model.ClickEvent, error) {
	if len(linkIDs) == 0 {
		return []*model.ClickEvent{}, nil
	}

	query := `
		SELECT ` + clickEventColumns + `
		FROM click_events
		WHERE link_id = ANY($1) AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(linkIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("query click events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.ClickEvent, 0)
	for rows.Next() {
		event, err := scanClickEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan click event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate click events: %w", err)
	}

	return events, nil
}

// CountClickEvents returns the number of stored events for a link.
func (r *Repository) CountClickEvents(ctx context.Context, linkID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM click_events WHERE link_id = $1`, linkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count click events: %w", err)
	}
	return count, nil
}

func scanClickEvent(rows pgx.Rows) (*model.ClickEvent, error) {
	var (
		event                                  model.ClickEvent
		referrer, userAgent, ipAddress, country *string
		utmSource, utmMedium, utmCampaign      *string
	)

	err := rows.Scan(
		&event.ID,
		&event.EventID,
		&event.LinkID,
		&event.ShortCode,
		&referrer,
		&userAgent,
		&ipAddress,
		&country,
		&utmSource,
		&utmMedium,
		&utmCampaign,
		&event.OccurredAt,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Referrer = deref(referrer)
	event.UserAgent = deref(userAgent)
	event.IPAddress = deref(ipAddress)
	event.Country = deref(country)
	event.UTMSource = deref(utmSource)
	event.UTMMedium = deref(utmMedium)
	event.UTMCampaign = deref(utmCampaign)

	return &event, nil
}

// nullableString maps the empty string to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
