// Package model defines domain entities for the application.
package model

import "time"

// ClickEvent is one recorded visit to a short link.
// Optional string fields use "" for absent.
type ClickEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	LinkID    string `json:"link_id"`
	ShortCode string `json:"short_code,omitempty"`

	// Request metadata captured at the redirect edge
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Country   string `json:"country,omitempty"` // ISO 3166-1 alpha-2, resolved upstream

	// Campaign attribution
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
