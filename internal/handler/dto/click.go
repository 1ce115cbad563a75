// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/penshort/linkstats/internal/service"
)

// RecordClickRequest is a click reported by the redirect edge.
// OccurredAt defaults to the time the request is received.
type RecordClickRequest struct {
	LinkID      string     `json:"link_id"`
	Referrer    string     `json:"referrer,omitempty"`
	UserAgent   string     `json:"user_agent,omitempty"`
	IPAddress   string     `json:"ip_address,omitempty"`
	Country     string     `json:"country,omitempty"`
	LandingURL  string     `json:"landing_url,omitempty"`
	UTMSource   string     `json:"utm_source,omitempty"`
	UTMMedium   string     `json:"utm_medium,omitempty"`
	UTMCampaign string     `json:"utm_campaign,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

// ToInput converts the request into service input.
func (r RecordClickRequest) ToInput() service.ClickInput {
	in := service.ClickInput{
		LinkID:      r.LinkID,
		Referrer:    r.Referrer,
		UserAgent:   r.UserAgent,
		IPAddress:   r.IPAddress,
		Country:     r.Country,
		LandingURL:  r.LandingURL,
		UTMSource:   r.UTMSource,
		UTMMedium:   r.UTMMedium,
		UTMCampaign: r.UTMCampaign,
	}
	if r.OccurredAt != nil {
		in.OccurredAt = *r.OccurredAt
	}
	return in
}

// RecordClickResponse acknowledges a queued click.
type RecordClickResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}
