// Package model defines domain entities for the application.
package model

import "time"

// LinkStatus represents the computed status of a link.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusExpired  LinkStatus = "expired"
	LinkStatusDisabled LinkStatus = "disabled"
	LinkStatusDeleted  LinkStatus = "deleted"
)

// Link is a short link whose clicks are tracked.
// Links are created by the link service; this backend only reads them.
type Link struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	Destination string     `json:"destination"`
	OwnerID     string     `json:"owner_id"`
	CampaignID  *string    `json:"campaign_id,omitempty"`
	Enabled     bool       `json:"enabled"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StatusAt computes the status of the link at the given instant.
func (l *Link) StatusAt(now time.Time) LinkStatus {
	if l.DeletedAt != nil {
		return LinkStatusDeleted
	}
	if !l.Enabled {
		return LinkStatusDisabled
	}
	if l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return LinkStatusExpired
	}
	return LinkStatusActive
}

// Status computes the current status of the link.
func (l *Link) Status() LinkStatus {
	return l.StatusAt(time.Now())
}

// Campaign groups links for reporting.
type Campaign struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
