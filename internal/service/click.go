package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/penshort/linkstats/internal/analytics"
	"github.com/penshort/linkstats/internal/model"
	"github.com/penshort/linkstats/internal/repository"
)

// LinkLookup loads a link by ID.
type LinkLookup interface {
	GetLinkByID(ctx context.Context, id string) (*model.Link, error)
}

// ClickPublisher appends a click to the ingestion stream.
type ClickPublisher interface {
	Publish(ctx context.Context, event analytics.ClickEventPayload) (string, error)
}

// ClickInput is a click reported by the redirect edge.
type ClickInput struct {
	LinkID      string
	Referrer    string
	UserAgent   string
	IPAddress   string
	Country     string
	LandingURL  string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	OccurredAt  time.Time
}

// ClickService validates clicks and hands them to the ingestion stream.
type ClickService struct {
	links     LinkLookup
	publisher ClickPublisher
	now       func() time.Time
}

// NewClickService creates a ClickService.
func NewClickService(links LinkLookup, publisher ClickPublisher) *ClickService {
	return &ClickService{links: links, publisher: publisher, now: time.Now}
}

// Record normalizes and validates a click for a link the caller owns, then
// publishes it. It returns the stream ID, which becomes the event's
// idempotency key.
func (s *ClickService) Record(ctx context.Context, in ClickInput, caller *model.AuthContext) (string, error) {
	payload, err := s.payload(in)
	if err != nil {
		return "", err
	}

	link, err := s.links.GetLinkByID(ctx, payload.LinkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return "", ErrLinkNotFound
		}
		return "", fmt.Errorf("get link: %w", err)
	}
	if link.DeletedAt != nil || !canAccess(caller, link.OwnerID) {
		return "", ErrLinkNotFound
	}
	payload.ShortCode = link.ShortCode

	streamID, err := s.publisher.Publish(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClickPublisher, err)
	}
	return streamID, nil
}

// payload builds the normalized stream payload. UTM parameters fall back to
// those found on the landing URL when none are given explicitly.
func (s *ClickService) payload(in ClickInput) (analytics.ClickEventPayload, error) {
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	utm := analytics.UTM{Source: in.UTMSource, Medium: in.UTMMedium, Campaign: in.UTMCampaign}
	if utm == (analytics.UTM{}) {
		utm = analytics.ExtractUTM(in.LandingURL)
	}

	payload := analytics.ClickEventPayload{
		LinkID:      in.LinkID,
		Referrer:    analytics.SanitizeReferrer(in.Referrer),
		UserAgent:   analytics.TruncateUserAgent(in.UserAgent),
		IPAddress:   analytics.NormalizeIP(in.IPAddress),
		Country:     analytics.ExtractCountryCode(in.Country),
		UTMSource:   utm.Source,
		UTMMedium:   utm.Medium,
		UTMCampaign: utm.Campaign,
		OccurredAt:  occurredAt.UnixMilli(),
	}
	if err := analytics.ValidateClickEventPayload(payload); err != nil {
		return analytics.ClickEventPayload{}, fmt.Errorf("%w: %w", ErrInvalidClick, err)
	}
	return payload, nil
}

// canAccess reports whether caller may act on a resource owned by ownerID.
func canAccess(caller *model.AuthContext, ownerID string) bool {
	return caller != nil && (caller.IsAdmin() || caller.UserID == ownerID)
}
