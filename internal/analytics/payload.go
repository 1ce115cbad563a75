// Package analytics captures click events from the redirect edge and moves
// them through a Redis stream into the click event store.
package analytics

import (
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/penshort/linkstats/internal/model"
)

const (
	maxMetaLength = 500
	maxUTMLength  = 200
)

// ClickEventPayload is the compact event format carried on the Redis stream.
type ClickEventPayload struct {
	LinkID      string `json:"lid"`
	ShortCode   string `json:"sc,omitempty"`
	Referrer    string `json:"r,omitempty"`
	UserAgent   string `json:"ua,omitempty"`
	IPAddress   string `json:"ip,omitempty"`
	Country     string `json:"cc,omitempty"`
	UTMSource   string `json:"us,omitempty"`
	UTMMedium   string `json:"um,omitempty"`
	UTMCampaign string `json:"uc,omitempty"`
	OccurredAt  int64  `json:"t"` // Unix milliseconds
}

// ToClickEvent converts a stream payload into a storable event.
// eventID is the stream message ID and acts as the idempotency key.
func (p ClickEventPayload) ToClickEvent(id, eventID string) *model.ClickEvent {
	return &model.ClickEvent{
		ID:          id,
		EventID:     eventID,
		LinkID:      p.LinkID,
		ShortCode:   p.ShortCode,
		Referrer:    p.Referrer,
		UserAgent:   p.UserAgent,
		IPAddress:   p.IPAddress,
		Country:     p.Country,
		UTMSource:   p.UTMSource,
		UTMMedium:   p.UTMMedium,
		UTMCampaign: p.UTMCampaign,
		OccurredAt:  time.UnixMilli(p.OccurredAt).UTC(),
	}
}

// UTM holds campaign attribution parameters.
type UTM struct {
	Source   string
	Medium   string
	Campaign string
}

// ExtractUTM reads utm_source, utm_medium and utm_campaign from the query of
// a landing URL. Unparseable URLs yield an empty UTM.
func ExtractUTM(landingURL string) UTM {
	if landingURL == "" {
		return UTM{}
	}
	parsed, err := url.Parse(landingURL)
	if err != nil {
		return UTM{}
	}
	query := parsed.Query()
	return UTM{
		Source:   truncate(strings.TrimSpace(query.Get("utm_source")), maxUTMLength),
		Medium:   truncate(strings.TrimSpace(query.Get("utm_medium")), maxUTMLength),
		Campaign: truncate(strings.TrimSpace(query.Get("utm_campaign")), maxUTMLength),
	}
}

// SanitizeReferrer strips query parameters and fragments for privacy and
// truncates the result. Unparseable referrers are kept verbatim (truncated)
// so reports can tell them apart from direct traffic.
func SanitizeReferrer(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return truncate(ref, maxMetaLength)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return truncate(parsed.String(), maxMetaLength)
}

// TruncateUserAgent truncates user agent to max 500 chars.
func TruncateUserAgent(ua string) string {
	return truncate(strings.TrimSpace(ua), maxMetaLength)
}

// ExtractCountryCode normalizes an upstream ISO 3166-1 alpha-2 code.
// Returns empty string if missing or malformed.
func ExtractCountryCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != 2 || !isAlpha(code) {
		return ""
	}
	return strings.ToUpper(code)
}

// NormalizeIP returns the canonical text form of an IP address, or "" when
// the input is not an IP. Canonical forms keep visitor counts stable across
// IPv6 spellings.
func NormalizeIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}

// truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isAlpha(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			continue
		}
		return false
	}
	return true
}
