package analytics

import "errors"

const (
	maxIDLength        = 64
	maxShortCodeLength = 50
	maxIPLength        = 45
)

// Validation errors for stream payloads.
var (
	ErrLinkIDRequired   = errors.New("link_id is required")
	ErrLinkIDTooLong    = errors.New("link_id too long")
	ErrShortCodeTooLong = errors.New("short_code too long")
	ErrInvalidCountry   = errors.New("country must be 2 letters")
	ErrOccurredAtUnset  = errors.New("occurred_at must be set")
	ErrReferrerTooLong  = errors.New("referrer too long")
	ErrUserAgentTooLong = errors.New("user_agent too long")
	ErrIPTooLong        = errors.New("ip_address too long")
	ErrUTMTooLong       = errors.New("utm parameter too long")
)

// ValidateClickEventPayload validates click event payload fields.
func ValidateClickEventPayload(payload ClickEventPayload) error {
	switch {
	case payload.LinkID == "":
		return ErrLinkIDRequired
	case len(payload.LinkID) > maxIDLength:
		return ErrLinkIDTooLong
	case len(payload.ShortCode) > maxShortCodeLength:
		return ErrShortCodeTooLong
	case payload.Country != "" && (len(payload.Country) != 2 || !isAlpha(payload.Country)):
		return ErrInvalidCountry
	case payload.OccurredAt <= 0:
		return ErrOccurredAtUnset
	case len(payload.Referrer) > maxMetaLength:
		return ErrReferrerTooLong
	case len(payload.UserAgent) > maxMetaLength:
		return ErrUserAgentTooLong
	case len(payload.IPAddress) > maxIPLength:
		return ErrIPTooLong
	case len(payload.UTMSource) > maxUTMLength,
		len(payload.UTMMedium) > maxUTMLength,
		len(payload.UTMCampaign) > maxUTMLength:
		return ErrUTMTooLong
	}
	return nil
}
