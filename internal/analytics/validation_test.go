package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPayload() ClickEventPayload {
	return ClickEventPayload{
		LinkID:     "link-1",
		ShortCode:  "abc123",
		Referrer:   "https://example.com/path",
		UserAgent:  "TestAgent/1.0",
		IPAddress:  "203.0.113.7",
		Country:    "US",
		UTMSource:  "newsletter",
		OccurredAt: time.Now().UnixMilli(),
	}
}

func TestValidateClickEventPayload(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateClickEventPayload(validPayload()))

	tests := []struct {
		name   string
		mutate func(p *ClickEventPayload)
		want   error
	}{
		{"missing link id", func(p *ClickEventPayload) { p.LinkID = "" }, ErrLinkIDRequired},
		{"long link id", func(p *ClickEventPayload) { p.LinkID = strings.Repeat("l", 65) }, ErrLinkIDTooLong},
		{"long short code", func(p *ClickEventPayload) { p.ShortCode = strings.Repeat("s", 51) }, ErrShortCodeTooLong},
		{"three letter country", func(p *ClickEventPayload) { p.Country = "USA" }, ErrInvalidCountry},
		{"numeric country", func(p *ClickEventPayload) { p.Country = "12" }, ErrInvalidCountry},
		{"missing time", func(p *ClickEventPayload) { p.OccurredAt = 0 }, ErrOccurredAtUnset},
		{"long referrer", func(p *ClickEventPayload) { p.Referrer = strings.Repeat("r", 501) }, ErrReferrerTooLong},
		{"long user agent", func(p *ClickEventPayload) { p.UserAgent = strings.Repeat("u", 501) }, ErrUserAgentTooLong},
		{"long ip", func(p *ClickEventPayload) { p.IPAddress = strings.Repeat("1", 46) }, ErrIPTooLong},
		{"long utm", func(p *ClickEventPayload) { p.UTMMedium = strings.Repeat("m", 201) }, ErrUTMTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload := validPayload()
			tt.mutate(&payload)

			assert.ErrorIs(t, ValidateClickEventPayload(payload), tt.want)
		})
	}
}

func TestValidateClickEventPayload_OptionalFieldsMayBeEmpty(t *testing.T) {
	t.Parallel()

	payload := ClickEventPayload{LinkID: "link-1", OccurredAt: 1}

	assert.NoError(t, ValidateClickEventPayload(payload))
}
