package analytics

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractUTM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want UTM
	}{
		{
			name: "all parameters",
			url:  "https://shop.example.com/sale?utm_source=newsletter&utm_medium=email&utm_campaign=spring",
			want: UTM{Source: "newsletter", Medium: "email", Campaign: "spring"},
		},
		{
			name: "partial",
			url:  "https://shop.example.com/?utm_source=twitter",
			want: UTM{Source: "twitter"},
		},
		{
			name: "trimmed and decoded",
			url:  "https://shop.example.com/?utm_campaign=%20black%20friday%20",
			want: UTM{Campaign: "black friday"},
		},
		{name: "no query", url: "https://shop.example.com/", want: UTM{}},
		{name: "empty", url: "", want: UTM{}},
		{name: "unparseable", url: "://bad url", want: UTM{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractUTM(tt.url))
		})
	}
}

func TestSanitizeReferrer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips query", "https://google.com/search?q=test&hl=en", "https://google.com/search"},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strips both", "https://example.com/path?query=1#section", "https://example.com/path"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"keeps direct marker", "Direct", "Direct"},
		{"keeps unparseable verbatim", "://example.com", "://example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeReferrer(tt.input))
		})
	}
}

func TestSanitizeReferrer_Truncates(t *testing.T) {
	t.Parallel()

	got := SanitizeReferrer("https://example.com/" + strings.Repeat("a", 600))

	assert.Len(t, got, maxMetaLength)
}

func TestTruncateUserAgent(t *testing.T) {
	t.Parallel()

	ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	assert.Equal(t, ua, TruncateUserAgent(ua))
	assert.Len(t, TruncateUserAgent(strings.Repeat("x", 600)), maxMetaLength)
	assert.Empty(t, TruncateUserAgent("  "))
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "héllo", 10, "héllo"},
		{"ascii cut", "hello", 3, "hel"},
		{"cut inside two-byte rune", "aé", 2, "a"},
		{"cut inside four-byte rune", "ab😀", 4, "ab"},
		{"cut after rune", "aéb", 3, "aé"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}

func TestTruncateUserAgent_MultiByte(t *testing.T) {
	t.Parallel()

	ua := strings.Repeat("x", maxMetaLength-1) + "é" + "tail"

	got := TruncateUserAgent(ua)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", maxMetaLength-1), got)
}

func TestExtractUTM_MultiByteValue(t *testing.T) {
	t.Parallel()

	got := ExtractUTM("https://example.com/?utm_campaign=a" + strings.Repeat("ü", maxUTMLength))

	assert.True(t, utf8.ValidString(got.Campaign))
	assert.Len(t, got.Campaign, maxUTMLength-1)
}

func TestExtractCountryCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"us", "US"},
		{"VN", "VN"},
		{" gb ", "GB"},
		{"", ""},
		{"USA", ""},
		{"U", ""},
		{"1A", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractCountryCode(tt.input))
		})
	}
}

func TestNormalizeIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "203.0.113.7", NormalizeIP(" 203.0.113.7 "))
	assert.Equal(t, "2001:db8::1", NormalizeIP("2001:0db8:0000:0000:0000:0000:0000:0001"))
	assert.Empty(t, NormalizeIP("not-an-ip"))
	assert.Empty(t, NormalizeIP(""))
}

func TestClickEventPayload_ToClickEvent(t *testing.T) {
	t.Parallel()

	occurred := time.Date(2024, 3, 13, 12, 30, 0, 0, time.UTC)
	payload := ClickEventPayload{
		LinkID:      "link-1",
		ShortCode:   "abc123",
		Referrer:    "https://google.com/",
		UserAgent:   "curl/8.0",
		IPAddress:   "203.0.113.7",
		Country:     "US",
		UTMSource:   "newsletter",
		UTMMedium:   "email",
		UTMCampaign: "spring",
		OccurredAt:  occurred.UnixMilli(),
	}

	event := payload.ToClickEvent("01HX", "1710333000000-0")

	assert.Equal(t, "01HX", event.ID)
	assert.Equal(t, "1710333000000-0", event.EventID)
	assert.Equal(t, "link-1", event.LinkID)
	assert.Equal(t, "abc123", event.ShortCode)
	assert.Equal(t, "203.0.113.7", event.IPAddress)
	assert.Equal(t, "spring", event.UTMCampaign)
	assert.Equal(t, occurred, event.OccurredAt)
}
