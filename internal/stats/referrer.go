// Package stats turns a window of raw click events into a dashboard report.
//
// Everything in this package except Engine.Build is pure: the same events,
// window, clock reading and options always produce the same report.
package stats

import (
	"net/url"
	"strings"
)

// DirectReferrer labels clicks that arrived without a referring page.
const DirectReferrer = "Direct"

// NormalizeReferrer maps a raw referrer to its breakdown label.
//
// Empty and "Direct" referrers become DirectReferrer. Anything else must be
// an absolute URL with a host; the label is the lowercased hostname with one
// leading "www." removed. The second return is false when the referrer cannot
// be classified, in which case it is left out of the referrer breakdown.
func NormalizeReferrer(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, DirectReferrer) {
		return DirectReferrer, true
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", false
	}

	return host, true
}
