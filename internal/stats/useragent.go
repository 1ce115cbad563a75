package stats

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Device classes.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceUnknown = "Unknown"
)

// Browser families.
const (
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserUnknown = "Unknown"
)

type uaRule struct {
	label  string
	tokens []string
}

// Order matters: tablets also carry mobile tokens.
var deviceRules = []uaRule{
	{DeviceTablet, []string{"tablet", "ipad"}},
	{DeviceMobile, []string{"mobile", "android", "iphone"}},
}

// Order matters: Edge and Opera UAs contain "chrome", Chrome UAs contain "safari".
var browserRules = []uaRule{
	{BrowserEdge, []string{"edg"}},
	{BrowserOpera, []string{"opera", "opr"}},
	{BrowserChrome, []string{"chrome"}},
	{BrowserFirefox, []string{"firefox"}},
	{BrowserSafari, []string{"safari"}},
}

func matchRule(ua string, rules []uaRule, fallback string) string {
	lower := strings.ToLower(ua)
	for _, rule := range rules {
		for _, token := range rule.tokens {
			if strings.Contains(lower, token) {
				return rule.label
			}
		}
	}
	return fallback
}

// ClassifyDevice returns the device class for a user-agent string.
// An empty user agent is DeviceUnknown.
func ClassifyDevice(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return DeviceUnknown
	}
	return matchRule(ua, deviceRules, DeviceDesktop)
}

// ClassifyBrowser returns the browser family for a user-agent string.
func ClassifyBrowser(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return BrowserUnknown
	}
	return matchRule(ua, browserRules, BrowserUnknown)
}

// ClassifyOS returns the operating system name, or "" when none is recognized.
func ClassifyOS(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	return user_agent.New(ua).OSInfo().Name
}
