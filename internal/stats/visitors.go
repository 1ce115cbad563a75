package stats

import (
	"strings"

	"github.com/penshort/linkstats/internal/model"
)

// UniqueVisitors counts distinct non-empty IP addresses among in-window events.
// NAT, shared proxies and rotating IPv6 addresses make this an estimate.
func UniqueVisitors(events []*model.ClickEvent, window Window) int64 {
	seen := make(map[string]struct{})
	for _, e := range events {
		if !window.Contains(e.OccurredAt) {
			continue
		}
		ip := strings.TrimSpace(e.IPAddress)
		if ip == "" {
			continue
		}
		seen[ip] = struct{}{}
	}
	return int64(len(seen))
}
