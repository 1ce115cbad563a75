package stats

import (
	"cmp"
	"slices"
	"strings"

	"github.com/penshort/linkstats/internal/model"
)

// KeyFunc extracts a breakdown key from an event.
// Returning false leaves the event out of that breakdown.
type KeyFunc[K comparable] func(e *model.ClickEvent) (K, bool)

// Count is a key and the number of events that produced it.
type Count[K comparable] struct {
	Key   K
	Count int64
}

// TopN counts events per key and returns the most frequent keys first.
// Ties keep the order in which keys were first seen. limit <= 0 keeps all keys.
func TopN[K comparable](events []*model.ClickEvent, key KeyFunc[K], limit int) []Count[K] {
	index := make(map[K]int)
	counts := make([]Count[K], 0)

	for _, e := range events {
		k, ok := key(e)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(counts)
			index[k] = i
			counts = append(counts, Count[K]{Key: k})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b Count[K]) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// Key functions used by the report.

func referrerKey(e *model.ClickEvent) (string, bool) {
	return NormalizeReferrer(e.Referrer)
}

func countryKey(e *model.ClickEvent) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(e.Country))
	return code, code != ""
}

func fieldKey(field func(*model.ClickEvent) string) KeyFunc[string] {
	return func(e *model.ClickEvent) (string, bool) {
		v := strings.TrimSpace(field(e))
		return v, v != ""
	}
}

func deviceKey(e *model.ClickEvent) (string, bool) {
	if strings.TrimSpace(e.UserAgent) == "" {
		return "", false
	}
	return ClassifyDevice(e.UserAgent), true
}

func browserKey(e *model.ClickEvent) (string, bool) {
	if strings.TrimSpace(e.UserAgent) == "" {
		return "", false
	}
	return ClassifyBrowser(e.UserAgent), true
}

func osKey(e *model.ClickEvent) (string, bool) {
	name := ClassifyOS(e.UserAgent)
	return name, name != ""
}

func toEntries(counts []Count[string]) []model.BreakdownEntry {
	entries := make([]model.BreakdownEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, model.BreakdownEntry{Name: c.Key, Count: c.Count})
	}
	return entries
}
