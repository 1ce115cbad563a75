package stats

import (
	"time"

	"github.com/penshort/linkstats/internal/model"
)

// DateLayout is the format of DailyCount.Date.
const DateLayout = "2006-01-02"

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// LastDays returns the window covering today and the days-1 calendar days
// before it in loc, ending at now. Its daily series has exactly days entries.
func LastDays(now time.Time, days int, loc *time.Location) Window {
	if days < 1 {
		return Window{Start: now, End: now}
	}
	return Window{Start: addDays(startOfDay(now, loc), 1-days), End: now}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func addDays(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, day.Location())
}

// DailySeries counts in-window events per calendar day in loc.
//
// Every day the window touches is present, oldest first, with zero counts
// for days without clicks. When maxDays > 0 only the most recent maxDays
// entries are returned.
func DailySeries(events []*model.ClickEvent, window Window, loc *time.Location, maxDays int) []model.DailyCount {
	series := make([]model.DailyCount, 0)
	if !window.End.After(window.Start) {
		return series
	}

	first := startOfDay(window.Start, loc)
	last := startOfDay(window.End.Add(-time.Nanosecond), loc)

	index := make(map[string]int)
	for day := first; !day.After(last); day = addDays(day, 1) {
		key := day.Format(DateLayout)
		index[key] = len(series)
		series = append(series, model.DailyCount{Date: key})
	}

	for _, e := range events {
		if !window.Contains(e.OccurredAt) {
			continue
		}
		if i, ok := index[e.OccurredAt.In(loc).Format(DateLayout)]; ok {
			series[i].Count++
		}
	}

	if maxDays > 0 && len(series) > maxDays {
		series = series[len(series)-maxDays:]
	}
	return series
}

// HourOfDay counts in-window events by local hour (0-23).
func HourOfDay(events []*model.ClickEvent, window Window, loc *time.Location) [24]int64 {
	var buckets [24]int64
	for _, e := range events {
		if window.Contains(e.OccurredAt) {
			buckets[e.OccurredAt.In(loc).Hour()]++
		}
	}
	return buckets
}

// DayOfWeek counts in-window events by local weekday, Sunday first.
func DayOfWeek(events []*model.ClickEvent, window Window, loc *time.Location) [7]int64 {
	var buckets [7]int64
	for _, e := range events {
		if window.Contains(e.OccurredAt) {
			buckets[e.OccurredAt.In(loc).Weekday()]++
		}
	}
	return buckets
}
