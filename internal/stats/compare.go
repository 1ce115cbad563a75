package stats

import (
	"math"
	"time"

	"github.com/penshort/linkstats/internal/model"
)

// Period is a current period [Start, Now] and the equally sized
// period before it, [PreviousStart, Start).
type Period struct {
	PreviousStart time.Time
	Start         time.Time
	Now           time.Time
}

// DayPeriod compares today so far with yesterday.
func DayPeriod(now time.Time, loc *time.Location) Period {
	today := startOfDay(now, loc)
	return Period{
		PreviousStart: addDays(today, -1),
		Start:         today,
		Now:           now,
	}
}

// WeekPeriod compares this week so far with last week.
// Weeks begin on weekStart.
func WeekPeriod(now time.Time, loc *time.Location, weekStart time.Weekday) Period {
	today := startOfDay(now, loc)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	thisWeek := addDays(today, -offset)
	return Period{
		PreviousStart: addDays(thisWeek, -7),
		Start:         thisWeek,
		Now:           now,
	}
}

// PercentChange returns round(|current-previous| / previous * 100).
// It returns nil when previous is zero, where a percentage is undefined.
func PercentChange(current, previous int64) *int {
	if previous <= 0 {
		return nil
	}
	diff := current - previous
	if diff < 0 {
		diff = -diff
	}
	pct := int(math.Round(float64(diff) / float64(previous) * 100))
	return &pct
}

// TrendOf returns the direction of change from previous to current.
func TrendOf(current, previous int64) string {
	switch {
	case current > previous:
		return model.TrendUp
	case current < previous:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// Compare counts events in both halves of p.
func Compare(events []*model.ClickEvent, p Period) model.PeriodComparison {
	var current, previous int64
	for _, e := range events {
		t := e.OccurredAt
		switch {
		case !t.Before(p.Start) && !t.After(p.Now):
			current++
		case !t.Before(p.PreviousStart) && t.Before(p.Start):
			previous++
		}
	}

	return model.PeriodComparison{
		Current:       current,
		Previous:      previous,
		ChangePercent: PercentChange(current, previous),
		Trend:         TrendOf(current, previous),
	}
}
