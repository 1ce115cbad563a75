package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/penshort/linkstats/internal/model"
)

// ErrInvalidDays is returned when a report window is not at least one day long.
var ErrInvalidDays = errors.New("report window must be at least one day")

// EventSource loads raw click events.
// Events must be returned newest first; tie order in breakdowns follows it.
type EventSource interface {
	ListClickEvents(ctx context.Context, linkIDs []string, from, to time.Time) ([]*model.ClickEvent, error)
}

// LinkResolver maps a report scope to the ids of the links it covers.
type LinkResolver interface {
	ResolveScope(ctx context.Context, scope model.ReportScope) ([]string, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// Options controls bucketing and truncation.
type Options struct {
	Location  *time.Location
	WeekStart time.Weekday
	TopN      int // breakdown length; <= 0 keeps every key
}

// DefaultOptions matches the dashboard: UTC, Sunday weeks, top 10.
func DefaultOptions() Options {
	return Options{
		Location:  time.UTC,
		WeekStart: time.Sunday,
		TopN:      10,
	}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Aggregate builds a report from already fetched events.
//
// Totals, series and breakdowns only count events inside window, and the
// daily series always covers the whole window so its counts add up to
// TotalClicks. The day and week comparisons are taken relative to now and
// may use events from before window.Start.
func Aggregate(events []*model.ClickEvent, window Window, now time.Time, opts Options) *model.Report {
	loc := opts.location()

	inWindow := make([]*model.ClickEvent, 0, len(events))
	for _, e := range events {
		if window.Contains(e.OccurredAt) {
			inWindow = append(inWindow, e)
		}
	}

	utmSource := fieldKey(func(e *model.ClickEvent) string { return e.UTMSource })
	utmMedium := fieldKey(func(e *model.ClickEvent) string { return e.UTMMedium })
	utmCampaign := fieldKey(func(e *model.ClickEvent) string { return e.UTMCampaign })
	daily := DailySeries(inWindow, window, loc, 0)

	return &model.Report{
		Window: model.ReportWindow{
			From:     window.Start.In(loc),
			To:       window.End.In(loc),
			Days:     len(daily),
			Timezone: loc.String(),
		},
		TotalClicks:    int64(len(inWindow)),
		UniqueVisitors: UniqueVisitors(inWindow, window),

		Daily:     daily,
		HourOfDay: HourOfDay(inWindow, window, loc),
		DayOfWeek: DayOfWeek(inWindow, window, loc),

		Referrers:        toEntries(TopN(inWindow, referrerKey, opts.TopN)),
		Countries:        withCountryNames(toEntries(TopN(inWindow, countryKey, opts.TopN))),
		UTMSources:       toEntries(TopN(inWindow, utmSource, opts.TopN)),
		UTMMediums:       toEntries(TopN(inWindow, utmMedium, opts.TopN)),
		UTMCampaigns:     toEntries(TopN(inWindow, utmCampaign, opts.TopN)),
		Devices:          toEntries(TopN(inWindow, deviceKey, opts.TopN)),
		Browsers:         toEntries(TopN(inWindow, browserKey, opts.TopN)),
		OperatingSystems: toEntries(TopN(inWindow, osKey, opts.TopN)),

		Today:    Compare(events, DayPeriod(now, loc)),
		ThisWeek: Compare(events, WeekPeriod(now, loc, opts.WeekStart)),

		GeneratedAt: now.UTC(),
	}
}

// Engine resolves report scopes, loads their events and aggregates them.
type Engine struct {
	events EventSource
	links  LinkResolver
	opts   Options
	clock  Clock
	logger *slog.Logger
}

// NewEngine creates an Engine using the wall clock.
func NewEngine(events EventSource, links LinkResolver, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		events: events,
		links:  links,
		opts:   opts,
		clock:  ClockFunc(time.Now),
		logger: logger.With("component", "stats.engine"),
	}
}

// SetClock overrides the clock used to anchor report windows.
func (e *Engine) SetClock(clock Clock) {
	if clock != nil {
		e.clock = clock
	}
}

// Build computes the report for scope over the last days calendar days,
// today included.
//
// A scope without links yields an empty report without querying events.
// Otherwise events are fetched once, far enough back to also cover last
// week for the week comparison. Fetch errors are returned, never an empty
// report.
func (e *Engine) Build(ctx context.Context, scope model.ReportScope, days int) (*model.Report, error) {
	if days < 1 {
		return nil, ErrInvalidDays
	}

	now := e.clock.Now()
	window := LastDays(now, days, e.opts.location())

	linkIDs, err := e.links.ResolveScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	var events []*model.ClickEvent
	if len(linkIDs) > 0 {
		from := window.Start
		if lastWeek := WeekPeriod(now, e.opts.location(), e.opts.WeekStart).PreviousStart; lastWeek.Before(from) {
			from = lastWeek
		}

		events, err = e.events.ListClickEvents(ctx, linkIDs, from, now)
		if err != nil {
			return nil, fmt.Errorf("list click events: %w", err)
		}
	}

	report := Aggregate(events, window, now, e.opts)
	report.Scope = scope

	e.logger.Debug("report built",
		"scope", scope.Kind,
		"scope_id", scope.ID,
		"links", len(linkIDs),
		"events_fetched", len(events),
		"events_in_window", report.TotalClicks,
	)

	return report, nil
}
