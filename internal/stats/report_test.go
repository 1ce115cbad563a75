package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penshort/linkstats/internal/model"
)

type fakeEventSource struct {
	events []*model.ClickEvent
	err    error

	calls   int
	linkIDs []string
	from    time.Time
	to      time.Time
}

func (f *fakeEventSource) ListClickEvents(_ context.Context, linkIDs []string, from, to time.Time) ([]*model.ClickEvent, error) {
	f.calls++
	f.linkIDs = linkIDs
	f.from = from
	f.to = to
	return f.events, f.err
}

type fakeResolver struct {
	ids []string
	err error
}

func (f *fakeResolver) ResolveScope(context.Context, model.ReportScope) ([]string, error) {
	return f.ids, f.err
}

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func newTestEngine(source EventSource, resolver LinkResolver, now time.Time) *Engine {
	engine := NewEngine(source, resolver, DefaultOptions(), nil)
	engine.SetClock(fixedClock(now))
	return engine
}

func TestAggregate_EmptyReportShape(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)

	report := Aggregate(nil, LastDays(now, 30, time.UTC), now, DefaultOptions())

	assert.Zero(t, report.TotalClicks)
	assert.Zero(t, report.UniqueVisitors)
	assert.Len(t, report.Daily, 30)
	for _, day := range report.Daily {
		assert.Zero(t, day.Count)
	}
	assert.Equal(t, [24]int64{}, report.HourOfDay)
	assert.Equal(t, [7]int64{}, report.DayOfWeek)
	for _, breakdown := range [][]model.BreakdownEntry{
		report.Referrers, report.Countries, report.UTMSources, report.UTMMediums,
		report.UTMCampaigns, report.Devices, report.Browsers, report.OperatingSystems,
	} {
		assert.NotNil(t, breakdown)
		assert.Empty(t, breakdown)
	}
	assert.Nil(t, report.Today.ChangePercent)
	assert.Equal(t, model.TrendFlat, report.Today.Trend)
	assert.Equal(t, model.TrendFlat, report.ThisWeek.Trend)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{}, decoded["referrers"])
	assert.Nil(t, decoded["today"].(map[string]any)["change_percent"])
}

func TestAggregate_BreakdownsAndTotals(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)
	window := LastDays(now, 7, time.UTC)
	events := []*model.ClickEvent{
		{Referrer: "https://www.google.com/search", Country: "US", UserAgent: uaChromeWindows, IPAddress: "1.1.1.1", UTMSource: "newsletter", UTMMedium: "email", OccurredAt: utc(2024, 3, 13, 10, 0)},
		{Referrer: "https://google.com", Country: "US", UserAgent: uaSafariIPhone, IPAddress: "2.2.2.2", UTMSource: "newsletter", OccurredAt: utc(2024, 3, 12, 10, 0)},
		{Referrer: "", Country: "DE", UserAgent: uaSafariIPad, IPAddress: "1.1.1.1", UTMCampaign: "spring", OccurredAt: utc(2024, 3, 11, 10, 0)},
		{Referrer: "garbage", Country: "", UserAgent: "", IPAddress: "", OccurredAt: utc(2024, 3, 10, 10, 0)},
		{Referrer: "https://old.example.com", Country: "FR", OccurredAt: utc(2024, 3, 1, 10, 0)}, // outside window
	}

	report := Aggregate(events, window, now, DefaultOptions())

	assert.EqualValues(t, 4, report.TotalClicks)
	assert.EqualValues(t, 2, report.UniqueVisitors)
	assert.Equal(t, []model.BreakdownEntry{
		{Name: "google.com", Count: 2},
		{Name: DirectReferrer, Count: 1},
	}, report.Referrers)
	assert.Equal(t, []model.BreakdownEntry{
		{Name: "US", DisplayName: "United States", Count: 2},
		{Name: "DE", DisplayName: "Germany", Count: 1},
	}, report.Countries)
	assert.Equal(t, []model.BreakdownEntry{{Name: "newsletter", Count: 2}}, report.UTMSources)
	assert.Equal(t, []model.BreakdownEntry{{Name: "email", Count: 1}}, report.UTMMediums)
	assert.Equal(t, []model.BreakdownEntry{{Name: "spring", Count: 1}}, report.UTMCampaigns)
	assert.Equal(t, []model.BreakdownEntry{
		{Name: DeviceDesktop, Count: 1},
		{Name: DeviceMobile, Count: 1},
		{Name: DeviceTablet, Count: 1},
	}, report.Devices)
	assert.Equal(t, []model.BreakdownEntry{
		{Name: BrowserSafari, Count: 2},
		{Name: BrowserChrome, Count: 1},
	}, report.Browsers)

	var daily int64
	for _, day := range report.Daily {
		daily += day.Count
	}
	assert.Equal(t, report.TotalClicks, daily)
	assert.Equal(t, "2024-03-13", report.Daily[len(report.Daily)-1].Date)
	assert.Equal(t, 7, report.Window.Days)
	assert.Equal(t, "UTC", report.Window.Timezone)
	assert.Equal(t, now, report.GeneratedAt)
}

func TestAggregate_TruncatesBreakdowns(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)
	var events []*model.ClickEvent
	for i, host := range []string{"a", "b", "c", "d", "e"} {
		for n := 0; n <= i; n++ {
			events = append(events, &model.ClickEvent{Referrer: "https://" + host + ".com", OccurredAt: now.Add(-time.Hour)})
		}
	}
	opts := DefaultOptions()
	opts.TopN = 3

	report := Aggregate(events, LastDays(now, 1, time.UTC), now, opts)

	require.Len(t, report.Referrers, 3)
	assert.Equal(t, "e.com", report.Referrers[0].Name)
	assert.Equal(t, "c.com", report.Referrers[2].Name)
	assert.EqualValues(t, 15, report.TotalClicks)
}

func TestAggregate_ComparisonsLookBeforeWindow(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0) // Wednesday
	events := []*model.ClickEvent{
		at(utc(2024, 3, 13, 9, 0)),
		at(utc(2024, 3, 12, 9, 0)),
		at(utc(2024, 3, 12, 10, 0)),
		at(utc(2024, 3, 5, 9, 0)), // last week
	}

	report := Aggregate(events, LastDays(now, 1, time.UTC), now, DefaultOptions())

	assert.EqualValues(t, 1, report.TotalClicks) // window starts 03-13 00:00
	assert.EqualValues(t, 1, report.Today.Current)
	assert.EqualValues(t, 2, report.Today.Previous)
	assert.Equal(t, model.TrendDown, report.Today.Trend)
	assert.EqualValues(t, 3, report.ThisWeek.Current)
	assert.EqualValues(t, 1, report.ThisWeek.Previous)
	require.NotNil(t, report.ThisWeek.ChangePercent)
	assert.Equal(t, 200, *report.ThisWeek.ChangePercent)
}

func TestAggregate_DailySeriesAddsUpToTotal(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		days int
		opts Options
	}{
		{"default options", utc(2024, 3, 31, 18, 0), 30, DefaultOptions()},
		{"single day", utc(2024, 3, 31, 18, 0), 1, DefaultOptions()},
		{"longer than a month", utc(2024, 3, 31, 18, 0), 90, DefaultOptions()},
		{"across dst change", utc(2024, 3, 31, 18, 0), 30, Options{Location: berlin, TopN: 10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			window := LastDays(tt.now, tt.days, tt.opts.Location)
			events := []*model.ClickEvent{
				at(window.Start.Add(time.Hour)),
				at(window.Start.Add(-time.Hour)), // before window
				at(tt.now.Add(-time.Hour)),
			}

			report := Aggregate(events, window, tt.now, tt.opts)

			var daily int64
			for _, day := range report.Daily {
				daily += day.Count
			}
			assert.EqualValues(t, 2, report.TotalClicks)
			assert.Equal(t, report.TotalClicks, daily)
			assert.Len(t, report.Daily, tt.days)
			assert.Equal(t, tt.days, report.Window.Days)
		})
	}
}

func TestEngineBuild_EmptyScopeSkipsFetch(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)
	source := &fakeEventSource{}
	engine := newTestEngine(source, &fakeResolver{}, now)
	scope := model.ReportScope{Kind: model.ScopeKindCampaign, ID: "camp-1"}

	report, err := engine.Build(context.Background(), scope, 30)

	require.NoError(t, err)
	assert.Zero(t, source.calls)
	assert.Zero(t, report.TotalClicks)
	assert.Len(t, report.Daily, 30)
	assert.Equal(t, scope, report.Scope)
}

func TestEngineBuild_SingleFetchCoversLastWeek(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)

	tests := []struct {
		name string
		days int
		from time.Time
	}{
		{"short window reaches back to last week", 1, utc(2024, 3, 3, 0, 0)},
		{"long window starts at window", 30, utc(2024, 2, 13, 0, 0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := &fakeEventSource{events: []*model.ClickEvent{at(now.Add(-time.Hour))}}
			engine := newTestEngine(source, &fakeResolver{ids: []string{"l1", "l2"}}, now)

			report, err := engine.Build(context.Background(), model.ReportScope{Kind: model.ScopeKindAccount}, tt.days)

			require.NoError(t, err)
			assert.Equal(t, 1, source.calls)
			assert.Equal(t, []string{"l1", "l2"}, source.linkIDs)
			assert.Equal(t, tt.from, source.from)
			assert.Equal(t, now, source.to)
			assert.EqualValues(t, 1, report.TotalClicks)
		})
	}
}

func TestEngineBuild_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	engine := newTestEngine(&fakeEventSource{err: boom}, &fakeResolver{ids: []string{"l1"}}, utc(2024, 3, 13, 15, 0))

	report, err := engine.Build(context.Background(), model.ReportScope{Kind: model.ScopeKindLink, ID: "l1"}, 30)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, boom)
}

func TestEngineBuild_ResolveErrorPropagates(t *testing.T) {
	t.Parallel()

	notFound := errors.New("not found")
	source := &fakeEventSource{}
	engine := newTestEngine(source, &fakeResolver{err: notFound}, utc(2024, 3, 13, 15, 0))

	_, err := engine.Build(context.Background(), model.ReportScope{Kind: model.ScopeKindLink, ID: "l1"}, 30)

	assert.ErrorIs(t, err, notFound)
	assert.Zero(t, source.calls)
}

func TestEngineBuild_RejectsNonPositiveDays(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&fakeEventSource{}, &fakeResolver{}, utc(2024, 3, 13, 15, 0))

	_, err := engine.Build(context.Background(), model.ReportScope{Kind: model.ScopeKindAccount}, 0)

	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestAggregate_Deterministic(t *testing.T) {
	t.Parallel()

	now := utc(2024, 3, 13, 15, 0)
	events := []*model.ClickEvent{
		{Referrer: "https://b.com", Country: "VN", UserAgent: uaFirefoxLinux, IPAddress: "1", OccurredAt: utc(2024, 3, 13, 1, 0)},
		{Referrer: "https://a.com", Country: "JP", UserAgent: uaChromeAndroid, IPAddress: "2", OccurredAt: utc(2024, 3, 12, 1, 0)},
	}

	first := Aggregate(events, LastDays(now, 30, time.UTC), now, DefaultOptions())
	second := Aggregate(events, LastDays(now, 30, time.UTC), now, DefaultOptions())

	assert.Equal(t, first, second)
}

func TestCountryName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "United States", CountryName("US"))
	assert.Equal(t, "Germany", CountryName("DE"))
	assert.Empty(t, CountryName("ZZ"))
}
