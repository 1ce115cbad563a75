package model

import "time"

// ScopeKind identifies what a report is computed over.
type ScopeKind string

const (
	ScopeKindLink     ScopeKind = "link"
	ScopeKindCampaign ScopeKind = "campaign"
	ScopeKindAccount  ScopeKind = "account"
)

// IsValid reports whether k is a known scope kind.
func (k ScopeKind) IsValid() bool {
	switch k {
	case ScopeKindLink, ScopeKindCampaign, ScopeKindAccount:
		return true
	}
	return false
}

// ReportScope names the set of links a report covers.
// OwnerID restricts resolution to links owned by the caller.
type ReportScope struct {
	Kind    ScopeKind `json:"kind"`
	ID      string    `json:"id,omitempty"`
	OwnerID string    `json:"-"`
}

// Trend values for period comparisons.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// ReportWindow describes the time range a report was computed for.
type ReportWindow struct {
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Days     int       `json:"days"`
	Timezone string    `json:"timezone"`
}

// DailyCount is the number of clicks on one calendar day.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD in the report timezone
	Count int64  `json:"count"`
}

// BreakdownEntry is one ranked row of a categorical breakdown.
type BreakdownEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Count       int64  `json:"count"`
}

// PeriodComparison compares a current period to the one before it.
// ChangePercent is nil when the previous period had no clicks.
type PeriodComparison struct {
	Current       int64  `json:"current"`
	Previous      int64  `json:"previous"`
	ChangePercent *int   `json:"change_percent"`
	Trend         string `json:"trend"`
}

// Report is the full statistics payload rendered by the dashboard.
type Report struct {
	Scope  ReportScope  `json:"scope"`
	Window ReportWindow `json:"window"`

	TotalClicks int64 `json:"total_clicks"`
	// UniqueVisitors counts distinct IP addresses. Shared and rotating
	// addresses make this an approximation.
	UniqueVisitors int64 `json:"unique_visitors"`

	Daily     []DailyCount `json:"daily"`
	HourOfDay [24]int64    `json:"hour_of_day"`
	DayOfWeek [7]int64     `json:"day_of_week"` // index 0 is Sunday

	Referrers        []BreakdownEntry `json:"referrers"`
	Countries        []BreakdownEntry `json:"countries"`
	UTMSources       []BreakdownEntry `json:"utm_sources"`
	UTMMediums       []BreakdownEntry `json:"utm_mediums"`
	UTMCampaigns     []BreakdownEntry `json:"utm_campaigns"`
	Devices          []BreakdownEntry `json:"devices"`
	Browsers         []BreakdownEntry `json:"browsers"`
	OperatingSystems []BreakdownEntry `json:"operating_systems"`

	Today    PeriodComparison `json:"today"`
	ThisWeek PeriodComparison `json:"this_week"`

	GeneratedAt time.Time `json:"generated_at"`
}
