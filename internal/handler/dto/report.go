package dto

import (
	"strconv"
	"strings"
)

// ReportQuery holds the query parameters of the report endpoints.
type ReportQuery struct {
	// Days is the trailing window length. Zero selects the server default.
	Days int
	// OwnerID lets admin keys request another account's report.
	OwnerID string
}

// ParseReportQuery reads days and owner_id. A non-numeric days is an error.
func ParseReportQuery(get func(string) string) (ReportQuery, error) {
	q := ReportQuery{OwnerID: strings.TrimSpace(get("owner_id"))}
	if raw := strings.TrimSpace(get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return ReportQuery{}, err
		}
		q.Days = days
	}
	return q, nil
}
