package domain

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date format used by report ranges and periods.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar dates in one timezone. From and
// To hold midnight of their day.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Start is the first instant inside the range.
func (r DateRange) Start() time.Time { return r.From }

// End is the first instant after the range.
func (r DateRange) End() time.Time { return r.To.AddDate(0, 0, 1) }

// Contains reports whether t falls on one of the range's dates.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start()) && t.Before(r.End())
}

// Location is the timezone the range's dates are expressed in.
func (r DateRange) Location() *time.Location { return r.From.Location() }

func (r DateRange) FromString() string { return r.From.Format(DateLayout) }
func (r DateRange) ToString() string   { return r.To.Format(DateLayout) }

// PeriodGroup is the calendar bucket size of a histogram.
type PeriodGroup string

const (
	PeriodMonthly   PeriodGroup = "monthly"
	PeriodQuarterly PeriodGroup = "quarterly"
	PeriodYearly    PeriodGroup = "yearly"
)

// ParsePeriodGroup maps a request value to a group; anything unrecognised is monthly.
func ParsePeriodGroup(s string) PeriodGroup {
	switch PeriodGroup(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodYearly:
		return PeriodYearly
	case PeriodQuarterly:
		return PeriodQuarterly
	default:
		return PeriodMonthly
	}
}

// Truncate returns the first day of the bucket containing t, in loc.
func (g PeriodGroup) Truncate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, _ := t.Date()
	switch g {
	case PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	case PeriodQuarterly:
		first := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, first, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
}

// SQLUnit is the date_trunc unit for g.
func (g PeriodGroup) SQLUnit() string {
	switch g {
	case PeriodYearly:
		return "year"
	case PeriodQuarterly:
		return "quarter"
	default:
		return "month"
	}
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

type TypeStatusCount struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type StageCount struct {
	Stage string `json:"current_stage"`
	Count int64  `json:"count"`
}

type OverallStatusCount struct {
	OverallStatus string `json:"overall_status"`
	Count         int64  `json:"count"`
}

type OfficeTotal struct {
	OfficeID   string `json:"to_office_id"`
	OfficeName string `json:"to_office_name"`
	OfficeCode string `json:"to_office_code"`
	Total      int64  `json:"total"`
}

type OfficeStatusCount struct {
	OfficeID   string `json:"to_office_id"`
	OfficeName string `json:"to_office_name"`
	OfficeCode string `json:"to_office_code"`
	Status     string `json:"status"`
	Count      int64  `json:"count"`
}

// Summary is the dashboard headline. ActiveCases ignores the date range.
type Summary struct {
	From              string        `json:"from"`
	To                string        `json:"to"`
	TotalDiasporas    int64         `json:"total_diasporas"`
	ActiveCases       int64         `json:"active_cases"`
	ReferralsByStatus []StatusCount `json:"referrals_by_status"`
	PurposesBreakdown []TypeCount   `json:"purposes_breakdown"`
}

type PeriodReport struct {
	Group PeriodGroup   `json:"group"`
	From  string        `json:"from"`
	To    string        `json:"to"`
	Rows  []PeriodCount `json:"rows"`
}

type PurposeProgressReport struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Rows []TypeStatusCount `json:"rows"`
}

type CaseStatusReport struct {
	ByStage         []StageCount         `json:"by_stage"`
	ByOverallStatus []OverallStatusCount `json:"by_overall_status"`
}

type OfficeLoadReport struct {
	From     string              `json:"from"`
	To       string              `json:"to"`
	Totals   []OfficeTotal       `json:"totals"`
	ByStatus []OfficeStatusCount `json:"by_status"`
}
