package report

import "time"

// UnspecifiedWork is the placeholder description for rows with no description.
const UnspecifiedWork = "作業一式"

type PeriodPreset string

const (
	PeriodThisMonth PeriodPreset = "thisMonth"
	PeriodLastMonth PeriodPreset = "lastMonth"
)

// Query selects the entries a report is built from. A nil ProjectIDs slice
// means no project filter; an empty non-nil slice filters everything out
// except unassigned entries when IncludeUnassigned is set.
type Query struct {
	ClientID          string
	StartDate         time.Time
	EndDate           time.Time
	ProjectIDs        []string
	IncludeUnassigned bool
	GroupByDate       bool
}

type Row struct {
	Date        string
	Description string
	Hours       float64
	Revenue     int64
	EntryCount  int
}

type Report struct {
	ClientID      string
	ClientName    string
	PeriodStart   string
	PeriodEnd     string
	Rows          []Row
	TotalHours    float64
	HourlyRevenue int64
	FixedFeeTotal int64
	TotalRevenue  int64
}
