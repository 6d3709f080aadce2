package stats

// UncategorizedBucket collects entries that carry no category.
const UncategorizedBucket = "未分類"

type ClientStats struct {
	ClientID   string
	ClientName string
	Hours      float64
	Revenue    int64
	EntryCount int
}

type CategoryStats struct {
	Category   string
	Hours      float64
	EntryCount int
}

// PieSlice is a proportional hours breakdown entry, filtered to slices with
// time on them.
type PieSlice struct {
	Label string
	Hours float64
}

type DailyHours struct {
	// Date is the calendar day in ISO form (2006-01-02).
	Date  string
	Hours float64
}

type MonthlySummary struct {
	YearMonth    string
	TotalHours   float64
	TotalRevenue int64
	Clients      []ClientStats
	Categories   []CategoryStats
	Pie          []PieSlice
	Daily        []DailyHours
}

// GoalProgress compares the running month against the configured goals.
// Percentages are not capped at 100.
type GoalProgress struct {
	YearMonth      string
	Hours          float64
	GoalHours      float64
	HoursPercent   float64
	Revenue        int64
	GoalRevenue    int64
	RevenuePercent float64
}

// ExportRow is one line of the CSV export.
type ExportRow struct {
	Date        string
	ClientName  string
	Description string
	Hours       float64
}
