package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mao65123/logmee/internal/utils"
	"github.com/mao65123/logmee/pkg/state"
)

// SnapshotProvider hands out the current workspace snapshot for the user on
// the context.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (state.Snapshot, error)
}

type ReportService interface {
	BuildReport(ctx context.Context, query Query) (Report, error)
	ResolvePeriod(ctx context.Context, clientId string, preset PeriodPreset) (time.Time, time.Time, error)
}

type ReportServiceImpl struct {
	snapshots SnapshotProvider
	clock     utils.Clock
	loc       *time.Location
}

func NewReportServiceImpl(snapshots SnapshotProvider, loc *time.Location) *ReportServiceImpl {
	return &ReportServiceImpl{
		snapshots: snapshots,
		clock:     &utils.SystemClock{},
		loc:       loc,
	}
}

// ResolvePeriod resolves a period shortcut against the client's closing date.
// A missing client falls back to the calendar month.
func (s *ReportServiceImpl) ResolvePeriod(ctx context.Context, clientId string, preset PeriodPreset) (time.Time, time.Time, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	closingDate := state.DefaultClosingDate
	if client, found := snapshot.FindClient(clientId); found {
		closingDate = client.ClosingDate
	}
	start, end := ResolvePeriod(closingDate, preset, s.clock.Now(), s.loc)
	return start, end, nil
}

// BuildReport assembles a billing report for one client over an arbitrary
// period. Open entries never appear on a report.
func (s *ReportServiceImpl) BuildReport(ctx context.Context, query Query) (Report, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	report := Report{
		ClientID:    query.ClientID,
		PeriodStart: query.StartDate.In(s.loc).Format("2006-01-02"),
		PeriodEnd:   query.EndDate.In(s.loc).Format("2006-01-02"),
		Rows:        []Row{},
	}

	var rate int64
	if client, found := snapshot.FindClient(query.ClientID); found {
		report.ClientName = client.Name
		rate = client.DefaultHourlyRate
	}

	entries := s.selectEntries(snapshot, query)
	if query.GroupByDate {
		report.Rows = s.groupedRows(entries, rate)
	} else {
		report.Rows = s.plainRows(entries, rate)
	}

	for _, row := range report.Rows {
		report.TotalHours += row.Hours
		report.HourlyRevenue += row.Revenue
	}

	report.FixedFeeTotal = s.fixedFeeTotal(snapshot, query)
	report.TotalRevenue = report.HourlyRevenue + report.FixedFeeTotal
	return report, nil
}

func (s *ReportServiceImpl) selectEntries(snapshot state.Snapshot, query Query) []state.TimeEntry {
	fromMs := query.StartDate.In(s.loc).UnixMilli()
	endDay := query.EndDate.In(s.loc)
	toMs := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, s.loc).UnixMilli()

	var selected []state.TimeEntry
	for _, entry := range snapshot.Entries {
		if entry.ClientID != query.ClientID || entry.EndTime == nil {
			continue
		}
		if entry.StartTime < fromMs || entry.StartTime > toMs {
			continue
		}
		if query.ProjectIDs != nil && !s.matchesProjectFilter(entry, query) {
			continue
		}
		selected = append(selected, entry)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].StartTime < selected[j].StartTime
	})
	return selected
}

func (s *ReportServiceImpl) matchesProjectFilter(entry state.TimeEntry, query Query) bool {
	if entry.ProjectID == "" {
		return query.IncludeUnassigned
	}
	for _, id := range query.ProjectIDs {
		if id == entry.ProjectID {
			return true
		}
	}
	return false
}

func (s *ReportServiceImpl) plainRows(entries []state.TimeEntry, rate int64) []Row {
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		hours := entryHours(entry)
		rows = append(rows, Row{
			Date:        s.entryDate(entry),
			Description: entry.Description,
			Hours:       hours,
			Revenue:     floorRevenue(hours, rate),
			EntryCount:  1,
		})
	}
	return rows
}

// groupedRows collapses entries sharing a calendar date into one row with
// summed hours and de-duplicated descriptions. Revenue truncation happens per
// collapsed row, not per entry, which can differ from the per-entry total by
// a few yen.
func (s *ReportServiceImpl) groupedRows(entries []state.TimeEntry, rate int64) []Row {
	type group struct {
		hours        float64
		descriptions []string
		count        int
	}
	groups := map[string]*group{}
	var dates []string

	for _, entry := range entries {
		date := s.entryDate(entry)
		g, ok := groups[date]
		if !ok {
			g = &group{}
			groups[date] = g
			dates = append(dates, date)
		}
		g.hours += entryHours(entry)
		g.count++
		if entry.Description != "" && !contains(g.descriptions, entry.Description) {
			g.descriptions = append(g.descriptions, entry.Description)
		}
	}

	rows := make([]Row, 0, len(dates))
	for _, date := range dates {
		g := groups[date]
		description := strings.Join(g.descriptions, " / ")
		if description == "" {
			description = UnspecifiedWork
		}
		rows = append(rows, Row{
			Date:        date,
			Description: description,
			Hours:       g.hours,
			Revenue:     floorRevenue(g.hours, rate),
			EntryCount:  g.count,
		})
	}
	return rows
}

// fixedFeeTotal sums fees of the client's projects for every calendar month
// the period touches. The contribution is month-truncated, not pro-rated: a
// period covering a single day of a month still pulls in that month's full
// fee.
func (s *ReportServiceImpl) fixedFeeTotal(snapshot state.Snapshot, query Query) int64 {
	months := map[string]bool{}
	start := query.StartDate.In(s.loc)
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, s.loc)
	end := query.EndDate.In(s.loc)
	for !cursor.After(end) {
		months[cursor.Format("2006-01")] = true
		cursor = cursor.AddDate(0, 1, 0)
	}

	var total int64
	for _, fee := range snapshot.MonthlyFixedFees {
		if !months[fee.YearMonth] {
			continue
		}
		_, client, found := snapshot.FindProject(fee.ProjectID)
		if !found || client.ID != query.ClientID {
			continue
		}
		total += fee.Amount
	}
	return total
}

func (s *ReportServiceImpl) entryDate(entry state.TimeEntry) string {
	return time.UnixMilli(entry.StartTime).In(s.loc).Format("2006-01-02")
}

func entryHours(entry state.TimeEntry) float64 {
	if entry.EndTime == nil || *entry.EndTime <= entry.StartTime {
		return 0
	}
	return float64(*entry.EndTime-entry.StartTime) / float64(time.Hour.Milliseconds())
}

func floorRevenue(hours float64, rate int64) int64 {
	return int64(math.Floor(hours * float64(rate)))
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
