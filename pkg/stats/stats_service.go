package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mao65123/logmee/internal/utils"
	"github.com/mao65123/logmee/pkg/state"
)

// SnapshotProvider hands out the current workspace snapshot for the user on
// the context. Aggregation never mutates it.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (state.Snapshot, error)
}

type StatsService interface {
	MonthlyStats(ctx context.Context, year int, month time.Month) (MonthlySummary, error)
	CurrentGoalProgress(ctx context.Context) (GoalProgress, error)
	ExportRows(ctx context.Context, from time.Time, to time.Time) ([]ExportRow, error)
}

type StatsServiceImpl struct {
	snapshots SnapshotProvider
	clock     utils.Clock
	loc       *time.Location
}

func NewStatsServiceImpl(snapshots SnapshotProvider, loc *time.Location) *StatsServiceImpl {
	return &StatsServiceImpl{
		snapshots: snapshots,
		clock:     &utils.SystemClock{},
		loc:       loc,
	}
}

// MonthlyStats aggregates one calendar month of the user's workspace. An open
// entry contributes duration up to now, so the running month keeps moving
// without anything being persisted.
func (s *StatsServiceImpl) MonthlyStats(ctx context.Context, year int, month time.Month) (MonthlySummary, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	fromMs := monthStart.UnixMilli()
	// The month closes at 23:59:59 of its last day; the final 999ms belong
	// to no month.
	toMs := monthEnd.Add(-time.Second).UnixMilli()
	nowMs := s.clock.Now().UnixMilli()
	yearMonth := monthStart.Format("2006-01")

	daysInMonth := monthEnd.AddDate(0, 0, -1).Day()
	dailyHours := make([]float64, daysInMonth)

	byClient := map[string]*ClientStats{}
	var clientOrder []string
	byCategory := map[string]*CategoryStats{}
	var categoryOrder []string

	summary := MonthlySummary{YearMonth: yearMonth}

	for _, entry := range snapshot.Entries {
		if entry.StartTime < fromMs || entry.StartTime > toMs {
			continue
		}
		client, found := snapshot.FindClient(entry.ClientID)
		if !found {
			// The client was deleted; its historical entries stay out of
			// the breakdown.
			continue
		}

		hours := entryHours(entry, nowMs)
		summary.TotalHours += hours

		cs, ok := byClient[client.ID]
		if !ok {
			cs = &ClientStats{ClientID: client.ID, ClientName: client.Name}
			byClient[client.ID] = cs
			clientOrder = append(clientOrder, client.ID)
		}
		cs.Hours += hours
		cs.EntryCount++
		// Revenue follows the client's hourly rate regardless of the entry's
		// own rate type; fixed-fee work is billed through monthly fees below.
		if client.DefaultHourlyRate > 0 {
			cs.Revenue += floorRevenue(hours, client.DefaultHourlyRate)
		}

		category := entry.Category
		if category == "" {
			category = UncategorizedBucket
		}
		cat, ok := byCategory[category]
		if !ok {
			cat = &CategoryStats{Category: category}
			byCategory[category] = cat
			categoryOrder = append(categoryOrder, category)
		}
		cat.Hours += hours
		cat.EntryCount++

		day := time.UnixMilli(entry.StartTime).In(s.loc).Day()
		dailyHours[day-1] += hours
	}

	// Fixed fees activated for this month land on the owning client in full,
	// regardless of hours worked.
	for _, fee := range snapshot.MonthlyFixedFees {
		if fee.YearMonth != yearMonth {
			continue
		}
		_, client, found := snapshot.FindProject(fee.ProjectID)
		if !found {
			continue
		}
		cs, ok := byClient[client.ID]
		if !ok {
			cs = &ClientStats{ClientID: client.ID, ClientName: client.Name}
			byClient[client.ID] = cs
			clientOrder = append(clientOrder, client.ID)
		}
		cs.Revenue += fee.Amount
	}

	clients := make([]ClientStats, 0, len(clientOrder))
	for _, id := range clientOrder {
		clients = append(clients, *byClient[id])
		summary.TotalRevenue += byClient[id].Revenue
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].Hours > clients[j].Hours
	})
	summary.Clients = clients

	categories := make([]CategoryStats, 0, len(categoryOrder))
	for _, name := range categoryOrder {
		categories = append(categories, *byCategory[name])
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Hours > categories[j].Hours
	})
	summary.Categories = categories

	pie := make([]PieSlice, 0, len(clients))
	for _, cs := range clients {
		if cs.Hours > 0 {
			pie = append(pie, PieSlice{Label: cs.ClientName, Hours: cs.Hours})
		}
	}
	summary.Pie = pie

	daily := make([]DailyHours, daysInMonth)
	for i := range dailyHours {
		daily[i] = DailyHours{
			Date:  monthStart.AddDate(0, 0, i).Format("2006-01-02"),
			Hours: dailyHours[i],
		}
	}
	summary.Daily = daily

	return summary, nil
}

// CurrentGoalProgress reports the running month against the goals in settings.
func (s *StatsServiceImpl) CurrentGoalProgress(ctx context.Context) (GoalProgress, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return GoalProgress{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	now := s.clock.Now().In(s.loc)
	summary, err := s.MonthlyStats(ctx, now.Year(), now.Month())
	if err != nil {
		return GoalProgress{}, err
	}

	progress := GoalProgress{
		YearMonth:   summary.YearMonth,
		Hours:       summary.TotalHours,
		GoalHours:   snapshot.Settings.MonthlyGoalHours,
		Revenue:     summary.TotalRevenue,
		GoalRevenue: snapshot.Settings.MonthlyGoalRevenue,
	}
	if progress.GoalHours > 0 {
		progress.HoursPercent = progress.Hours / progress.GoalHours * 100
	}
	if progress.GoalRevenue > 0 {
		progress.RevenuePercent = float64(progress.Revenue) / float64(progress.GoalRevenue) * 100
	}
	return progress, nil
}

// ExportRows flattens closed entries in the range into CSV-ready rows. A row
// for a deleted client carries an empty client name.
func (s *StatsServiceImpl) ExportRows(ctx context.Context, from time.Time, to time.Time) ([]ExportRow, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	fromMs := from.UnixMilli()
	toMs := endOfDay(to, s.loc).UnixMilli()

	rows := []ExportRow{}
	for _, entry := range snapshot.Entries {
		if entry.EndTime == nil {
			continue
		}
		if entry.StartTime < fromMs || entry.StartTime > toMs {
			continue
		}
		clientName := ""
		if client, found := snapshot.FindClient(entry.ClientID); found {
			clientName = client.Name
		}
		rows = append(rows, ExportRow{
			Date:        time.UnixMilli(entry.StartTime).In(s.loc).Format("2006-01-02"),
			ClientName:  clientName,
			Description: entry.Description,
			Hours:       entryHours(entry, 0),
		})
	}
	return rows, nil
}

// entryHours measures an entry in fractional hours. nowMs bounds an open
// entry; for closed entries it is unused.
func entryHours(entry state.TimeEntry, nowMs int64) float64 {
	endMs := nowMs
	if entry.EndTime != nil {
		endMs = *entry.EndTime
	}
	if endMs <= entry.StartTime {
		return 0
	}
	return float64(endMs-entry.StartTime) / float64(time.Hour.Milliseconds())
}

// floorRevenue truncates toward zero, matching yen accounting with no minor
// currency unit.
func floorRevenue(hours float64, rate int64) int64 {
	return int64(math.Floor(hours * float64(rate)))
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
}
