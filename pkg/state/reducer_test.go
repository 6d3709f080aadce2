package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)

func snapshotWithClient() Snapshot {
	s := DefaultSnapshot()
	s.Clients = []Client{
		{
			ID:                "c1",
			Name:              "Acme",
			Color:             "#ff0000",
			DefaultHourlyRate: 3000,
			ClosingDate:       99,
			TaskPresets:       []string{},
			Projects: []Project{
				{ID: "p1", ClientID: "c1", Name: "Website", FixedFee: 50000, IsActive: true},
			},
			Categories: []string{},
		},
	}
	return s
}

func openEntryCount(s Snapshot) int {
	count := 0
	for _, e := range s.Entries {
		if e.EndTime == nil {
			count++
		}
	}
	return count
}

func TestReduce_StartTimer(t *testing.T) {
	// given
	s := snapshotWithClient()

	// when
	next := Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", Description: "design", RateType: RateHourly}, baseTime)

	// then
	require.Len(t, next.Entries, 1)
	assert.Equal(t, "e1", next.Entries[0].ID)
	assert.Equal(t, baseTime.UnixMilli(), next.Entries[0].StartTime)
	assert.Nil(t, next.Entries[0].EndTime)
	assert.Equal(t, Timer{Status: TimerRunning, EntryID: "e1"}, next.Timer)
	assert.Equal(t, []string{"design"}, next.Clients[0].TaskPresets)
	// input snapshot untouched
	assert.Empty(t, s.Entries)
}

func TestReduce_StartTimer_WhileRunningIsNoOp(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)

	// when
	next := Reduce(s, StartTimer{EntryID: "e2", ClientID: "c1", RateType: RateHourly}, baseTime.Add(time.Minute))

	// then
	assert.Equal(t, s, next)
	assert.Equal(t, 1, openEntryCount(next))
}

func TestReduce_StopTimer(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)

	// when
	next := Reduce(s, StopTimer{}, baseTime.Add(30*time.Minute))

	// then
	require.NotNil(t, next.Entries[0].EndTime)
	assert.Equal(t, baseTime.Add(30*time.Minute).UnixMilli(), *next.Entries[0].EndTime)
	assert.Equal(t, Timer{Status: TimerIdle}, next.Timer)
	assert.Equal(t, 0, openEntryCount(next))
}

func TestReduce_StopThenStartKeepsSingleOpenEntry(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)

	// when
	s = Reduce(s, StopTimer{}, baseTime.Add(time.Hour))
	s = Reduce(s, StartTimer{EntryID: "e2", ClientID: "c1", RateType: RateHourly}, baseTime.Add(2*time.Hour))

	// then
	assert.Equal(t, 1, openEntryCount(s))
	assert.Equal(t, Timer{Status: TimerRunning, EntryID: "e2"}, s.Timer)
}

func TestReduce_ActiveTimerInvariantAcrossSequences(t *testing.T) {
	s := snapshotWithClient()
	now := baseTime
	actions := []Action{
		StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly},
		StartTimer{EntryID: "e2", ClientID: "c1", RateType: RateHourly},
		StopTimer{},
		StopTimer{},
		StartTimer{EntryID: "e3", ClientID: "c1", RateType: RateHourly},
		DeleteEntry{ID: "e3"},
		StartTimer{EntryID: "e4", ClientID: "c1", RateType: RateHourly},
	}
	for _, a := range actions {
		now = now.Add(time.Minute)
		s = Reduce(s, a, now)
		assert.LessOrEqualf(t, openEntryCount(s), 1, "after %s", a.ActionName())
	}
}

func TestReduce_TaskPresetRecency(t *testing.T) {
	// given
	s := snapshotWithClient()
	s.Clients[0].TaskPresets = []string{"A", "B"}

	// when: a new description is prepended
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", Description: "C", RateType: RateHourly}, baseTime)
	s = Reduce(s, StopTimer{}, baseTime.Add(time.Minute))

	// then
	assert.Equal(t, []string{"C", "A", "B"}, s.Clients[0].TaskPresets)

	// when: a repeated description is not re-promoted
	s = Reduce(s, StartTimer{EntryID: "e2", ClientID: "c1", Description: "A", RateType: RateHourly}, baseTime.Add(2*time.Minute))

	// then
	assert.Equal(t, []string{"C", "A", "B"}, s.Clients[0].TaskPresets)
}

func TestReduce_TaskPresetsCappedAtTwenty(t *testing.T) {
	s := snapshotWithClient()
	now := baseTime
	for i := 0; i < 25; i++ {
		now = now.Add(time.Minute)
		s = Reduce(s, StartTimer{EntryID: string(rune('a' + i)), ClientID: "c1", Description: string(rune('A' + i)), RateType: RateHourly}, now)
		now = now.Add(time.Minute)
		s = Reduce(s, StopTimer{}, now)
	}
	assert.Len(t, s.Clients[0].TaskPresets, MaxTaskPresets)
	// most recent first
	assert.Equal(t, "Y", s.Clients[0].TaskPresets[0])
}

func TestReduce_UpdateEntryReplacesWholesale(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", Description: "old", RateType: RateHourly}, baseTime)
	s = Reduce(s, StopTimer{}, baseTime.Add(time.Hour))

	end := baseTime.Add(90 * time.Minute).UnixMilli()
	updated := TimeEntry{
		ID:          "e1",
		ClientID:    "c1",
		StartTime:   baseTime.UnixMilli(),
		EndTime:     &end,
		Description: "rework",
		RateType:    RateFixed,
		ProjectID:   "p1",
		Category:    "dev",
	}

	// when
	next := Reduce(s, UpdateEntry{Entry: updated}, baseTime.Add(2*time.Hour))

	// then
	assert.Equal(t, updated, next.Entries[0])
	assert.Equal(t, []string{"rework", "old"}, next.Clients[0].TaskPresets)
}

func TestReduce_DeleteEntryClearsTimer(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)

	// when
	next := Reduce(s, DeleteEntry{ID: "e1"}, baseTime.Add(time.Minute))

	// then
	assert.Empty(t, next.Entries)
	assert.Equal(t, Timer{Status: TimerIdle}, next.Timer)
}

func TestReduce_DeleteClientLeavesEntriesOrphaned(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)
	s = Reduce(s, StopTimer{}, baseTime.Add(time.Hour))

	// when
	next := Reduce(s, DeleteClient{ID: "c1"}, baseTime.Add(2*time.Hour))

	// then
	assert.Empty(t, next.Clients)
	require.Len(t, next.Entries, 1)
	assert.Equal(t, "c1", next.Entries[0].ClientID)
}

func TestReduce_DeleteProjectClearsEntryReferences(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateFixed, ProjectID: "p1"}, baseTime)
	s = Reduce(s, StopTimer{}, baseTime.Add(time.Hour))

	// when
	next := Reduce(s, DeleteProject{ClientID: "c1", ProjectID: "p1"}, baseTime.Add(2*time.Hour))

	// then
	assert.Empty(t, next.Clients[0].Projects)
	for _, e := range next.Entries {
		assert.Empty(t, e.ProjectID)
	}
}

func TestReduce_MonthlyFeeActivationDoesNotDuplicate(t *testing.T) {
	// given
	s := snapshotWithClient()
	fee := MonthlyFixedFee{ID: "f1", ProjectID: "p1", YearMonth: "2024-03", Amount: 50000}

	// when: activating twice for the same (project, month)
	s = Reduce(s, AddMonthlyFixedFee{Fee: fee}, baseTime)
	again := fee
	again.ID = "f2"
	s = Reduce(s, AddMonthlyFixedFee{Fee: again}, baseTime)

	// then
	require.Len(t, s.MonthlyFixedFees, 1)
	assert.Equal(t, "f2", s.MonthlyFixedFees[0].ID)
}

func TestReduce_MonthlyFeeToggleRestoresState(t *testing.T) {
	// given
	s := snapshotWithClient()
	before := s.Clone()
	fee := MonthlyFixedFee{ID: "f1", ProjectID: "p1", YearMonth: "2024-03", Amount: 50000}

	// when: toggle on, toggle off
	s = Reduce(s, AddMonthlyFixedFee{Fee: fee}, baseTime)
	s = Reduce(s, DeleteMonthlyFixedFee{ID: "f1"}, baseTime)

	// then
	assert.Equal(t, before, s)
}

func TestReduce_ReorderClientsReplacesCollection(t *testing.T) {
	// given
	s := snapshotWithClient()
	second := Client{ID: "c2", Name: "Beta", TaskPresets: []string{}, Projects: []Project{}, Categories: []string{}}
	s = Reduce(s, AddClient{Client: second}, baseTime)

	// when
	next := Reduce(s, ReorderClients{Clients: []Client{s.Clients[1], s.Clients[0]}}, baseTime)

	// then
	assert.Equal(t, "c2", next.Clients[0].ID)
	assert.Equal(t, "c1", next.Clients[1].ID)
}

func TestReduce_UpdateGoalsMergesShallow(t *testing.T) {
	// given
	s := DefaultSnapshot()
	hours := 120.0

	// when
	next := Reduce(s, UpdateGoals{Patch: SettingsPatch{MonthlyGoalHours: &hours}}, baseTime)

	// then
	assert.Equal(t, 120.0, next.Settings.MonthlyGoalHours)
	assert.Equal(t, s.Settings.MonthlyGoalRevenue, next.Settings.MonthlyGoalRevenue)
	assert.Equal(t, s.Settings.Currency, next.Settings.Currency)
}

func TestReduce_UpdateTheme(t *testing.T) {
	s := DefaultSnapshot()
	next := Reduce(s, UpdateTheme{Color: "#0ea5e9"}, baseTime)
	assert.Equal(t, "#0ea5e9", next.Settings.ThemeColor)
}

type unknownAction struct{}

func (unknownAction) ActionName() string { return "SOMETHING_NEW" }

func TestReduce_UnknownActionIsNoOp(t *testing.T) {
	// given
	s := snapshotWithClient()
	s = Reduce(s, StartTimer{EntryID: "e1", ClientID: "c1", RateType: RateHourly}, baseTime)

	// when
	next := Reduce(s, unknownAction{}, baseTime.Add(time.Minute))

	// then
	assert.Equal(t, s, next)
}

func TestReduce_DeleteAndClearPresets(t *testing.T) {
	// given
	s := snapshotWithClient()
	s.Clients[0].TaskPresets = []string{"A", "B", "C"}

	// when
	next := Reduce(s, DeleteClientPreset{ClientID: "c1", Preset: "B"}, baseTime)

	// then
	assert.Equal(t, []string{"A", "C"}, next.Clients[0].TaskPresets)

	// when
	next = Reduce(next, ClearClientPresets{ClientID: "c1"}, baseTime)

	// then
	assert.Empty(t, next.Clients[0].TaskPresets)
}

func TestReduce_SavedReportsAppendAndDelete(t *testing.T) {
	// given
	s := DefaultSnapshot()
	report := SavedReport{ID: "r1", ClientID: "c1", Title: "March", PeriodStart: "2024-03-01", PeriodEnd: "2024-03-31", CreatedAt: baseTime.UnixMilli()}

	// when
	s = Reduce(s, AddSavedReport{Report: report}, baseTime)

	// then
	require.Len(t, s.SavedReports, 1)

	// when
	s = Reduce(s, DeleteSavedReport{ID: "r1"}, baseTime)

	// then
	assert.Empty(t, s.SavedReports)
}
