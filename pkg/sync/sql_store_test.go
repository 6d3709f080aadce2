package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mao65123/logmee/internal/test_utils"
	"github.com/mao65123/logmee/pkg/state"
)

func testClient(id string) state.Client {
	return state.Client{
		ID:                id,
		Name:              "Acme",
		Color:             "#3B82F6",
		DefaultHourlyRate: 3000,
		ClosingDate:       state.DefaultClosingDate,
		TaskPresets:       []string{"design", "meeting"},
		Projects:          []state.Project{},
		Categories:        []string{},
	}
}

func TestSQLStore_LoadAllRoundTrip(t *testing.T) {
	// given a store with one client, its project, a closed entry and settings
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()
	userId := "user-1"

	client := testClient("c1")
	client.Projects = []state.Project{
		{ID: "p1", ClientID: "c1", Name: "Website", FixedFee: 100000, IsActive: true},
	}
	require.NoError(t, store.UpsertClient(ctx, userId, client, 0))

	end := int64(1_700_000_900_000)
	entry := state.TimeEntry{
		ID:          "e1",
		ClientID:    "c1",
		StartTime:   1_700_000_000_000,
		EndTime:     &end,
		Description: "design work",
		RateType:    state.RateHourly,
		ProjectID:   "p1",
	}
	require.NoError(t, store.UpsertEntry(ctx, userId, entry))

	fee := state.MonthlyFixedFee{ID: "f1", ProjectID: "p1", YearMonth: "2024-05", Amount: 100000}
	require.NoError(t, store.UpsertFee(ctx, userId, fee))

	settings := state.DefaultSettings()
	settings.UserName = "Taro"
	settings.MonthlyGoalHours = 120
	require.NoError(t, store.UpsertSettings(ctx, userId, settings))

	// when loading the full dataset back
	snapshot, err := store.LoadAll(ctx, userId)

	// then every entity comes back assembled under its owner
	require.NoError(t, err)
	require.Len(t, snapshot.Clients, 1)
	assert.Equal(t, client, snapshot.Clients[0])
	require.Len(t, snapshot.Entries, 1)
	assert.Equal(t, entry, snapshot.Entries[0])
	require.Len(t, snapshot.MonthlyFixedFees, 1)
	assert.Equal(t, fee, snapshot.MonthlyFixedFees[0])
	assert.Equal(t, settings, snapshot.Settings)
	assert.Equal(t, state.TimerIdle, snapshot.Timer.Status)
}

func TestSQLStore_UpsertIsIdempotent(t *testing.T) {
	// given a client already stored
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	client := testClient("c1")
	require.NoError(t, store.UpsertClient(ctx, "user-1", client, 0))

	// when the same client is sent again with a changed name
	client.Name = "Acme Inc."
	require.NoError(t, store.UpsertClient(ctx, "user-1", client, 1))

	// then a single row survives, carrying the latest values
	snapshot, err := store.LoadAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Clients, 1)
	assert.Equal(t, "Acme Inc.", snapshot.Clients[0].Name)
}

func TestSQLStore_UpsertClientReconcilesProjects(t *testing.T) {
	// given a client with two projects stored remotely
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	client := testClient("c1")
	client.Projects = []state.Project{
		{ID: "p1", ClientID: "c1", Name: "Website", IsActive: true},
		{ID: "p2", ClientID: "c1", Name: "App", IsActive: true},
	}
	require.NoError(t, store.UpsertClient(ctx, "user-1", client, 0))

	// when the client is re-sent without the second project
	client.Projects = client.Projects[:1]
	require.NoError(t, store.UpsertClient(ctx, "user-1", client, 0))

	// then the stale project row is gone
	snapshot, err := store.LoadAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, snapshot.Clients, 1)
	require.Len(t, snapshot.Clients[0].Projects, 1)
	assert.Equal(t, "p1", snapshot.Clients[0].Projects[0].ID)
}

func TestSQLStore_LoadAllDerivesTimerFromOpenEntry(t *testing.T) {
	// given a stored entry with no end time
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	require.NoError(t, store.UpsertClient(ctx, "user-1", testClient("c1"), 0))
	require.NoError(t, store.UpsertEntry(ctx, "user-1", state.TimeEntry{
		ID:        "e1",
		ClientID:  "c1",
		StartTime: 1_700_000_000_000,
		RateType:  state.RateHourly,
	}))

	// when loading
	snapshot, err := store.LoadAll(ctx, "user-1")

	// then the timer points at the open entry
	require.NoError(t, err)
	assert.Equal(t, state.Timer{Status: state.TimerRunning, EntryID: "e1"}, snapshot.Timer)
}

func TestSQLStore_ClientOrderFollowsSortOrder(t *testing.T) {
	// given three clients upserted with explicit ordinals
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	for i, id := range []string{"c3", "c1", "c2"} {
		c := testClient(id)
		require.NoError(t, store.UpsertClient(ctx, "user-1", c, i))
	}

	// when loading
	snapshot, err := store.LoadAll(ctx, "user-1")

	// then clients come back in ordinal order, not id order
	require.NoError(t, err)
	require.Len(t, snapshot.Clients, 3)
	assert.Equal(t, "c3", snapshot.Clients[0].ID)
	assert.Equal(t, "c1", snapshot.Clients[1].ID)
	assert.Equal(t, "c2", snapshot.Clients[2].ID)
}

func TestSQLStore_UsersAreIsolated(t *testing.T) {
	// given two users with their own clients
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	require.NoError(t, store.UpsertClient(ctx, "user-1", testClient("c1"), 0))
	require.NoError(t, store.UpsertClient(ctx, "user-2", testClient("c2"), 0))

	// when loading each user's dataset
	first, err := store.LoadAll(ctx, "user-1")
	require.NoError(t, err)
	second, err := store.LoadAll(ctx, "user-2")
	require.NoError(t, err)

	// then neither sees the other's data
	require.Len(t, first.Clients, 1)
	assert.Equal(t, "c1", first.Clients[0].ID)
	require.Len(t, second.Clients, 1)
	assert.Equal(t, "c2", second.Clients[0].ID)
}

func TestSQLStore_SavedReportsAreImmutable(t *testing.T) {
	// given a stored report
	db := test_utils.SetupTestDB(t)
	store := NewSQLStore(db)
	ctx := context.Background()

	report := state.SavedReport{
		ID:          "r1",
		ClientID:    "c1",
		Title:       "May report",
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-05-31",
		CreatedAt:   1_700_000_000_000,
		HTMLContent: "<html></html>",
	}
	require.NoError(t, store.UpsertSavedReport(ctx, "user-1", report))

	// when a write with the same id but different content arrives
	altered := report
	altered.Title = "tampered"
	require.NoError(t, store.UpsertSavedReport(ctx, "user-1", altered))

	// then the original content is preserved
	snapshot, err := store.LoadAll(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, snapshot.SavedReports, 1)
	assert.Equal(t, "May report", snapshot.SavedReports[0].Title)

	// and deleting removes it
	require.NoError(t, store.DeleteSavedReport(ctx, "r1"))
	snapshot, err = store.LoadAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, snapshot.SavedReports)
}
