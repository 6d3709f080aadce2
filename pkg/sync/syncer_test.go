package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mao65123/logmee/internal/event_bus"
	"github.com/mao65123/logmee/pkg/state"
)

func setupSyncer(t *testing.T, debounce time.Duration) (*Syncer, *StubStore, *event_bus.EventBus) {
	t.Helper()
	store := NewStubStore()
	bus := event_bus.NewEventBus()
	syncer := NewSyncer(store, bus, debounce)
	t.Cleanup(syncer.Close)
	t.Cleanup(store.Cleanup)
	return syncer, store, bus
}

func publishMutation(t *testing.T, bus *event_bus.EventBus, m event_bus.StateMutated) {
	t.Helper()
	err := bus.Publish(event_bus.NewEvent(context.Background(), event_bus.StateMutatedEvent, m))
	require.NoError(t, err)
}

func snapshotWithEntry() state.Snapshot {
	s := state.DefaultSnapshot()
	s.Clients = []state.Client{testClient("c1")}
	s.Entries = []state.TimeEntry{{
		ID:          "e1",
		ClientID:    "c1",
		StartTime:   1_700_000_000_000,
		Description: "design work",
		RateType:    state.RateHourly,
	}}
	s.Timer = state.Timer{Status: state.TimerRunning, EntryID: "e1"}
	return s
}

func TestSyncer_TimerActionSyncsEntryAndOwningClient(t *testing.T) {
	// given a syncer listening on the bus
	syncer, store, bus := setupSyncer(t, time.Millisecond)

	// when a timer start is published
	publishMutation(t, bus, event_bus.StateMutated{
		UserId:   "user-1",
		Action:   state.StartTimer{EntryID: "e1", ClientID: "c1"},
		EntryID:  "e1",
		Snapshot: snapshotWithEntry(),
	})
	syncer.Flush()

	// then both the entry and its owning client reach the store
	assert.Contains(t, store.Entries, "e1")
	assert.Contains(t, store.Clients, "c1")
	assert.Equal(t, 0, store.Positions["c1"])
}

func TestSyncer_StopTimerUsesEntryFromEvent(t *testing.T) {
	// given a stopped entry referenced only through the event's entry id
	syncer, store, bus := setupSyncer(t, time.Millisecond)

	snapshot := snapshotWithEntry()
	end := int64(1_700_000_900_000)
	snapshot.Entries[0].EndTime = &end
	snapshot.Timer = state.Timer{Status: state.TimerIdle}

	// when the stop is published
	publishMutation(t, bus, event_bus.StateMutated{
		UserId:   "user-1",
		Action:   state.StopTimer{},
		EntryID:  "e1",
		Snapshot: snapshot,
	})
	syncer.Flush()

	// then the closed entry is replicated
	require.Contains(t, store.Entries, "e1")
	require.NotNil(t, store.Entries["e1"].EndTime)
	assert.Equal(t, end, *store.Entries["e1"].EndTime)
}

func TestSyncer_NoOpMutationReplicatesNothing(t *testing.T) {
	// given a start that was rejected because a timer was already running,
	// so the snapshot holds no entry under the action's id
	syncer, store, bus := setupSyncer(t, time.Millisecond)

	publishMutation(t, bus, event_bus.StateMutated{
		UserId:   "user-1",
		Action:   state.StartTimer{EntryID: "e2", ClientID: "c1"},
		EntryID:  "e2",
		Snapshot: snapshotWithEntry(),
	})
	syncer.Flush()

	// then nothing is written
	assert.NotContains(t, store.Entries, "e2")
}

func TestSyncer_DeleteActionsMapToDeletes(t *testing.T) {
	syncer, store, bus := setupSyncer(t, time.Millisecond)
	snapshot := state.DefaultSnapshot()

	publishMutation(t, bus, event_bus.StateMutated{
		UserId: "user-1", Action: state.DeleteEntry{ID: "e1"}, Snapshot: snapshot,
	})
	publishMutation(t, bus, event_bus.StateMutated{
		UserId: "user-1", Action: state.DeleteClient{ID: "c1"}, Snapshot: snapshot,
	})
	publishMutation(t, bus, event_bus.StateMutated{
		UserId: "user-1", Action: state.DeleteProject{ClientID: "c1", ProjectID: "p1"}, Snapshot: snapshot,
	})
	publishMutation(t, bus, event_bus.StateMutated{
		UserId: "user-1", Action: state.DeleteMonthlyFixedFee{ID: "f1"}, Snapshot: snapshot,
	})
	syncer.Flush()

	assert.ElementsMatch(t,
		[]string{"entry:e1", "client:c1", "project:p1", "fee:f1"},
		store.Deleted)
}

func TestSyncer_PresetMutationRefreshesClientRow(t *testing.T) {
	// given a client whose preset list just changed
	syncer, store, bus := setupSyncer(t, time.Millisecond)
	snapshot := state.DefaultSnapshot()
	client := testClient("c1")
	client.TaskPresets = []string{"meeting"}
	snapshot.Clients = []state.Client{client}

	// when the preset delete is published
	publishMutation(t, bus, event_bus.StateMutated{
		UserId:   "user-1",
		Action:   state.DeleteClientPreset{ClientID: "c1", Preset: "design"},
		Snapshot: snapshot,
	})
	syncer.Flush()

	// then the full client row, presets included, is re-sent
	require.Contains(t, store.Clients, "c1")
	assert.Equal(t, []string{"meeting"}, store.Clients["c1"].TaskPresets)
}

func TestSyncer_ReorderResendsEveryClientWithOrdinal(t *testing.T) {
	// given a workspace with three clients in a fresh order
	syncer, store, bus := setupSyncer(t, time.Millisecond)
	snapshot := state.DefaultSnapshot()
	snapshot.Clients = []state.Client{testClient("c3"), testClient("c1"), testClient("c2")}

	// when the reorder is published
	publishMutation(t, bus, event_bus.StateMutated{
		UserId:   "user-1",
		Action:   state.ReorderClients{Clients: snapshot.Clients},
		Snapshot: snapshot,
	})
	syncer.Flush()

	// then every client carries its list ordinal
	assert.Equal(t, map[string]int{"c3": 0, "c1": 1, "c2": 2}, store.Positions)
}

func TestSyncer_SettingsBurstCollapsesToOneWrite(t *testing.T) {
	// given a generous quiet period
	syncer, store, bus := setupSyncer(t, time.Second)

	// when three settings mutations land back to back
	for _, color := range []string{"#111111", "#222222", "#333333"} {
		snapshot := state.DefaultSnapshot()
		snapshot.Settings.ThemeColor = color
		publishMutation(t, bus, event_bus.StateMutated{
			UserId:   "user-1",
			Action:   state.UpdateTheme{Color: color},
			Snapshot: snapshot,
		})
	}
	syncer.Flush()

	// then a single write carries the last settings
	assert.Equal(t, 1, store.SettingsWrites())
	assert.Equal(t, "#333333", store.Settings["user-1"].ThemeColor)
}

func TestSyncer_SeparatedSettingsBurstsWriteSeparately(t *testing.T) {
	syncer, store, bus := setupSyncer(t, time.Second)

	publish := func(color string) {
		snapshot := state.DefaultSnapshot()
		snapshot.Settings.ThemeColor = color
		publishMutation(t, bus, event_bus.StateMutated{
			UserId:   "user-1",
			Action:   state.UpdateTheme{Color: color},
			Snapshot: snapshot,
		})
	}

	// when two bursts are separated by a full quiet period
	publish("#111111")
	syncer.Flush()
	publish("#222222")
	syncer.Flush()

	// then each burst produced its own write
	assert.Equal(t, 2, store.SettingsWrites())
	assert.Equal(t, "#222222", store.Settings["user-1"].ThemeColor)
}

func TestSyncer_SettingsDebounceIsPerUser(t *testing.T) {
	// given two users changing their theme at the same time
	syncer, store, bus := setupSyncer(t, time.Second)

	for _, userId := range []string{"user-1", "user-2"} {
		snapshot := state.DefaultSnapshot()
		snapshot.Settings.ThemeColor = "#000000"
		publishMutation(t, bus, event_bus.StateMutated{
			UserId:   userId,
			Action:   state.UpdateTheme{Color: "#000000"},
			Snapshot: snapshot,
		})
	}
	syncer.Flush()

	// then each user gets their own write
	assert.Equal(t, 2, store.SettingsWrites())
	assert.Contains(t, store.Settings, "user-1")
	assert.Contains(t, store.Settings, "user-2")
}
