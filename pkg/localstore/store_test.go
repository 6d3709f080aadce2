package localstore

import (
	"context"
	"testing"

	"github.com/mao65123/logmee/internal/test_utils"
	"github.com/mao65123/logmee/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadReturnsDefaultsWhenEmpty(t *testing.T) {
	// given
	store := NewStore(NewStubRepository())

	// when
	snapshot := store.Load(context.Background(), "user-1")

	// then
	assert.Equal(t, state.DefaultSnapshot(), snapshot)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	// given
	store := NewStore(NewStubRepository())
	ctx := context.Background()
	snapshot := state.DefaultSnapshot()
	snapshot.Clients = []state.Client{{
		ID: "c1", Name: "Acme", Color: "#fff", DefaultHourlyRate: 3000, ClosingDate: 99,
		TaskPresets: []string{"design"}, Projects: []state.Project{}, Categories: []string{},
	}}

	// when
	require.NoError(t, store.Save(ctx, "user-1", snapshot))
	loaded := store.Load(ctx, "user-1")

	// then
	assert.Equal(t, snapshot, loaded)
}

func TestStore_LoadFallsBackToPriorVersionKey(t *testing.T) {
	// given: only an older-version document exists
	repo := NewStubRepository()
	repo.Seed("user-1", "logmee_data_v11", []byte(`{
		"clients": [{"id": "c1", "name": "Acme", "color": "#fff", "defaultFixedFee": 9000}],
		"monthlyFixedFees": [{"id": "f1", "clientId": "c1", "yearMonth": "2024-01", "amount": 1}]
	}`))
	store := NewStore(repo)

	// when
	loaded := store.Load(context.Background(), "user-1")

	// then: migrated forward, legacy fees discarded
	require.Len(t, loaded.Clients, 1)
	assert.Equal(t, state.DefaultClosingDate, loaded.Clients[0].ClosingDate)
	assert.Empty(t, loaded.MonthlyFixedFees)
}

func TestStore_CorruptDocumentFallsBackToDefaults(t *testing.T) {
	// given
	repo := NewStubRepository()
	repo.Seed("user-1", SnapshotKey, []byte(`{not json`))
	store := NewStore(repo)

	// when
	loaded := store.Load(context.Background(), "user-1")

	// then
	assert.Equal(t, state.DefaultSnapshot(), loaded)
}

func TestStore_SnapshotsAreIsolatedPerUser(t *testing.T) {
	// given
	store := NewStore(NewStubRepository())
	ctx := context.Background()
	snapshot := state.DefaultSnapshot()
	snapshot.Settings.UserName = "Alice"
	require.NoError(t, store.Save(ctx, "user-1", snapshot))

	// when
	other := store.Load(ctx, "user-2")

	// then
	assert.Equal(t, state.DefaultUserName, other.Settings.UserName)
}

func TestRepository_PersistsToDatabase(t *testing.T) {
	// given
	db := test_utils.SetupTestDB(t)
	store := NewStore(NewRepository(db))
	ctx := context.Background()
	snapshot := state.DefaultSnapshot()
	snapshot.Settings.UserName = "Alice"

	// when: saved twice to exercise the upsert path
	require.NoError(t, store.Save(ctx, "user-1", snapshot))
	snapshot.Settings.UserName = "Bob"
	require.NoError(t, store.Save(ctx, "user-1", snapshot))
	loaded := store.Load(ctx, "user-1")

	// then
	assert.Equal(t, "Bob", loaded.Settings.UserName)
}
