package sync

import (
	"context"
	sysync "sync"

	"github.com/mao65123/logmee/pkg/state"
)

// StubStore is an in-memory Store for tests. It records upserts and deletes
// keyed by entity id and remembers client ordinals.
type StubStore struct {
	mu        sysync.Mutex
	snapshot  state.Snapshot
	Clients   map[string]state.Client
	Positions map[string]int
	Projects  map[string]state.Project
	Entries   map[string]state.TimeEntry
	Fees      map[string]state.MonthlyFixedFee
	Reports   map[string]state.SavedReport
	Settings  map[string]state.Settings
	Deleted   []string

	settingsWrites int
}

func NewStubStore() *StubStore {
	return &StubStore{
		snapshot:  state.DefaultSnapshot(),
		Clients:   map[string]state.Client{},
		Positions: map[string]int{},
		Projects:  map[string]state.Project{},
		Entries:   map[string]state.TimeEntry{},
		Fees:      map[string]state.MonthlyFixedFee{},
		Reports:   map[string]state.SavedReport{},
		Settings:  map[string]state.Settings{},
	}
}

// SeedRemote sets the dataset LoadAll returns.
func (s *StubStore) SeedRemote(snapshot state.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}

func (s *StubStore) LoadAll(ctx context.Context, userId string) (state.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone(), nil
}

func (s *StubStore) UpsertClient(ctx context.Context, userId string, client state.Client, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Clients[client.ID] = client
	s.Positions[client.ID] = position
	return nil
}

func (s *StubStore) DeleteClient(ctx context.Context, clientId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Clients, clientId)
	s.Deleted = append(s.Deleted, "client:"+clientId)
	return nil
}

func (s *StubStore) UpsertProject(ctx context.Context, userId string, project state.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Projects[project.ID] = project
	return nil
}

func (s *StubStore) DeleteProject(ctx context.Context, projectId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Projects, projectId)
	s.Deleted = append(s.Deleted, "project:"+projectId)
	return nil
}

func (s *StubStore) UpsertEntry(ctx context.Context, userId string, entry state.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries[entry.ID] = entry
	return nil
}

func (s *StubStore) DeleteEntry(ctx context.Context, entryId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Entries, entryId)
	s.Deleted = append(s.Deleted, "entry:"+entryId)
	return nil
}

func (s *StubStore) UpsertFee(ctx context.Context, userId string, fee state.MonthlyFixedFee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fees[fee.ID] = fee
	return nil
}

func (s *StubStore) DeleteFee(ctx context.Context, feeId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Fees, feeId)
	s.Deleted = append(s.Deleted, "fee:"+feeId)
	return nil
}

func (s *StubStore) UpsertSavedReport(ctx context.Context, userId string, report state.SavedReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reports[report.ID] = report
	return nil
}

func (s *StubStore) DeleteSavedReport(ctx context.Context, reportId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Reports, reportId)
	s.Deleted = append(s.Deleted, "report:"+reportId)
	return nil
}

func (s *StubStore) UpsertSettings(ctx context.Context, userId string, settings state.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settings[userId] = settings
	s.settingsWrites++
	return nil
}

// SettingsWrites counts settings upserts across all users.
func (s *StubStore) SettingsWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsWrites
}

func (s *StubStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = state.DefaultSnapshot()
	s.Clients = map[string]state.Client{}
	s.Positions = map[string]int{}
	s.Projects = map[string]state.Project{}
	s.Entries = map[string]state.TimeEntry{}
	s.Fees = map[string]state.MonthlyFixedFee{}
	s.Reports = map[string]state.SavedReport{}
	s.Settings = map[string]state.Settings{}
	s.Deleted = nil
	s.settingsWrites = 0
}
