package stats

import (
	"context"

	"github.com/mao65123/logmee/pkg/state"
)

// StubSnapshotProvider serves a fixed snapshot to aggregation tests.
type StubSnapshotProvider struct {
	snapshot state.Snapshot
	err      error
}

func NewStubSnapshotProvider(snapshot state.Snapshot) *StubSnapshotProvider {
	return &StubSnapshotProvider{snapshot: snapshot}
}

func (s *StubSnapshotProvider) Snapshot(ctx context.Context) (state.Snapshot, error) {
	if s.err != nil {
		return state.Snapshot{}, s.err
	}
	return s.snapshot.Clone(), nil
}

func (s *StubSnapshotProvider) SetSnapshot(snapshot state.Snapshot) {
	s.snapshot = snapshot
}

func (s *StubSnapshotProvider) FailWith(err error) {
	s.err = err
}
