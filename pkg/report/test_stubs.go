package report

import (
	"context"

	"github.com/mao65123/logmee/pkg/state"
)

// StubSnapshotProvider serves a fixed snapshot to report tests.
type StubSnapshotProvider struct {
	snapshot state.Snapshot
}

func NewStubSnapshotProvider(snapshot state.Snapshot) *StubSnapshotProvider {
	return &StubSnapshotProvider{snapshot: snapshot}
}

func (s *StubSnapshotProvider) Snapshot(ctx context.Context) (state.Snapshot, error) {
	return s.snapshot.Clone(), nil
}
