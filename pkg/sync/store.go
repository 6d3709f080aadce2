package sync

import (
	"context"

	"github.com/mao65123/logmee/pkg/state"
)

// Store is the remote replica of a user's workspace: per-entity tables
// addressed by the user's identity, each supporting an idempotent upsert keyed
// by the entity's own id and a delete by id. Re-sending an unchanged entity is
// a no-op; last writer wins.
type Store interface {
	// LoadAll reassembles the user's full remote dataset into a snapshot.
	LoadAll(ctx context.Context, userId string) (state.Snapshot, error)

	// UpsertClient stores the client row together with its nested projects.
	// position is the client's ordinal in the workspace list; remote storage
	// has no other notion of client ordering.
	UpsertClient(ctx context.Context, userId string, client state.Client, position int) error
	DeleteClient(ctx context.Context, clientId string) error

	UpsertProject(ctx context.Context, userId string, project state.Project) error
	DeleteProject(ctx context.Context, projectId string) error

	UpsertEntry(ctx context.Context, userId string, entry state.TimeEntry) error
	DeleteEntry(ctx context.Context, entryId string) error

	UpsertFee(ctx context.Context, userId string, fee state.MonthlyFixedFee) error
	DeleteFee(ctx context.Context, feeId string) error

	UpsertSavedReport(ctx context.Context, userId string, report state.SavedReport) error
	DeleteSavedReport(ctx context.Context, reportId string) error

	UpsertSettings(ctx context.Context, userId string, settings state.Settings) error
}

// HasData reports whether a pulled snapshot should be treated as the
// authoritative dataset: the remote wins only when it holds any clients or
// time entries.
func HasData(s state.Snapshot) bool {
	return len(s.Clients) > 0 || len(s.Entries) > 0
}
