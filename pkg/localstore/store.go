package localstore

import (
	"context"

	"github.com/mao65123/logmee/pkg/state"
	log "github.com/sirupsen/logrus"
)

// SnapshotKey is the current versioned storage key for the snapshot document.
const SnapshotKey = "logmee_data_v12"

// priorSnapshotKeys are probed in descending order when no current-version
// document exists, so an upgrade picks up the latest older document it finds.
var priorSnapshotKeys = []string{
	"logmee_data_v11",
	"logmee_data_v10",
	"logmee_data_v9",
}

// Store is the durable local copy of a user's workspace snapshot. It is
// best-effort: read failures fall back to defaults and the caller decides
// how loudly to treat write failures. The sync store is the durable source
// of truth for authenticated users.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Load reads the user's snapshot, migrating whatever document version it
// finds. A missing or unreadable document yields the default snapshot.
func (s *Store) Load(ctx context.Context, userId string) state.Snapshot {
	for _, key := range append([]string{SnapshotKey}, priorSnapshotKeys...) {
		data, err := s.repo.Get(ctx, userId, key)
		if err != nil {
			log.Warnf("could not read local snapshot %q for user %s: %v", key, userId, err)
			continue
		}
		if data == nil {
			continue
		}
		snapshot, err := state.Decode(data)
		if err != nil {
			log.Warnf("could not decode local snapshot %q for user %s, ignoring it: %v", key, userId, err)
			continue
		}
		return snapshot
	}
	return state.DefaultSnapshot()
}

// Save writes the full snapshot in a single durable write under the current
// version key.
func (s *Store) Save(ctx context.Context, userId string, snapshot state.Snapshot) error {
	data, err := state.Encode(snapshot)
	if err != nil {
		return err
	}
	return s.repo.Put(ctx, userId, SnapshotKey, data)
}
