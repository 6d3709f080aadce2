package workspace

import (
	"context"
	"fmt"
	sysync "sync"

	log "github.com/sirupsen/logrus"

	"github.com/mao65123/logmee/internal/event_bus"
	"github.com/mao65123/logmee/internal/utils"
	"github.com/mao65123/logmee/pkg/localstore"
	"github.com/mao65123/logmee/pkg/state"
	storesync "github.com/mao65123/logmee/pkg/sync"
	"github.com/mao65123/logmee/pkg/user"
)

// WorkspaceService is the single entry point for reading and mutating a
// user's workspace. All mutations go through Dispatch, which serializes them
// behind a lock, applies the reducer, persists the result locally and
// publishes the mutation for replication.
type WorkspaceService interface {
	Snapshot(ctx context.Context) (state.Snapshot, error)
	Dispatch(ctx context.Context, action state.Action) (state.Snapshot, error)
}

type WorkspaceServiceImpl struct {
	store  *localstore.Store
	remote storesync.Store
	bus    *event_bus.EventBus
	clock  utils.Clock

	mu         sysync.Mutex
	workspaces map[string]state.Snapshot
	pulled     map[string]bool
}

// NewWorkspaceServiceImpl wires the workspace. remote may be nil when sync is
// disabled; the workspace then lives on local persistence alone.
func NewWorkspaceServiceImpl(store *localstore.Store, remote storesync.Store, bus *event_bus.EventBus) *WorkspaceServiceImpl {
	return &WorkspaceServiceImpl{
		store:      store,
		remote:     remote,
		bus:        bus,
		clock:      &utils.SystemClock{},
		workspaces: make(map[string]state.Snapshot),
		pulled:     make(map[string]bool),
	}
}

func (s *WorkspaceServiceImpl) Snapshot(ctx context.Context) (state.Snapshot, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, err := s.currentLocked(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	return snapshot.Clone(), nil
}

// Dispatch applies one action and returns the resulting snapshot. Local
// persistence is best effort: a failed write keeps the in-memory state
// authoritative for the session. Replication listeners are notified after the
// lock is released.
func (s *WorkspaceServiceImpl) Dispatch(ctx context.Context, action state.Action) (state.Snapshot, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	current, err := s.currentLocked(ctx, userId)
	if err != nil {
		s.mu.Unlock()
		return state.Snapshot{}, err
	}

	entryId := affectedEntryId(action, current)
	next := state.Reduce(current, action, s.clock.Now())
	s.workspaces[userId] = next

	if err := s.store.Save(ctx, userId, next); err != nil {
		log.Errorf("failed to persist workspace for user %s: %v", userId, err)
	}
	s.mu.Unlock()

	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.StateMutatedEvent, event_bus.StateMutated{
		UserId:   userId,
		Action:   action,
		EntryID:  entryId,
		Snapshot: next.Clone(),
	})); err != nil {
		log.Errorf("failed to publish mutation event: %v", err)
	}

	return next.Clone(), nil
}

// currentLocked returns the cached snapshot, loading it on first touch. The
// first load also pulls the remote dataset once; the remote wins only when it
// actually holds data, so a fresh account keeps its local workspace.
func (s *WorkspaceServiceImpl) currentLocked(ctx context.Context, userId string) (state.Snapshot, error) {
	if snapshot, ok := s.workspaces[userId]; ok {
		return snapshot, nil
	}

	snapshot := s.store.Load(ctx, userId)

	if s.remote != nil && !s.pulled[userId] {
		s.pulled[userId] = true
		remote, err := s.remote.LoadAll(ctx, userId)
		if err != nil {
			log.Errorf("failed to pull remote workspace for user %s: %v", userId, err)
		} else if storesync.HasData(remote) {
			snapshot = remote
			if err := s.store.Save(ctx, userId, snapshot); err != nil {
				log.Errorf("failed to persist pulled workspace for user %s: %v", userId, err)
			}
		}
	}

	s.workspaces[userId] = snapshot
	return snapshot, nil
}

// affectedEntryId names the time entry a timer action touches, resolved
// before the reducer runs because a stop carries no id of its own.
func affectedEntryId(action state.Action, current state.Snapshot) string {
	switch a := action.(type) {
	case state.StartTimer:
		return a.EntryID
	case state.StopTimer:
		return current.Timer.EntryID
	case state.UpdateEntry:
		return a.Entry.ID
	}
	return ""
}
