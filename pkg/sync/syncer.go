package sync

import (
	"context"
	sysync "sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mao65123/logmee/internal/event_bus"
	"github.com/mao65123/logmee/pkg/state"
)

// Syncer replicates workspace mutations to the remote store. It subscribes to
// the mutation event and maps each action to the entity writes it implies.
// Replication is fire-and-forget: calls run in their own goroutine, detached
// from the request context, and failures are only logged. The local snapshot
// stays authoritative either way.
type Syncer struct {
	store            Store
	settingsDebounce time.Duration

	mu              sysync.Mutex
	pendingSettings map[string]*time.Timer
	wg              sysync.WaitGroup

	unsubscribe func()
}

func NewSyncer(store Store, bus *event_bus.EventBus, settingsDebounce time.Duration) *Syncer {
	s := &Syncer{
		store:            store,
		settingsDebounce: settingsDebounce,
		pendingSettings:  make(map[string]*time.Timer),
	}
	s.unsubscribe = event_bus.SubscribeTyped[event_bus.StateMutated](
		bus, event_bus.StateMutatedEvent, s.handleMutation)
	return s
}

// Close detaches the syncer from the bus and waits for in-flight work.
func (s *Syncer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.Flush()
}

func (s *Syncer) handleMutation(e event_bus.EventT[event_bus.StateMutated]) error {
	m := e.Data
	// Replication outlives the request that triggered it.
	ctx := context.WithoutCancel(e.Context())

	switch m.Action.(type) {
	case state.UpdateTheme, state.UpdateGoals:
		s.scheduleSettingsSync(ctx, m.UserId, m.Snapshot.Settings)
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.replicate(ctx, m); err != nil {
			log.Errorf("remote sync failed for action %s (user %s): %v",
				m.Action.ActionName(), m.UserId, err)
		}
	}()
	return nil
}

// replicate performs the remote writes implied by a single action. Time entry
// writes also refresh the owning client row so its task presets follow.
func (s *Syncer) replicate(ctx context.Context, m event_bus.StateMutated) error {
	switch a := m.Action.(type) {
	case state.StartTimer, state.StopTimer:
		return s.syncEntry(ctx, m, m.EntryID)
	case state.UpdateEntry:
		return s.syncEntry(ctx, m, a.Entry.ID)
	case state.DeleteEntry:
		return s.store.DeleteEntry(ctx, a.ID)

	case state.AddClient:
		return s.syncClient(ctx, m, a.Client.ID)
	case state.UpdateClient:
		return s.syncClient(ctx, m, a.Client.ID)
	case state.DeleteClient:
		return s.store.DeleteClient(ctx, a.ID)
	case state.DeleteClientPreset:
		return s.syncClient(ctx, m, a.ClientID)
	case state.ClearClientPresets:
		return s.syncClient(ctx, m, a.ClientID)

	case state.AddProject:
		return s.store.UpsertProject(ctx, m.UserId, a.Project)
	case state.UpdateProject:
		return s.store.UpsertProject(ctx, m.UserId, a.Project)
	case state.DeleteProject:
		return s.store.DeleteProject(ctx, a.ProjectID)

	case state.AddMonthlyFixedFee:
		return s.store.UpsertFee(ctx, m.UserId, a.Fee)
	case state.UpdateMonthlyFixedFee:
		return s.store.UpsertFee(ctx, m.UserId, a.Fee)
	case state.DeleteMonthlyFixedFee:
		return s.store.DeleteFee(ctx, a.ID)

	case state.AddSavedReport:
		return s.store.UpsertSavedReport(ctx, m.UserId, a.Report)
	case state.DeleteSavedReport:
		return s.store.DeleteSavedReport(ctx, a.ID)

	case state.ReorderClients:
		for i, c := range m.Snapshot.Clients {
			if err := s.store.UpsertClient(ctx, m.UserId, c, i); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (s *Syncer) syncEntry(ctx context.Context, m event_bus.StateMutated, entryId string) error {
	entry, ok := m.Snapshot.FindEntry(entryId)
	if !ok {
		// The mutation was a no-op, nothing to replicate.
		return nil
	}
	if err := s.store.UpsertEntry(ctx, m.UserId, entry); err != nil {
		return err
	}
	return s.syncClient(ctx, m, entry.ClientID)
}

func (s *Syncer) syncClient(ctx context.Context, m event_bus.StateMutated, clientId string) error {
	for i, c := range m.Snapshot.Clients {
		if c.ID == clientId {
			return s.store.UpsertClient(ctx, m.UserId, c, i)
		}
	}
	return nil
}

// scheduleSettingsSync arms a trailing per-user timer. A burst of settings
// mutations within the quiet period collapses into a single remote write
// carrying the latest settings.
func (s *Syncer) scheduleSettingsSync(ctx context.Context, userId string, settings state.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.pendingSettings[userId]; ok && prev.Stop() {
		s.wg.Done()
	}

	s.wg.Add(1)
	s.pendingSettings[userId] = time.AfterFunc(s.settingsDebounce, func() {
		defer s.wg.Done()
		s.mu.Lock()
		delete(s.pendingSettings, userId)
		s.mu.Unlock()
		if err := s.store.UpsertSettings(ctx, userId, settings); err != nil {
			log.Errorf("remote sync failed for settings (user %s): %v", userId, err)
		}
	})
}

// Flush fires pending debounced writes immediately and waits for every
// in-flight replication call to finish. Used in tests and during shutdown.
func (s *Syncer) Flush() {
	s.mu.Lock()
	for _, t := range s.pendingSettings {
		if t.Stop() {
			t.Reset(0)
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}
