package event_bus

import "github.com/mao65123/logmee/pkg/state"

// StateMutatedEvent is published after every successful workspace mutation.
const StateMutatedEvent EventType = "workspace.state.mutated"

// StateMutated carries the applied action together with the snapshot it
// produced. EntryID names the time entry a timer action touched (for
// STOP_TIMER the action itself does not carry the id).
type StateMutated struct {
	UserId   string
	Action   state.Action
	EntryID  string
	Snapshot state.Snapshot
}
