package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mao65123/logmee/pkg/state"
)

type StartTimerDTO struct {
	ClientID    string `json:"clientId"`
	Description string `json:"description"`
	RateType    string `json:"rateType"`
	ProjectID   string `json:"projectId,omitempty"`
	Category    string `json:"category,omitempty"`
}

type TimerDTO struct {
	Status string           `json:"status"`
	Entry  *state.TimeEntry `json:"entry,omitempty"`
}

type TimerHandler struct {
	workspaceService WorkspaceService
}

func NewTimerHandler(workspaceService WorkspaceService) *TimerHandler {
	return &TimerHandler{workspaceService}
}

// Start opens a new time entry and puts the timer on it. Starting while a
// timer is already running is rejected.
func (handler *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	log.Debug("Starting timer")
	w.Header().Set("Content-Type", "application/json")

	var dto StartTimerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ClientID == "" {
		http.Error(w, "clientId is required", http.StatusBadRequest)
		return
	}
	rateType := state.RateType(dto.RateType)
	if rateType == "" {
		rateType = state.RateHourly
	}
	if rateType != state.RateHourly && rateType != state.RateFixed {
		http.Error(w, "rateType must be hourly or fixed", http.StatusBadRequest)
		return
	}

	entryId := uuid.NewString()
	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.StartTimer{
		EntryID:     entryId,
		ClientID:    dto.ClientID,
		Description: dto.Description,
		RateType:    rateType,
		ProjectID:   dto.ProjectID,
		Category:    dto.Category,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snapshot.Timer.EntryID != entryId {
		http.Error(w, "a timer is already running", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeTimer(w, snapshot)
}

// Stop closes the open entry.
func (handler *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	log.Debug("Stopping timer")
	w.Header().Set("Content-Type", "application/json")

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if current.Timer.Status != state.TimerRunning {
		http.Error(w, "no timer is running", http.StatusConflict)
		return
	}
	stoppedId := current.Timer.EntryID

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.StopTimer{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entry, _ := snapshot.FindEntry(stoppedId)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entry); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Current returns the timer together with the open entry, if any.
func (handler *TimerHandler) Current(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	writeTimer(w, snapshot)
}

func writeTimer(w http.ResponseWriter, snapshot state.Snapshot) {
	dto := TimerDTO{Status: string(snapshot.Timer.Status)}
	if entry, found := snapshot.ActiveEntry(); found {
		dto.Entry = &entry
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
