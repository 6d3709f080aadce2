package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mao65123/logmee/pkg/state"
)

type EntryHandler struct {
	workspaceService WorkspaceService
}

func NewEntryHandler(workspaceService WorkspaceService) *EntryHandler {
	return &EntryHandler{workspaceService}
}

func (handler *EntryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot.Entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Update replaces an entry wholesale with the posted body.
func (handler *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	entryId := mux.Vars(r)["id"]

	var entry state.TimeEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry.ID == "" || entry.ID != entryId {
		http.Error(w, "Invalid entry id in request body", http.StatusBadRequest)
		return
	}
	if entry.ClientID == "" {
		http.Error(w, "clientId is required", http.StatusBadRequest)
		return
	}
	if entry.RateType != state.RateHourly && entry.RateType != state.RateFixed {
		http.Error(w, "rateType must be hourly or fixed", http.StatusBadRequest)
		return
	}

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, found := current.FindEntry(entryId); !found {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateEntry{Entry: entry})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, _ := snapshot.FindEntry(entryId)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	entryId := mux.Vars(r)["id"]

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, found := current.FindEntry(entryId); !found {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteEntry{ID: entryId}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
