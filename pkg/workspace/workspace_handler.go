package workspace

import (
	"encoding/json"
	"net/http"
)

type WorkspaceHandler struct {
	workspaceService WorkspaceService
}

func NewWorkspaceHandler(workspaceService WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService}
}

// GetSnapshot returns the user's full workspace in one response, the shape
// the frontend hydrates from on load.
func (handler *WorkspaceHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
