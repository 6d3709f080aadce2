package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mao65123/logmee/pkg/state"
)

type ProjectDTO struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	FixedFee int64  `json:"fixedFee"`
	IsActive bool   `json:"isActive"`
}

type ProjectHandler struct {
	workspaceService WorkspaceService
}

func NewProjectHandler(workspaceService WorkspaceService) *ProjectHandler {
	return &ProjectHandler{workspaceService}
}

func (handler *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientId := mux.Vars(r)["clientId"]

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, found := current.FindClient(clientId); !found {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	project := state.Project{
		ID:       uuid.NewString(),
		ClientID: clientId,
		Name:     dto.Name,
		FixedFee: dto.FixedFee,
		IsActive: true,
	}
	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.AddProject{ClientID: clientId, Project: project})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	created, _, _ := snapshot.FindProject(project.ID)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ProjectDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	clientId := vars["clientId"]
	projectId := vars["id"]

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == "" || dto.ID != projectId {
		http.Error(w, "Invalid project id in request body", http.StatusBadRequest)
		return
	}

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, owner, found := current.FindProject(projectId); !found || owner.ID != clientId {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	project := state.Project(dto)
	project.ClientID = clientId
	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateProject{ClientID: clientId, Project: project})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, _, _ := snapshot.FindProject(projectId)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ProjectDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete removes the project and clears its references from time entries.
func (handler *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	clientId := vars["clientId"]
	projectId := vars["id"]

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, owner, found := current.FindProject(projectId); !found || owner.ID != clientId {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteProject{ClientID: clientId, ProjectID: projectId}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
