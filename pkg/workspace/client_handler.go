package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mao65123/logmee/pkg/state"
)

type ClientDTO struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Color             string          `json:"color"`
	DefaultHourlyRate int64           `json:"defaultHourlyRate"`
	ClosingDate       int             `json:"closingDate"`
	TaskPresets       []string        `json:"taskPresets"`
	Projects          []state.Project `json:"projects"`
	Categories        []string        `json:"categories"`
}

type ReorderClientsDTO struct {
	ClientIDs []string `json:"clientIds"`
}

type ClientHandler struct {
	workspaceService WorkspaceService
}

func NewClientHandler(workspaceService WorkspaceService) *ClientHandler {
	return &ClientHandler{workspaceService}
}

func (handler *ClientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	clients := make([]ClientDTO, 0, len(snapshot.Clients))
	for _, client := range snapshot.Clients {
		clients = append(clients, clientToDTO(client))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(clients); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new client")
	w.Header().Set("Content-Type", "application/json")

	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	client := dtoToClient(dto)
	client.ID = uuid.NewString()
	client.Projects = []state.Project{}
	if client.ClosingDate == 0 {
		client.ClosingDate = state.DefaultClosingDate
	}

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.AddClient{Client: client})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	created, _ := snapshot.FindClient(client.ID)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(clientToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientId := mux.Vars(r)["id"]

	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ID == "" || dto.ID != clientId {
		http.Error(w, "Invalid client id in request body", http.StatusBadRequest)
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

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateClient{Client: dtoToClient(dto)})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	updated, _ := snapshot.FindClient(clientId)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(clientToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete removes the client. Its historical time entries stay behind on
// purpose; reports resolve them orphan-safely.
func (handler *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientId := mux.Vars(r)["id"]

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, found := current.FindClient(clientId); !found {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteClient{ID: clientId}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePreset removes one task preset when the preset query parameter is
// set, or clears the whole list otherwise.
func (handler *ClientHandler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clientId := mux.Vars(r)["id"]

	var action state.Action
	if preset := r.URL.Query().Get("preset"); preset != "" {
		action = state.DeleteClientPreset{ClientID: clientId, Preset: preset}
	} else {
		action = state.ClearClientPresets{ClientID: clientId}
	}

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), action)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	client, found := snapshot.FindClient(clientId)
	if !found {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(clientToDTO(client)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Reorder replaces the client list order with the posted id permutation.
func (handler *ClientHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ReorderClientsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(dto.ClientIDs) != len(current.Clients) {
		http.Error(w, "clientIds must contain every client exactly once", http.StatusBadRequest)
		return
	}
	reordered := make([]state.Client, 0, len(dto.ClientIDs))
	for _, id := range dto.ClientIDs {
		client, found := current.FindClient(id)
		if !found {
			http.Error(w, "Unknown client id: "+id, http.StatusBadRequest)
			return
		}
		reordered = append(reordered, client)
	}

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.ReorderClients{Clients: reordered})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	clients := make([]ClientDTO, 0, len(snapshot.Clients))
	for _, client := range snapshot.Clients {
		clients = append(clients, clientToDTO(client))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(clients); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func clientToDTO(client state.Client) ClientDTO {
	return ClientDTO(client)
}

func dtoToClient(dto ClientDTO) state.Client {
	client := state.Client(dto)
	if client.TaskPresets == nil {
		client.TaskPresets = []string{}
	}
	if client.Projects == nil {
		client.Projects = []state.Project{}
	}
	if client.Categories == nil {
		client.Categories = []string{}
	}
	return client
}
