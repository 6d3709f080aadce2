package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/mao65123/logmee/pkg/state"
)

type ThemeDTO struct {
	Color string `json:"color"`
}

type GoalsDTO struct {
	MonthlyGoalHours    *float64 `json:"monthlyGoalHours,omitempty"`
	MonthlyGoalRevenue  *int64   `json:"monthlyGoalRevenue,omitempty"`
	Currency            *string  `json:"currency,omitempty"`
	UserName            *string  `json:"userName,omitempty"`
	EnableNotifications *bool    `json:"enableNotifications,omitempty"`
}

type SettingsHandler struct {
	workspaceService WorkspaceService
}

func NewSettingsHandler(workspaceService WorkspaceService) *SettingsHandler {
	return &SettingsHandler{workspaceService}
}

func (handler *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot.Settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ThemeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Color == "" {
		http.Error(w, "color is required", http.StatusBadRequest)
		return
	}

	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateTheme{Color: dto.Color})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot.Settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdateGoals shallow-merges the posted fields into the settings; absent
// fields stay untouched.
func (handler *SettingsHandler) UpdateGoals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto GoalsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	patch := state.SettingsPatch{
		MonthlyGoalHours:    dto.MonthlyGoalHours,
		MonthlyGoalRevenue:  dto.MonthlyGoalRevenue,
		Currency:            dto.Currency,
		UserName:            dto.UserName,
		EnableNotifications: dto.EnableNotifications,
	}
	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateGoals{Patch: patch})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot.Settings); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
