package workspace

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mao65123/logmee/internal/utils"
	"github.com/mao65123/logmee/pkg/state"
)

type SavedReportDTO struct {
	ClientID    string `json:"clientId"`
	Title       string `json:"title"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	HTMLContent string `json:"htmlContent"`
}

type SavedReportHandler struct {
	workspaceService WorkspaceService
	clock            utils.Clock
}

func NewSavedReportHandler(workspaceService WorkspaceService) *SavedReportHandler {
	return &SavedReportHandler{workspaceService, &utils.SystemClock{}}
}

func (handler *SavedReportHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(snapshot.SavedReports); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Create stores a rendered report. Saved reports are write-once; there is no
// update endpoint.
func (handler *SavedReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto SavedReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	report := state.SavedReport{
		ID:          uuid.NewString(),
		ClientID:    dto.ClientID,
		Title:       dto.Title,
		PeriodStart: dto.PeriodStart,
		PeriodEnd:   dto.PeriodEnd,
		CreatedAt:   utils.ToMillis(handler.clock.Now()),
		HTMLContent: dto.HTMLContent,
	}
	if _, err := handler.workspaceService.Dispatch(r.Context(), state.AddSavedReport{Report: report}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *SavedReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	reportId := mux.Vars(r)["id"]

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteSavedReport{ID: reportId}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
