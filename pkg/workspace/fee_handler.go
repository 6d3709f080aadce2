package workspace

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mao65123/logmee/pkg/state"
)

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type ToggleFeeDTO struct {
	ProjectID string `json:"projectId"`
	YearMonth string `json:"yearMonth"`
	Amount    *int64 `json:"amount,omitempty"`
	Note      string `json:"note,omitempty"`
}

type ToggleFeeResultDTO struct {
	Activated bool                   `json:"activated"`
	Fee       *state.MonthlyFixedFee `json:"fee,omitempty"`
}

type FeeHandler struct {
	workspaceService WorkspaceService
}

func NewFeeHandler(workspaceService WorkspaceService) *FeeHandler {
	return &FeeHandler{workspaceService}
}

func (handler *FeeHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snapshot, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fees := snapshot.MonthlyFixedFees
	if month := r.URL.Query().Get("month"); month != "" {
		filtered := []state.MonthlyFixedFee{}
		for _, fee := range fees {
			if fee.YearMonth == month {
				filtered = append(filtered, fee)
			}
		}
		fees = filtered
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fees); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Toggle flips a project's fee activation for one month: on when no record
// exists for (projectId, yearMonth), off when one does. The amount defaults
// to the project's configured fixed fee.
func (handler *FeeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ToggleFeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.ProjectID == "" {
		http.Error(w, "projectId is required", http.StatusBadRequest)
		return
	}
	if !yearMonthPattern.MatchString(dto.YearMonth) {
		http.Error(w, "yearMonth must be in 2006-01 format", http.StatusBadRequest)
		return
	}

	current, err := handler.workspaceService.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if existing, found := current.FindFeeByActivation(dto.ProjectID, dto.YearMonth); found {
		if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteMonthlyFixedFee{ID: existing.ID}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(ToggleFeeResultDTO{Activated: false}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	project, _, found := current.FindProject(dto.ProjectID)
	if !found {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	amount := project.FixedFee
	if dto.Amount != nil {
		amount = *dto.Amount
	}

	fee := state.MonthlyFixedFee{
		ID:        uuid.NewString(),
		ProjectID: dto.ProjectID,
		YearMonth: dto.YearMonth,
		Amount:    amount,
		Note:      dto.Note,
	}
	snapshot, err := handler.workspaceService.Dispatch(r.Context(), state.AddMonthlyFixedFee{Fee: fee})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	created, _ := snapshot.FindFeeByActivation(dto.ProjectID, dto.YearMonth)
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ToggleFeeResultDTO{Activated: true, Fee: &created}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *FeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	feeId := mux.Vars(r)["id"]

	var fee state.MonthlyFixedFee
	if err := json.NewDecoder(r.Body).Decode(&fee); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if fee.ID == "" || fee.ID != feeId {
		http.Error(w, "Invalid fee id in request body", http.StatusBadRequest)
		return
	}
	if !yearMonthPattern.MatchString(fee.YearMonth) {
		http.Error(w, "yearMonth must be in 2006-01 format", http.StatusBadRequest)
		return
	}

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.UpdateMonthlyFixedFee{Fee: fee}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(fee); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (handler *FeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	feeId := mux.Vars(r)["id"]

	if _, err := handler.workspaceService.Dispatch(r.Context(), state.DeleteMonthlyFixedFee{ID: feeId}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
