package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mao65123/logmee/internal/rest"
)

type ClientStatsDTO struct {
	ClientID   string  `json:"clientId"`
	ClientName string  `json:"clientName"`
	Hours      float64 `json:"hours"`
	Revenue    int64   `json:"revenue"`
	EntryCount int     `json:"entryCount"`
}

type CategoryStatsDTO struct {
	Category   string  `json:"category"`
	Hours      float64 `json:"hours"`
	EntryCount int     `json:"entryCount"`
}

type PieSliceDTO struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

type DailyHoursDTO struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

type MonthlySummaryDTO struct {
	YearMonth    string             `json:"yearMonth"`
	TotalHours   float64            `json:"totalHours"`
	TotalRevenue int64              `json:"totalRevenue"`
	Clients      []ClientStatsDTO   `json:"clients"`
	Categories   []CategoryStatsDTO `json:"categories"`
	Pie          []PieSliceDTO      `json:"pie"`
	Daily        []DailyHoursDTO    `json:"daily"`
}

type GoalProgressDTO struct {
	YearMonth      string  `json:"yearMonth"`
	Hours          float64 `json:"hours"`
	GoalHours      float64 `json:"goalHours"`
	HoursPercent   float64 `json:"hoursPercent"`
	Revenue        int64   `json:"revenue"`
	GoalRevenue    int64   `json:"goalRevenue"`
	RevenuePercent float64 `json:"revenuePercent"`
}

type StatsHandler struct {
	statsService StatsService
	csvRenderer  ExportRenderer
}

func NewStatsHandler(statsService StatsService, csvRenderer ExportRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvRenderer}
}

// GetMonthlyStats returns the aggregation for the month in the `month` query
// parameter (2006-01 form).
func (handler *StatsHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	monthString := r.URL.Query().Get("month")
	month, err := time.Parse("2006-01", monthString)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid month format",
			Details: "month must be in 2006-01 format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	summary, err := handler.statsService.MonthlyStats(r.Context(), month.Year(), month.Month())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(monthlySummaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetGoalProgress returns the running month measured against the configured
// goals.
func (handler *StatsHandler) GetGoalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := handler.statsService.CurrentGoalProgress(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(GoalProgressDTO(progress)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ExportCsv streams closed entries between fromDate and toDate as CSV.
func (handler *StatsHandler) ExportCsv(w http.ResponseWriter, r *http.Request) {
	fromDateString := r.URL.Query().Get("fromDate")
	toDateString := r.URL.Query().Get("toDate")
	fromDate, err := time.Parse("2006-01-02", fromDateString)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid fromDate format",
			Details: "fromDate must be in 2006-01-02 format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}
	toDate, err := time.Parse("2006-01-02", toDateString)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid toDate format",
			Details: "toDate must be in 2006-01-02 format",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
			return
		}
		return
	}

	rows, err := handler.statsService.ExportRows(r.Context(), fromDate, toDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	csv, err := handler.csvRenderer.RenderRows(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if _, err := w.Write([]byte(csv)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func monthlySummaryToDTO(summary MonthlySummary) MonthlySummaryDTO {
	clients := make([]ClientStatsDTO, 0, len(summary.Clients))
	for _, cs := range summary.Clients {
		clients = append(clients, ClientStatsDTO(cs))
	}
	categories := make([]CategoryStatsDTO, 0, len(summary.Categories))
	for _, cat := range summary.Categories {
		categories = append(categories, CategoryStatsDTO(cat))
	}
	pie := make([]PieSliceDTO, 0, len(summary.Pie))
	for _, slice := range summary.Pie {
		pie = append(pie, PieSliceDTO(slice))
	}
	daily := make([]DailyHoursDTO, 0, len(summary.Daily))
	for _, day := range summary.Daily {
		daily = append(daily, DailyHoursDTO(day))
	}
	return MonthlySummaryDTO{
		YearMonth:    summary.YearMonth,
		TotalHours:   summary.TotalHours,
		TotalRevenue: summary.TotalRevenue,
		Clients:      clients,
		Categories:   categories,
		Pie:          pie,
		Daily:        daily,
	}
}
