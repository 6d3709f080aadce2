package report

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mao65123/logmee/internal/rest"
)

type RowDTO struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Revenue     int64   `json:"revenue"`
	EntryCount  int     `json:"entryCount"`
}

type ReportDTO struct {
	ClientID      string   `json:"clientId"`
	ClientName    string   `json:"clientName"`
	PeriodStart   string   `json:"periodStart"`
	PeriodEnd     string   `json:"periodEnd"`
	Rows          []RowDTO `json:"rows"`
	TotalHours    float64  `json:"totalHours"`
	HourlyRevenue int64    `json:"hourlyRevenue"`
	FixedFeeTotal int64    `json:"fixedFeeTotal"`
	TotalRevenue  int64    `json:"totalRevenue"`
}

type PeriodDTO struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type ReportHandler struct {
	reportService ReportService
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService}
}

// BuildReport builds a report from query parameters. projectIds is a comma
// separated list; leaving the parameter out disables the project filter.
func (handler *ReportHandler) BuildReport(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	clientId := params.Get("clientId")
	if clientId == "" {
		writeBadRequest(w, "Missing clientId", "clientId query parameter is required")
		return
	}
	fromDate, err := time.Parse("2006-01-02", params.Get("fromDate"))
	if err != nil {
		writeBadRequest(w, "Invalid fromDate format", "fromDate must be in 2006-01-02 format")
		return
	}
	toDate, err := time.Parse("2006-01-02", params.Get("toDate"))
	if err != nil {
		writeBadRequest(w, "Invalid toDate format", "toDate must be in 2006-01-02 format")
		return
	}

	query := Query{
		ClientID:          clientId,
		StartDate:         fromDate,
		EndDate:           toDate,
		IncludeUnassigned: params.Get("includeUnassigned") == "true",
		GroupByDate:       params.Get("groupByDate") == "true",
	}
	if params.Has("projectIds") {
		query.ProjectIDs = []string{}
		for _, id := range strings.Split(params.Get("projectIds"), ",") {
			if id != "" {
				query.ProjectIDs = append(query.ProjectIDs, id)
			}
		}
	}

	report, err := handler.reportService.BuildReport(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reportToDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ResolvePeriod resolves the "thisMonth" / "lastMonth" shortcut for a client.
func (handler *ReportHandler) ResolvePeriod(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	clientId := params.Get("clientId")
	if clientId == "" {
		writeBadRequest(w, "Missing clientId", "clientId query parameter is required")
		return
	}
	preset := PeriodPreset(params.Get("preset"))
	if preset != PeriodThisMonth && preset != PeriodLastMonth {
		writeBadRequest(w, "Invalid preset", "preset must be thisMonth or lastMonth")
		return
	}

	start, end, err := handler.reportService.ResolvePeriod(r.Context(), clientId, preset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	period := PeriodDTO{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	}
	if err := json.NewEncoder(w).Encode(period); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeBadRequest(w http.ResponseWriter, message string, details string) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func reportToDTO(report Report) ReportDTO {
	rows := make([]RowDTO, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, RowDTO(row))
	}
	return ReportDTO{
		ClientID:      report.ClientID,
		ClientName:    report.ClientName,
		PeriodStart:   report.PeriodStart,
		PeriodEnd:     report.PeriodEnd,
		Rows:          rows,
		TotalHours:    report.TotalHours,
		HourlyRevenue: report.HourlyRevenue,
		FixedFeeTotal: report.FixedFeeTotal,
		TotalRevenue:  report.TotalRevenue,
	}
}
