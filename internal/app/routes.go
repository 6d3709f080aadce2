package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Workspace snapshot
	r.HandleFunc("/api/workspace", deps.WorkspaceHandler.GetSnapshot).Methods("GET")

	// Timer
	r.HandleFunc("/api/timer", deps.TimerHandler.Current).Methods("GET")
	r.HandleFunc("/api/timer/start", deps.TimerHandler.Start).Methods("POST")
	r.HandleFunc("/api/timer/stop", deps.TimerHandler.Stop).Methods("POST")

	// Time entries
	r.HandleFunc("/api/entry", deps.EntryHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/entry/{id}", deps.EntryHandler.Update).Methods("PUT")
	r.HandleFunc("/api/entry/{id}", deps.EntryHandler.Delete).Methods("DELETE")

	// Clients
	r.HandleFunc("/api/client", deps.ClientHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/client", deps.ClientHandler.Create).Methods("POST")
	r.HandleFunc("/api/client/reorder", deps.ClientHandler.Reorder).Methods("PUT")
	r.HandleFunc("/api/client/{id}", deps.ClientHandler.Update).Methods("PUT")
	r.HandleFunc("/api/client/{id}", deps.ClientHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/client/{id}/presets", deps.ClientHandler.DeletePreset).Methods("DELETE")

	// Projects
	r.HandleFunc("/api/client/{clientId}/project", deps.ProjectHandler.Create).Methods("POST")
	r.HandleFunc("/api/client/{clientId}/project/{id}", deps.ProjectHandler.Update).Methods("PUT")
	r.HandleFunc("/api/client/{clientId}/project/{id}", deps.ProjectHandler.Delete).Methods("DELETE")

	// Monthly fixed fees
	r.HandleFunc("/api/fee", deps.FeeHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/fee/toggle", deps.FeeHandler.Toggle).Methods("POST")
	r.HandleFunc("/api/fee/{id}", deps.FeeHandler.Update).Methods("PUT")
	r.HandleFunc("/api/fee/{id}", deps.FeeHandler.Delete).Methods("DELETE")

	// Saved reports
	r.HandleFunc("/api/report/saved", deps.SavedReportHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/report/saved", deps.SavedReportHandler.Create).Methods("POST")
	r.HandleFunc("/api/report/saved/{id}", deps.SavedReportHandler.Delete).Methods("DELETE")

	// Report generation
	r.HandleFunc("/api/report", deps.ReportHandler.BuildReport).Methods("GET")
	r.HandleFunc("/api/report/period", deps.ReportHandler.ResolvePeriod).Methods("GET")

	// Stats
	r.HandleFunc("/api/stats/monthly", deps.StatsHandler.GetMonthlyStats).Queries("month", "{month}").Methods("GET")
	r.HandleFunc("/api/stats/goals", deps.StatsHandler.GetGoalProgress).Methods("GET")
	r.HandleFunc("/api/stats/export", deps.StatsHandler.ExportCsv).Queries("fromDate", "{fromDate}", "toDate", "{toDate}").Methods("GET")

	// Settings
	r.HandleFunc("/api/settings", deps.SettingsHandler.Get).Methods("GET")
	r.HandleFunc("/api/settings/theme", deps.SettingsHandler.UpdateTheme).Methods("PUT")
	r.HandleFunc("/api/settings/goals", deps.SettingsHandler.UpdateGoals).Methods("PATCH")
}
