package app

import (
	"time"

	"github.com/mao65123/logmee/internal/config"
	"github.com/mao65123/logmee/internal/database"
	"github.com/mao65123/logmee/internal/event_bus"
	"github.com/mao65123/logmee/internal/utils"
	"github.com/mao65123/logmee/pkg/localstore"
	"github.com/mao65123/logmee/pkg/report"
	"github.com/mao65123/logmee/pkg/stats"
	storesync "github.com/mao65123/logmee/pkg/sync"
	"github.com/mao65123/logmee/pkg/workspace"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	LocalRepo  localstore.Repository
	LocalStore *localstore.Store

	SyncStore storesync.Store
	Syncer    *storesync.Syncer

	WorkspaceService   *workspace.WorkspaceServiceImpl
	WorkspaceHandler   *workspace.WorkspaceHandler
	TimerHandler       *workspace.TimerHandler
	ClientHandler      *workspace.ClientHandler
	ProjectHandler     *workspace.ProjectHandler
	EntryHandler       *workspace.EntryHandler
	FeeHandler         *workspace.FeeHandler
	SavedReportHandler *workspace.SavedReportHandler
	SettingsHandler    *workspace.SettingsHandler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvExportRendererImpl
	StatsHandler     *stats.StatsHandler

	ReportService *report.ReportServiceImpl
	ReportHandler *report.ReportHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *database.DB, cfg config.Application, loc *time.Location) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.LocalRepo = localstore.NewRepository(db)
	deps.LocalStore = localstore.NewStore(deps.LocalRepo)

	if cfg.Sync.Enabled {
		deps.SyncStore = storesync.NewSQLStore(db)
		debounce := time.Duration(cfg.Sync.SettingsDebounceMs) * time.Millisecond
		deps.Syncer = storesync.NewSyncer(deps.SyncStore, deps.EventBus, debounce)
	}

	deps.WorkspaceService = workspace.NewWorkspaceServiceImpl(deps.LocalStore, deps.SyncStore, deps.EventBus)
	deps.WorkspaceHandler = workspace.NewWorkspaceHandler(deps.WorkspaceService)
	deps.TimerHandler = workspace.NewTimerHandler(deps.WorkspaceService)
	deps.ClientHandler = workspace.NewClientHandler(deps.WorkspaceService)
	deps.ProjectHandler = workspace.NewProjectHandler(deps.WorkspaceService)
	deps.EntryHandler = workspace.NewEntryHandler(deps.WorkspaceService)
	deps.FeeHandler = workspace.NewFeeHandler(deps.WorkspaceService)
	deps.SavedReportHandler = workspace.NewSavedReportHandler(deps.WorkspaceService)
	deps.SettingsHandler = workspace.NewSettingsHandler(deps.WorkspaceService)

	deps.StatsService = stats.NewStatsServiceImpl(deps.WorkspaceService, loc)
	deps.CsvStatsRenderer = stats.NewCsvExportRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.ReportService = report.NewReportServiceImpl(deps.WorkspaceService, loc)
	deps.ReportHandler = report.NewReportHandler(deps.ReportService)

	return deps
}
