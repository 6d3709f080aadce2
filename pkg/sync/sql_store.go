package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mao65123/logmee/internal/database"
	"github.com/mao65123/logmee/pkg/state"
	log "github.com/sirupsen/logrus"
)

// SQLStore persists the per-entity sync tables on a relational database.
// Entities are translated to flat rows (field renaming only); task presets and
// categories are kept as JSON text columns.
type SQLStore struct {
	db *database.DB
}

func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) LoadAll(ctx context.Context, userId string) (state.Snapshot, error) {
	snapshot := state.DefaultSnapshot()

	clients, err := s.loadClients(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	snapshot.Clients = clients

	entries, err := s.loadEntries(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	snapshot.Entries = entries

	fees, err := s.loadFees(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	snapshot.MonthlyFixedFees = fees

	reports, err := s.loadSavedReports(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	snapshot.SavedReports = reports

	settings, found, err := s.loadSettings(ctx, userId)
	if err != nil {
		return state.Snapshot{}, err
	}
	if found {
		snapshot.Settings = settings
	}

	// The remote stores no timer; reconstruct it from the one open entry.
	for _, e := range snapshot.Entries {
		if e.EndTime == nil {
			snapshot.Timer = state.Timer{Status: state.TimerRunning, EntryID: e.ID}
			break
		}
	}

	return snapshot, nil
}

func (s *SQLStore) loadClients(ctx context.Context, userId string) ([]state.Client, error) {
	query := s.db.Rebind(`SELECT id, name, color, default_hourly_rate, closing_date, task_presets, categories
			FROM clients WHERE user_id = ? ORDER BY sort_order, id`)
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query clients: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	clients := []state.Client{}
	for rows.Next() {
		var c state.Client
		var presetsJSON, categoriesJSON string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.DefaultHourlyRate, &c.ClosingDate, &presetsJSON, &categoriesJSON); err != nil {
			err := fmt.Errorf("could not scan client: %w", err)
			log.Error(err)
			return nil, err
		}
		c.TaskPresets = decodeStringList(presetsJSON)
		c.Categories = decodeStringList(categoriesJSON)
		c.Projects = []state.Project{}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}

	projects, err := s.loadProjects(ctx, userId)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		for i := range clients {
			if clients[i].ID == p.ClientID {
				clients[i].Projects = append(clients[i].Projects, p)
				break
			}
		}
	}

	return clients, nil
}

func (s *SQLStore) loadProjects(ctx context.Context, userId string) ([]state.Project, error) {
	query := s.db.Rebind("SELECT id, client_id, name, fixed_fee, is_active FROM projects WHERE user_id = ? ORDER BY id")
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var projects []state.Project
	for rows.Next() {
		var p state.Project
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.FixedFee, &p.IsActive); err != nil {
			err := fmt.Errorf("could not scan project: %w", err)
			log.Error(err)
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLStore) loadEntries(ctx context.Context, userId string) ([]state.TimeEntry, error) {
	query := s.db.Rebind(`SELECT id, client_id, start_time, end_time, description, rate_type, project_id, category
			FROM time_entries WHERE user_id = ? ORDER BY start_time`)
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query time entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	entries := []state.TimeEntry{}
	for rows.Next() {
		var e state.TimeEntry
		var endTime sql.NullInt64
		var projectId, category sql.NullString
		var rateType string
		if err := rows.Scan(&e.ID, &e.ClientID, &e.StartTime, &endTime, &e.Description, &rateType, &projectId, &category); err != nil {
			err := fmt.Errorf("could not scan time entry: %w", err)
			log.Error(err)
			return nil, err
		}
		if endTime.Valid {
			end := endTime.Int64
			e.EndTime = &end
		}
		e.RateType = state.RateType(rateType)
		if e.RateType == "" {
			e.RateType = state.RateHourly
		}
		e.ProjectID = projectId.String
		e.Category = category.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) loadFees(ctx context.Context, userId string) ([]state.MonthlyFixedFee, error) {
	query := s.db.Rebind("SELECT id, project_id, year_month, amount, note FROM monthly_fixed_fees WHERE user_id = ? ORDER BY year_month")
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query monthly fixed fees: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	fees := []state.MonthlyFixedFee{}
	for rows.Next() {
		var f state.MonthlyFixedFee
		var note sql.NullString
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.YearMonth, &f.Amount, &note); err != nil {
			err := fmt.Errorf("could not scan monthly fixed fee: %w", err)
			log.Error(err)
			return nil, err
		}
		f.Note = note.String
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

func (s *SQLStore) loadSavedReports(ctx context.Context, userId string) ([]state.SavedReport, error) {
	query := s.db.Rebind(`SELECT id, client_id, title, period_start, period_end, created_at, html_content
			FROM saved_reports WHERE user_id = ? ORDER BY created_at`)
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query saved reports: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	reports := []state.SavedReport{}
	for rows.Next() {
		var r state.SavedReport
		if err := rows.Scan(&r.ID, &r.ClientID, &r.Title, &r.PeriodStart, &r.PeriodEnd, &r.CreatedAt, &r.HTMLContent); err != nil {
			err := fmt.Errorf("could not scan saved report: %w", err)
			log.Error(err)
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *SQLStore) loadSettings(ctx context.Context, userId string) (state.Settings, bool, error) {
	query := s.db.Rebind(`SELECT monthly_goal_hours, monthly_goal_revenue, currency, user_name, theme_color, enable_notifications
			FROM user_settings WHERE user_id = ?`)
	var settings state.Settings
	err := s.db.QueryRowContext(ctx, query, userId).Scan(
		&settings.MonthlyGoalHours,
		&settings.MonthlyGoalRevenue,
		&settings.Currency,
		&settings.UserName,
		&settings.ThemeColor,
		&settings.EnableNotifications,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return state.Settings{}, false, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query user settings: %w", err)
		log.Error(err)
		return state.Settings{}, false, err
	}
	return settings, true, nil
}

func (s *SQLStore) UpsertClient(ctx context.Context, userId string, client state.Client, position int) error {
	query := s.db.Rebind(`INSERT INTO clients (id, user_id, name, color, default_hourly_rate, closing_date, task_presets, categories, sort_order, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				color = excluded.color,
				default_hourly_rate = excluded.default_hourly_rate,
				closing_date = excluded.closing_date,
				task_presets = excluded.task_presets,
				categories = excluded.categories,
				sort_order = excluded.sort_order,
				updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		client.ID,
		userId,
		client.Name,
		client.Color,
		client.DefaultHourlyRate,
		client.ClosingDate,
		encodeStringList(client.TaskPresets),
		encodeStringList(client.Categories),
		position,
		time.Now().UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert client: %w", err)
		log.Error(err)
		return err
	}

	// The client row carries its projects with it; reconcile the project
	// table against the nested list.
	for _, p := range client.Projects {
		if err := s.UpsertProject(ctx, userId, p); err != nil {
			return err
		}
	}
	return s.deleteRemovedProjects(ctx, client)
}

func (s *SQLStore) deleteRemovedProjects(ctx context.Context, client state.Client) error {
	query := s.db.Rebind("SELECT id FROM projects WHERE client_id = ?")
	rows, err := s.db.QueryContext(ctx, query, client.ID)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("could not scan project id: %w", err)
		}
		known := false
		for _, p := range client.Projects {
			if p.ID == id {
				known = true
				break
			}
		}
		if !known {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range stale {
		if err := s.DeleteProject(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) DeleteClient(ctx context.Context, clientId string) error {
	return s.deleteById(ctx, "clients", clientId)
}

func (s *SQLStore) UpsertProject(ctx context.Context, userId string, project state.Project) error {
	query := s.db.Rebind(`INSERT INTO projects (id, user_id, client_id, name, fixed_fee, is_active, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				client_id = excluded.client_id,
				name = excluded.name,
				fixed_fee = excluded.fixed_fee,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		userId,
		project.ClientID,
		project.Name,
		project.FixedFee,
		project.IsActive,
		time.Now().UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert project: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SQLStore) DeleteProject(ctx context.Context, projectId string) error {
	return s.deleteById(ctx, "projects", projectId)
}

func (s *SQLStore) UpsertEntry(ctx context.Context, userId string, entry state.TimeEntry) error {
	query := s.db.Rebind(`INSERT INTO time_entries (id, user_id, client_id, start_time, end_time, description, rate_type, project_id, category, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				client_id = excluded.client_id,
				start_time = excluded.start_time,
				end_time = excluded.end_time,
				description = excluded.description,
				rate_type = excluded.rate_type,
				project_id = excluded.project_id,
				category = excluded.category,
				updated_at = excluded.updated_at`)
	var endTime interface{}
	if entry.EndTime != nil {
		endTime = *entry.EndTime
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		userId,
		entry.ClientID,
		entry.StartTime,
		endTime,
		entry.Description,
		string(entry.RateType),
		entry.ProjectID,
		entry.Category,
		time.Now().UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert time entry: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SQLStore) DeleteEntry(ctx context.Context, entryId string) error {
	return s.deleteById(ctx, "time_entries", entryId)
}

func (s *SQLStore) UpsertFee(ctx context.Context, userId string, fee state.MonthlyFixedFee) error {
	query := s.db.Rebind(`INSERT INTO monthly_fixed_fees (id, user_id, project_id, year_month, amount, note, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				project_id = excluded.project_id,
				year_month = excluded.year_month,
				amount = excluded.amount,
				note = excluded.note,
				updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		fee.ID,
		userId,
		fee.ProjectID,
		fee.YearMonth,
		fee.Amount,
		fee.Note,
		time.Now().UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert monthly fixed fee: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SQLStore) DeleteFee(ctx context.Context, feeId string) error {
	return s.deleteById(ctx, "monthly_fixed_fees", feeId)
}

func (s *SQLStore) UpsertSavedReport(ctx context.Context, userId string, report state.SavedReport) error {
	query := s.db.Rebind(`INSERT INTO saved_reports (id, user_id, client_id, title, period_start, period_end, created_at, html_content)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`)
	_, err := s.db.ExecContext(ctx, query,
		report.ID,
		userId,
		report.ClientID,
		report.Title,
		report.PeriodStart,
		report.PeriodEnd,
		report.CreatedAt,
		report.HTMLContent,
	)
	if err != nil {
		err := fmt.Errorf("could not upsert saved report: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SQLStore) DeleteSavedReport(ctx context.Context, reportId string) error {
	return s.deleteById(ctx, "saved_reports", reportId)
}

func (s *SQLStore) UpsertSettings(ctx context.Context, userId string, settings state.Settings) error {
	query := s.db.Rebind(`INSERT INTO user_settings (user_id, monthly_goal_hours, monthly_goal_revenue, currency, user_name, theme_color, enable_notifications, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				monthly_goal_hours = excluded.monthly_goal_hours,
				monthly_goal_revenue = excluded.monthly_goal_revenue,
				currency = excluded.currency,
				user_name = excluded.user_name,
				theme_color = excluded.theme_color,
				enable_notifications = excluded.enable_notifications,
				updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query,
		userId,
		settings.MonthlyGoalHours,
		settings.MonthlyGoalRevenue,
		settings.Currency,
		settings.UserName,
		settings.ThemeColor,
		settings.EnableNotifications,
		time.Now().UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not upsert user settings: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (s *SQLStore) deleteById(ctx context.Context, table string, id string) error {
	query := s.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		err := fmt.Errorf("could not delete from %s: %w", table, err)
		log.Error(err)
		return err
	}
	return nil
}

func encodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		// A string slice never fails to marshal.
		return "[]"
	}
	return string(data)
}

func decodeStringList(data string) []string {
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}
