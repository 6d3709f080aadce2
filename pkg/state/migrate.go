package state

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// The persisted snapshot is a single JSON document. Older documents are
// carried forward by normalization rules that run unconditionally on every
// decode, so a document written by any prior schema version loads into a
// valid current-shape snapshot. Normalization is idempotent.

type settingsDoc struct {
	MonthlyGoalHours    *float64 `json:"monthlyGoalHours"`
	MonthlyGoalRevenue  *int64   `json:"monthlyGoalRevenue"`
	Currency            *string  `json:"currency"`
	UserName            *string  `json:"userName"`
	ThemeColor          *string  `json:"themeColor"`
	EnableNotifications *bool    `json:"enableNotifications"`
}

type projectDoc struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	FixedFee *int64 `json:"fixedFee"`
	// HourlyRate is a deprecated per-project field; it is dropped on load.
	HourlyRate *int64 `json:"hourlyRate"`
	IsActive   *bool  `json:"isActive"`
}

type clientDoc struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Color             string       `json:"color"`
	DefaultHourlyRate *int64       `json:"defaultHourlyRate"`
	// DefaultFixedFee is a deprecated field; it is dropped on load.
	DefaultFixedFee *int64       `json:"defaultFixedFee"`
	ClosingDate     *int         `json:"closingDate"`
	TaskPresets     []string     `json:"taskPresets"`
	Projects        []projectDoc `json:"projects"`
	Categories      []string     `json:"categories"`
}

type entryDoc struct {
	ID          string `json:"id"`
	ClientID    string `json:"clientId"`
	StartTime   int64  `json:"startTime"`
	EndTime     *int64 `json:"endTime"`
	Description string `json:"description"`
	RateType    string `json:"rateType"`
	ProjectID   string `json:"projectId"`
	Category    string `json:"category"`
}

type feeDoc struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	// ClientID marks the deprecated client-scoped fee shape. Documents
	// containing it cannot be migrated mechanically and reset the fee list.
	ClientID  string `json:"clientId"`
	YearMonth string `json:"yearMonth"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note"`
}

type document struct {
	Clients          []clientDoc   `json:"clients"`
	Entries          []entryDoc    `json:"entries"`
	MonthlyFixedFees []feeDoc      `json:"monthlyFixedFees"`
	SavedReports     []SavedReport `json:"savedReports"`
	Settings         *settingsDoc  `json:"settings"`
	Timer            *Timer        `json:"timer"`
	// ActiveEntryID is the pre-Timer shape of the running-entry pointer.
	ActiveEntryID *string `json:"activeEntryId"`
}

// Decode parses a persisted snapshot document and migrates it to the current
// schema shape.
func Decode(data []byte) (Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("could not parse snapshot document: %w", err)
	}
	return normalize(doc), nil
}

// Encode serializes a snapshot to its persisted document form.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("could not serialize snapshot: %w", err)
	}
	return data, nil
}

func normalize(doc document) Snapshot {
	s := DefaultSnapshot()

	if doc.Settings != nil {
		s.Settings = normalizeSettings(*doc.Settings)
	}

	s.Clients = make([]Client, 0, len(doc.Clients))
	for _, c := range doc.Clients {
		s.Clients = append(s.Clients, normalizeClient(c))
	}

	s.Entries = make([]TimeEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		rateType := RateType(e.RateType)
		if rateType == "" {
			rateType = RateHourly
		}
		s.Entries = append(s.Entries, TimeEntry{
			ID:          e.ID,
			ClientID:    e.ClientID,
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Description: e.Description,
			RateType:    rateType,
			ProjectID:   e.ProjectID,
			Category:    e.Category,
		})
	}

	s.MonthlyFixedFees = normalizeFees(doc.MonthlyFixedFees)

	if doc.SavedReports != nil {
		s.SavedReports = doc.SavedReports
	}

	s.Timer = normalizeTimer(doc, s.Entries)

	return s
}

func normalizeSettings(doc settingsDoc) Settings {
	s := DefaultSettings()
	if doc.MonthlyGoalHours != nil {
		s.MonthlyGoalHours = *doc.MonthlyGoalHours
	}
	if doc.MonthlyGoalRevenue != nil {
		s.MonthlyGoalRevenue = *doc.MonthlyGoalRevenue
	}
	if doc.Currency != nil {
		s.Currency = *doc.Currency
	}
	if doc.UserName != nil {
		s.UserName = *doc.UserName
	}
	if doc.ThemeColor != nil {
		s.ThemeColor = *doc.ThemeColor
	}
	s.EnableNotifications = doc.EnableNotifications != nil && *doc.EnableNotifications
	return s
}

func normalizeClient(doc clientDoc) Client {
	c := Client{
		ID:          doc.ID,
		Name:        doc.Name,
		Color:       doc.Color,
		ClosingDate: DefaultClosingDate,
		TaskPresets: []string{},
		Projects:    []Project{},
		Categories:  []string{},
	}
	if doc.DefaultHourlyRate != nil {
		c.DefaultHourlyRate = *doc.DefaultHourlyRate
	}
	if doc.ClosingDate != nil && *doc.ClosingDate != 0 {
		c.ClosingDate = *doc.ClosingDate
	}
	if doc.TaskPresets != nil {
		c.TaskPresets = doc.TaskPresets
	}
	if doc.Categories != nil {
		c.Categories = doc.Categories
	}
	for _, p := range doc.Projects {
		project := Project{
			ID:       p.ID,
			ClientID: doc.ID,
			Name:     p.Name,
			IsActive: p.IsActive == nil || *p.IsActive,
		}
		if p.FixedFee != nil {
			project.FixedFee = *p.FixedFee
		}
		c.Projects = append(c.Projects, project)
	}
	return c
}

// normalizeFees resets the whole fee list when any record still carries the
// deprecated client-scoped shape: those records are structurally incompatible
// with project-scoped fees and cannot be migrated. The reset loses data, so it
// is logged loudly rather than happening silently.
func normalizeFees(docs []feeDoc) []MonthlyFixedFee {
	for _, f := range docs {
		if f.ClientID != "" {
			log.Warnf("discarding %d monthly fixed fee record(s) in the deprecated client-scoped format; fees must be re-activated per project", len(docs))
			return []MonthlyFixedFee{}
		}
	}
	fees := make([]MonthlyFixedFee, 0, len(docs))
	for _, f := range docs {
		fees = append(fees, MonthlyFixedFee{
			ID:        f.ID,
			ProjectID: f.ProjectID,
			YearMonth: f.YearMonth,
			Amount:    f.Amount,
			Note:      f.Note,
		})
	}
	return fees
}

func normalizeTimer(doc document, entries []TimeEntry) Timer {
	entryID := ""
	if doc.Timer != nil && doc.Timer.Status == TimerRunning {
		entryID = doc.Timer.EntryID
	} else if doc.Timer == nil && doc.ActiveEntryID != nil {
		entryID = *doc.ActiveEntryID
	}
	if entryID == "" {
		return Timer{Status: TimerIdle}
	}
	// The pointer is only honored when it references an entry that is
	// actually still open.
	for _, e := range entries {
		if e.ID == entryID && e.EndTime == nil {
			return Timer{Status: TimerRunning, EntryID: entryID}
		}
	}
	return Timer{Status: TimerIdle}
}
