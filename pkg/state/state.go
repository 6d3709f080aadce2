package state

type RateType string

const (
	RateHourly RateType = "hourly"
	RateFixed  RateType = "fixed"
)

type TimerStatus string

const (
	TimerIdle    TimerStatus = "idle"
	TimerRunning TimerStatus = "running"
)

// Timer models the single global timer. When Status is TimerRunning, EntryID
// points at the one open time entry; it is empty otherwise. Keeping the status
// explicit makes "at most one open entry" a structural property of the
// snapshot instead of reducer discipline.
type Timer struct {
	Status  TimerStatus `json:"status"`
	EntryID string      `json:"entryId,omitempty"`
}

type Project struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	FixedFee int64  `json:"fixedFee"`
	IsActive bool   `json:"isActive"`
}

type Client struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Color             string `json:"color"`
	DefaultHourlyRate int64  `json:"defaultHourlyRate"`
	// ClosingDate is the day of month the billing cycle ends, or 99 for
	// "end of calendar month".
	ClosingDate int       `json:"closingDate"`
	TaskPresets []string  `json:"taskPresets"`
	Projects    []Project `json:"projects"`
	Categories  []string  `json:"categories"`
}

// TimeEntry timestamps are Unix epoch milliseconds. EndTime nil means the
// entry is still running.
type TimeEntry struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"clientId"`
	StartTime   int64    `json:"startTime"`
	EndTime     *int64   `json:"endTime"`
	Description string   `json:"description"`
	RateType    RateType `json:"rateType"`
	ProjectID   string   `json:"projectId,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// MonthlyFixedFee activates a project's fixed fee for one calendar month.
// (ProjectID, YearMonth) is unique; toggling a month off deletes the record.
type MonthlyFixedFee struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	YearMonth string `json:"yearMonth"`
	Amount    int64  `json:"amount"`
	Note      string `json:"note,omitempty"`
}

// SavedReport is an immutable snapshot of a generated report. It is written
// once and only ever deleted.
type SavedReport struct {
	ID          string `json:"id"`
	ClientID    string `json:"clientId"`
	Title       string `json:"title"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	CreatedAt   int64  `json:"createdAt"`
	HTMLContent string `json:"htmlContent"`
}

type Settings struct {
	MonthlyGoalHours    float64 `json:"monthlyGoalHours"`
	MonthlyGoalRevenue  int64   `json:"monthlyGoalRevenue"`
	Currency            string  `json:"currency"`
	UserName            string  `json:"userName"`
	ThemeColor          string  `json:"themeColor"`
	EnableNotifications bool    `json:"enableNotifications"`
}

// Snapshot is the canonical in-memory state of one user's workspace.
type Snapshot struct {
	Clients          []Client          `json:"clients"`
	Entries          []TimeEntry       `json:"entries"`
	MonthlyFixedFees []MonthlyFixedFee `json:"monthlyFixedFees"`
	SavedReports     []SavedReport     `json:"savedReports"`
	Settings         Settings          `json:"settings"`
	Timer            Timer             `json:"timer"`
}

const (
	DefaultCurrency           = "JPY"
	DefaultMonthlyGoalHours   = 160
	DefaultMonthlyGoalRevenue = 500000
	DefaultUserName           = "Freelancer"
	DefaultThemeColor         = "#FFD700"
	DefaultClosingDate        = 99

	// MaxTaskPresets caps each client's recency-ordered preset list.
	MaxTaskPresets = 20
)

func DefaultSettings() Settings {
	return Settings{
		MonthlyGoalHours:    DefaultMonthlyGoalHours,
		MonthlyGoalRevenue:  DefaultMonthlyGoalRevenue,
		Currency:            DefaultCurrency,
		UserName:            DefaultUserName,
		ThemeColor:          DefaultThemeColor,
		EnableNotifications: false,
	}
}

func DefaultSnapshot() Snapshot {
	return Snapshot{
		Clients:          []Client{},
		Entries:          []TimeEntry{},
		MonthlyFixedFees: []MonthlyFixedFee{},
		SavedReports:     []SavedReport{},
		Settings:         DefaultSettings(),
		Timer:            Timer{Status: TimerIdle},
	}
}

// FindClient is the orphan-safe client lookup: aggregation paths that resolve
// a clientId must tolerate the client having been deleted.
func (s *Snapshot) FindClient(id string) (Client, bool) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}

// FindProject resolves a projectId across all clients, returning the owning
// client as well. Orphaned fee activations resolve to found == false.
func (s *Snapshot) FindProject(id string) (Project, Client, bool) {
	for _, c := range s.Clients {
		for _, p := range c.Projects {
			if p.ID == id {
				return p, c, true
			}
		}
	}
	return Project{}, Client{}, false
}

// FindEntry returns a copy of the entry with the given id.
func (s *Snapshot) FindEntry(id string) (TimeEntry, bool) {
	for _, e := range s.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return TimeEntry{}, false
}

// ActiveEntry returns the currently running entry, if any.
func (s *Snapshot) ActiveEntry() (TimeEntry, bool) {
	if s.Timer.Status != TimerRunning {
		return TimeEntry{}, false
	}
	return s.FindEntry(s.Timer.EntryID)
}

// FindFeeByActivation looks a fee up by its natural (projectId, yearMonth) key.
func (s *Snapshot) FindFeeByActivation(projectID, yearMonth string) (MonthlyFixedFee, bool) {
	for _, f := range s.MonthlyFixedFees {
		if f.ProjectID == projectID && f.YearMonth == yearMonth {
			return f, true
		}
	}
	return MonthlyFixedFee{}, false
}

// Clone returns a deep copy of the snapshot. The reducer operates on a clone
// so callers can hold on to previous snapshots safely. Collections come back
// non-nil so snapshots compare and serialize uniformly.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Clients = make([]Client, len(s.Clients))
	for i, c := range s.Clients {
		out.Clients[i] = c.clone()
	}
	out.Entries = make([]TimeEntry, len(s.Entries))
	for i, e := range s.Entries {
		out.Entries[i] = e.clone()
	}
	out.MonthlyFixedFees = make([]MonthlyFixedFee, len(s.MonthlyFixedFees))
	copy(out.MonthlyFixedFees, s.MonthlyFixedFees)
	out.SavedReports = make([]SavedReport, len(s.SavedReports))
	copy(out.SavedReports, s.SavedReports)
	return out
}

func (c Client) clone() Client {
	out := c
	out.TaskPresets = make([]string, len(c.TaskPresets))
	copy(out.TaskPresets, c.TaskPresets)
	out.Projects = make([]Project, len(c.Projects))
	copy(out.Projects, c.Projects)
	out.Categories = make([]string, len(c.Categories))
	copy(out.Categories, c.Categories)
	return out
}

func (e TimeEntry) clone() TimeEntry {
	out := e
	if e.EndTime != nil {
		end := *e.EndTime
		out.EndTime = &end
	}
	return out
}
