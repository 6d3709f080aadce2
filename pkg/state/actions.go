package state

// Action is the closed set of mutations the reducer understands. Every action
// is total: applying it always yields a valid snapshot, and an action the
// reducer does not recognize leaves the snapshot unchanged.
type Action interface {
	// ActionName identifies the action for logging and sync mapping.
	ActionName() string
}

type StartTimer struct {
	EntryID     string
	ClientID    string
	Description string
	RateType    RateType
	ProjectID   string
	Category    string
}

type StopTimer struct{}

// UpdateEntry replaces the matching entry wholesale.
type UpdateEntry struct {
	Entry TimeEntry
}

type DeleteEntry struct {
	ID string
}

type AddClient struct {
	Client Client
}

type UpdateClient struct {
	Client Client
}

type DeleteClient struct {
	ID string
}

type DeleteClientPreset struct {
	ClientID string
	Preset   string
}

type ClearClientPresets struct {
	ClientID string
}

type AddProject struct {
	ClientID string
	Project  Project
}

type UpdateProject struct {
	ClientID string
	Project  Project
}

type DeleteProject struct {
	ClientID  string
	ProjectID string
}

type AddMonthlyFixedFee struct {
	Fee MonthlyFixedFee
}

type UpdateMonthlyFixedFee struct {
	Fee MonthlyFixedFee
}

type DeleteMonthlyFixedFee struct {
	ID string
}

type AddSavedReport struct {
	Report SavedReport
}

type DeleteSavedReport struct {
	ID string
}

type UpdateTheme struct {
	Color string
}

// SettingsPatch carries a shallow merge into the user settings. Nil fields are
// left untouched.
type SettingsPatch struct {
	MonthlyGoalHours    *float64
	MonthlyGoalRevenue  *int64
	Currency            *string
	UserName            *string
	EnableNotifications *bool
}

type UpdateGoals struct {
	Patch SettingsPatch
}

// ReorderClients replaces the client collection with the supplied permutation.
// The new list is taken as authoritative; the reducer does not validate it.
type ReorderClients struct {
	Clients []Client
}

func (StartTimer) ActionName() string            { return "START_TIMER" }
func (StopTimer) ActionName() string             { return "STOP_TIMER" }
func (UpdateEntry) ActionName() string           { return "UPDATE_ENTRY" }
func (DeleteEntry) ActionName() string           { return "DELETE_ENTRY" }
func (AddClient) ActionName() string             { return "ADD_CLIENT" }
func (UpdateClient) ActionName() string          { return "UPDATE_CLIENT" }
func (DeleteClient) ActionName() string          { return "DELETE_CLIENT" }
func (DeleteClientPreset) ActionName() string    { return "DELETE_CLIENT_PRESET" }
func (ClearClientPresets) ActionName() string    { return "CLEAR_CLIENT_PRESETS" }
func (AddProject) ActionName() string            { return "ADD_PROJECT" }
func (UpdateProject) ActionName() string         { return "UPDATE_PROJECT" }
func (DeleteProject) ActionName() string         { return "DELETE_PROJECT" }
func (AddMonthlyFixedFee) ActionName() string    { return "ADD_MONTHLY_FIXED_FEE" }
func (UpdateMonthlyFixedFee) ActionName() string { return "UPDATE_MONTHLY_FIXED_FEE" }
func (DeleteMonthlyFixedFee) ActionName() string { return "DELETE_MONTHLY_FIXED_FEE" }
func (AddSavedReport) ActionName() string        { return "ADD_SAVED_REPORT" }
func (DeleteSavedReport) ActionName() string     { return "DELETE_SAVED_REPORT" }
func (UpdateTheme) ActionName() string           { return "UPDATE_THEME" }
func (UpdateGoals) ActionName() string           { return "UPDATE_GOALS" }
func (ReorderClients) ActionName() string        { return "REORDER_CLIENTS" }
