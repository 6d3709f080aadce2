package state

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Reduce applies one action to a snapshot and returns the resulting snapshot.
// It is pure: the input snapshot is never modified, and the same inputs always
// produce the same output. It never fails; actions that cannot apply (starting
// a timer while one runs, updating a missing entity) leave the snapshot
// unchanged.
func Reduce(s Snapshot, action Action, now time.Time) Snapshot {
	next := s.Clone()

	switch a := action.(type) {
	case StartTimer:
		if next.Timer.Status == TimerRunning {
			// Callers must stop the running timer first.
			return next
		}
		entry := TimeEntry{
			ID:          a.EntryID,
			ClientID:    a.ClientID,
			StartTime:   now.UnixMilli(),
			EndTime:     nil,
			Description: a.Description,
			RateType:    a.RateType,
			ProjectID:   a.ProjectID,
			Category:    a.Category,
		}
		next.Entries = append(next.Entries, entry)
		next.Timer = Timer{Status: TimerRunning, EntryID: entry.ID}
		rememberPreset(&next, a.ClientID, a.Description)

	case StopTimer:
		if next.Timer.Status != TimerRunning {
			return next
		}
		for i := range next.Entries {
			if next.Entries[i].ID == next.Timer.EntryID {
				end := now.UnixMilli()
				next.Entries[i].EndTime = &end
				break
			}
		}
		next.Timer = Timer{Status: TimerIdle}

	case UpdateEntry:
		for i := range next.Entries {
			if next.Entries[i].ID == a.Entry.ID {
				next.Entries[i] = a.Entry.clone()
				break
			}
		}
		rememberPreset(&next, a.Entry.ClientID, a.Entry.Description)

	case DeleteEntry:
		next.Entries = deleteEntryByID(next.Entries, a.ID)
		if next.Timer.EntryID == a.ID {
			next.Timer = Timer{Status: TimerIdle}
		}

	case AddClient:
		next.Clients = append(next.Clients, a.Client.clone())

	case UpdateClient:
		for i := range next.Clients {
			if next.Clients[i].ID == a.Client.ID {
				next.Clients[i] = a.Client.clone()
				break
			}
		}

	case DeleteClient:
		// Deliberately no cascade: the client's entries and fee activations
		// stay behind as orphans so historical records survive. Read paths
		// resolve them through the orphan-safe lookups.
		kept := next.Clients[:0]
		for _, c := range next.Clients {
			if c.ID != a.ID {
				kept = append(kept, c)
			}
		}
		next.Clients = kept

	case DeleteClientPreset:
		for i := range next.Clients {
			if next.Clients[i].ID != a.ClientID {
				continue
			}
			kept := next.Clients[i].TaskPresets[:0]
			for _, p := range next.Clients[i].TaskPresets {
				if p != a.Preset {
					kept = append(kept, p)
				}
			}
			next.Clients[i].TaskPresets = kept
		}

	case ClearClientPresets:
		for i := range next.Clients {
			if next.Clients[i].ID == a.ClientID {
				next.Clients[i].TaskPresets = []string{}
			}
		}

	case AddProject:
		for i := range next.Clients {
			if next.Clients[i].ID == a.ClientID {
				next.Clients[i].Projects = append(next.Clients[i].Projects, a.Project)
			}
		}

	case UpdateProject:
		for i := range next.Clients {
			if next.Clients[i].ID != a.ClientID {
				continue
			}
			for j := range next.Clients[i].Projects {
				if next.Clients[i].Projects[j].ID == a.Project.ID {
					next.Clients[i].Projects[j] = a.Project
				}
			}
		}

	case DeleteProject:
		for i := range next.Clients {
			if next.Clients[i].ID != a.ClientID {
				continue
			}
			kept := next.Clients[i].Projects[:0]
			for _, p := range next.Clients[i].Projects {
				if p.ID != a.ProjectID {
					kept = append(kept, p)
				}
			}
			next.Clients[i].Projects = kept
		}
		// Unlike client deletion, project deletion clears back-references.
		for i := range next.Entries {
			if next.Entries[i].ProjectID == a.ProjectID {
				next.Entries[i].ProjectID = ""
			}
		}

	case AddMonthlyFixedFee:
		// (projectId, yearMonth) is unique; re-activating a month replaces
		// the existing record instead of duplicating it.
		replaced := false
		for i := range next.MonthlyFixedFees {
			f := next.MonthlyFixedFees[i]
			if f.ProjectID == a.Fee.ProjectID && f.YearMonth == a.Fee.YearMonth {
				next.MonthlyFixedFees[i] = a.Fee
				replaced = true
				break
			}
		}
		if !replaced {
			next.MonthlyFixedFees = append(next.MonthlyFixedFees, a.Fee)
		}

	case UpdateMonthlyFixedFee:
		for i := range next.MonthlyFixedFees {
			if next.MonthlyFixedFees[i].ID == a.Fee.ID {
				next.MonthlyFixedFees[i] = a.Fee
				break
			}
		}

	case DeleteMonthlyFixedFee:
		kept := next.MonthlyFixedFees[:0]
		for _, f := range next.MonthlyFixedFees {
			if f.ID != a.ID {
				kept = append(kept, f)
			}
		}
		next.MonthlyFixedFees = kept

	case AddSavedReport:
		next.SavedReports = append(next.SavedReports, a.Report)

	case DeleteSavedReport:
		kept := next.SavedReports[:0]
		for _, r := range next.SavedReports {
			if r.ID != a.ID {
				kept = append(kept, r)
			}
		}
		next.SavedReports = kept

	case UpdateTheme:
		next.Settings.ThemeColor = a.Color

	case UpdateGoals:
		next.Settings = mergeSettings(next.Settings, a.Patch)

	case ReorderClients:
		clients := make([]Client, len(a.Clients))
		for i, c := range a.Clients {
			clients[i] = c.clone()
		}
		next.Clients = clients

	default:
		// Unknown actions must never crash the reducer.
		log.Warnf("ignoring unrecognized action %q", action.ActionName())
	}

	return next
}

// rememberPreset prepends a non-empty description to the client's preset list
// if it is not already present, keeping the most recent MaxTaskPresets.
// A description already on the list is NOT re-promoted to the front.
func rememberPreset(s *Snapshot, clientID, description string) {
	if description == "" {
		return
	}
	for i := range s.Clients {
		if s.Clients[i].ID != clientID {
			continue
		}
		for _, p := range s.Clients[i].TaskPresets {
			if p == description {
				return
			}
		}
		presets := append([]string{description}, s.Clients[i].TaskPresets...)
		if len(presets) > MaxTaskPresets {
			presets = presets[:MaxTaskPresets]
		}
		s.Clients[i].TaskPresets = presets
		return
	}
}

func mergeSettings(s Settings, p SettingsPatch) Settings {
	if p.MonthlyGoalHours != nil {
		s.MonthlyGoalHours = *p.MonthlyGoalHours
	}
	if p.MonthlyGoalRevenue != nil {
		s.MonthlyGoalRevenue = *p.MonthlyGoalRevenue
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.UserName != nil {
		s.UserName = *p.UserName
	}
	if p.EnableNotifications != nil {
		s.EnableNotifications = *p.EnableNotifications
	}
	return s
}

func deleteEntryByID(entries []TimeEntry, id string) []TimeEntry {
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return kept
}
