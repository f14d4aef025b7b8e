package models

import "time"

// LogEntry is one usage event as seen by the progression model.
type LogEntry struct {
	TechniqueID string    `json:"technique_id"`
	At          time.Time `json:"at"`
	IsValid     bool      `json:"is_valid"`
}

// SectionProgress tracks log counters and the progression color of a section.
// GreenFirstAchievedAt is never cleared once set.
type SectionProgress struct {
	Section              Section         `json:"section"`
	Color                Color           `json:"color"`
	TotalLogs            int             `json:"total_logs"`
	UniqueTechniqueIDs   map[string]bool `json:"unique_technique_ids"`
	LogHistory           []LogEntry      `json:"log_history"`
	LastLogAt            *time.Time      `json:"last_log_at"`
	GreenFirstAchievedAt *time.Time      `json:"green_first_achieved_at"`
	StreakDays           int             `json:"streak_days"`
	LastStreakDay        *time.Time      `json:"last_streak_day"`
}

func NewSectionProgress(s Section) SectionProgress {
	return SectionProgress{
		Section:            s,
		Color:              ColorRed,
		UniqueTechniqueIDs: map[string]bool{},
	}
}

func (p SectionProgress) UniqueCount() int {
	return len(p.UniqueTechniqueIDs)
}

func (p SectionProgress) Clone() SectionProgress {
	out := p
	out.UniqueTechniqueIDs = make(map[string]bool, len(p.UniqueTechniqueIDs))
	for id := range p.UniqueTechniqueIDs {
		out.UniqueTechniqueIDs[id] = true
	}
	out.LogHistory = append([]LogEntry(nil), p.LogHistory...)
	out.LastLogAt = cloneTime(p.LastLogAt)
	out.GreenFirstAchievedAt = cloneTime(p.GreenFirstAchievedAt)
	out.LastStreakDay = cloneTime(p.LastStreakDay)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
