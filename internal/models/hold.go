package models

import "time"

type GreenHoldTimer struct {
	StartedAt *time.Time `json:"started_at"`
	IsActive  bool       `json:"is_active"`
}

// GreenHoldRecord is a closed hold interval. Duration is fixed at stop time.
type GreenHoldRecord struct {
	Section    Section       `json:"section"`
	StartedAt  time.Time     `json:"started_at"`
	EndedAt    time.Time     `json:"ended_at"`
	Duration   time.Duration `json:"duration"`
	Milestones []string      `json:"milestones"`
}

// HoldBook is the per-section hold bookkeeping: the running timer, the
// milestones already announced for it, the longest record and the history.
type HoldBook struct {
	Timer     GreenHoldTimer    `json:"timer"`
	Announced []string          `json:"announced"`
	Longest   *GreenHoldRecord  `json:"longest"`
	History   []GreenHoldRecord `json:"history"`
}

func (b HoldBook) Clone() HoldBook {
	out := b
	out.Timer.StartedAt = cloneTime(b.Timer.StartedAt)
	out.Announced = append([]string(nil), b.Announced...)
	if b.Longest != nil {
		l := *b.Longest
		l.Milestones = append([]string(nil), b.Longest.Milestones...)
		out.Longest = &l
	}
	out.History = make([]GreenHoldRecord, len(b.History))
	for i, r := range b.History {
		r.Milestones = append([]string(nil), r.Milestones...)
		out.History[i] = r
	}
	return out
}

// SectionConsistency tracks weekly activity and the grace period of a held
// section.
type SectionConsistency struct {
	LastActivityAt          *time.Time  `json:"last_activity_at"`
	ConsecutiveInactiveDays int         `json:"consecutive_inactive_days"`
	GraceDeadline           *time.Time  `json:"grace_deadline"`
	WeeklyActivityLog       []time.Time `json:"weekly_activity_log"`
	ActiveDaysInWeek        int         `json:"active_days_in_week"`
	HasSevenDayStreak       bool        `json:"has_seven_day_streak"`
	Demoted                 bool        `json:"demoted"`
	LastMaintenanceDay      *time.Time  `json:"last_maintenance_day"`
}

func (c SectionConsistency) Clone() SectionConsistency {
	out := c
	out.LastActivityAt = cloneTime(c.LastActivityAt)
	out.GraceDeadline = cloneTime(c.GraceDeadline)
	out.WeeklyActivityLog = append([]time.Time(nil), c.WeeklyActivityLog...)
	out.LastMaintenanceDay = cloneTime(c.LastMaintenanceDay)
	return out
}
