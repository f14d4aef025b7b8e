package models

import "time"

type EventKind string

const (
	EventColorChanged    EventKind = "color_changed"
	EventHoldStarted     EventKind = "hold_started"
	EventHoldStopped     EventKind = "hold_stopped"
	EventMilestone       EventKind = "milestone_crossed"
	EventGraceWarning    EventKind = "grace_warning"
	EventDemotionForced  EventKind = "demotion_forced"
	EventDailyCapReached EventKind = "daily_cap_reached"
	EventHoneymoonEnded  EventKind = "honeymoon_ended"
)

// Event is a plain notification payload. Fields irrelevant to Kind are zero.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Section   Section       `json:"section,omitempty"`
	OldColor  Color         `json:"old_color,omitempty"`
	NewColor  Color         `json:"new_color,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Milestone string        `json:"milestone,omitempty"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
	At        time.Time     `json:"at"`
}
