// Package hold tracks how long a section stays green and whether it is used
// often enough to be allowed to stay there.
package hold

import (
	"time"

	"github.com/vytor/cheatcodes/internal/models"
)

// Duration is now - startedAt for an active hold, 0 otherwise.
func Duration(b models.HoldBook, now time.Time) time.Duration {
	if !b.Timer.IsActive || b.Timer.StartedAt == nil {
		return 0
	}
	return now.Sub(*b.Timer.StartedAt)
}

// Crossed lists the milestones reached by a hold lasting d.
func Crossed(d time.Duration) []models.Milestone {
	var out []models.Milestone
	for _, m := range models.Milestones {
		if d >= m.After {
			out = append(out, m)
		}
	}
	return out
}

// Start opens a hold at now. Starting an active hold is a no-op.
func Start(b models.HoldBook, section models.Section, now time.Time) (models.HoldBook, []models.Event) {
	if b.Timer.IsActive {
		return b, nil
	}
	out := b.Clone()
	at := now
	out.Timer = models.GreenHoldTimer{StartedAt: &at, IsActive: true}
	out.Announced = nil
	events := []models.Event{{Kind: models.EventHoldStarted, Section: section, At: now}}
	out, ms := Announce(out, section, now)
	return out, append(events, ms...)
}

// Stop closes the active hold into a record. The record's duration is fixed
// here and never recomputed.
func Stop(b models.HoldBook, section models.Section, now time.Time) (models.HoldBook, []models.Event) {
	if !b.Timer.IsActive || b.Timer.StartedAt == nil {
		return b, nil
	}
	out := b.Clone()
	started := *out.Timer.StartedAt
	d := now.Sub(started)
	if d < 0 {
		d = 0
	}
	rec := models.GreenHoldRecord{
		Section:   section,
		StartedAt: started,
		EndedAt:   now,
		Duration:  d,
	}
	for _, m := range Crossed(d) {
		rec.Milestones = append(rec.Milestones, m.Key)
	}
	out.History = append(out.History, rec)
	if out.Longest == nil || rec.Duration > out.Longest.Duration {
		longest := rec
		longest.Milestones = append([]string(nil), rec.Milestones...)
		out.Longest = &longest
	}
	out.Timer = models.GreenHoldTimer{}
	out.Announced = nil
	return out, []models.Event{{Kind: models.EventHoldStopped, Section: section, Duration: d, At: now}}
}

// Announce reports milestones crossed by the active hold that were not
// reported before.
func Announce(b models.HoldBook, section models.Section, now time.Time) (models.HoldBook, []models.Event) {
	if !b.Timer.IsActive {
		return b, nil
	}
	seen := make(map[string]bool, len(b.Announced))
	for _, k := range b.Announced {
		seen[k] = true
	}
	var events []models.Event
	out := b
	d := Duration(b, now)
	for _, m := range Crossed(d) {
		if seen[m.Key] {
			continue
		}
		if len(events) == 0 {
			out = b.Clone()
		}
		out.Announced = append(out.Announced, m.Key)
		events = append(events, models.Event{Kind: models.EventMilestone, Section: section, Milestone: m.Key, Duration: d, At: now})
	}
	return out, events
}

// Transition starts or stops the hold so that it is active exactly when
// color is green.
func Transition(b models.HoldBook, section models.Section, color models.Color, now time.Time) (models.HoldBook, []models.Event) {
	switch {
	case color == models.ColorGreen && !b.Timer.IsActive:
		return Start(b, section, now)
	case color != models.ColorGreen && b.Timer.IsActive:
		return Stop(b, section, now)
	case b.Timer.IsActive:
		return Announce(b, section, now)
	default:
		return b, nil
	}
}
