// Package progression counts section logs and derives the progression color
// of a section, including the maintenance rules that apply once green has
// been reached.
package progression

import (
	"strings"
	"time"

	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
)

// ClimbingColor applies the climbing thresholds to raw counters.
func ClimbingColor(totalLogs, unique int) models.Color {
	switch {
	case totalLogs >= 12 && unique >= 3:
		return models.ColorGreen
	case totalLogs >= 6 && unique >= 2:
		return models.ColorYellow
	case totalLogs >= 2 && unique >= 1:
		return models.ColorOrange
	default:
		return models.ColorRed
	}
}

// ValidLogsSince counts valid logs at or after since.
func ValidLogsSince(p models.SectionProgress, since time.Time) int {
	n := 0
	for _, l := range p.LogHistory {
		if l.IsValid && !l.At.Before(since) {
			n++
		}
	}
	return n
}

// MaintainsGreen reports whether a section that has reached green before
// still satisfies the maintenance rules at now.
func MaintainsGreen(p models.SectionProgress, now time.Time) bool {
	if p.LastLogAt == nil || now.Sub(*p.LastLogAt) > models.MaintenanceRecentWindow {
		return false
	}
	if p.StreakDays < models.MaintenanceStreakDays {
		return false
	}
	since := clock.StartOfDay(now).AddDate(0, 0, -(models.MaintenanceWindowDays - 1))
	return ValidLogsSince(p, since) >= models.MaintenanceWindowLogs
}

// EvaluateColor recomputes the color at now. The first time the climbing
// thresholds reach green, GreenFirstAchievedAt is stamped; from then on the
// maintenance rules decide between green and yellow.
func EvaluateColor(p models.SectionProgress, now time.Time) models.SectionProgress {
	out := p.Clone()
	if out.GreenFirstAchievedAt == nil {
		out.Color = ClimbingColor(out.TotalLogs, out.UniqueCount())
		if out.Color == models.ColorGreen {
			at := now
			out.GreenFirstAchievedAt = &at
		}
		return out
	}
	if MaintainsGreen(out, now) {
		out.Color = models.ColorGreen
	} else {
		out.Color = models.ColorYellow
	}
	return out
}

// RecordLog counts one log. Invalid logs are kept in the history but change
// no counter. The input is not modified.
func RecordLog(p models.SectionProgress, log models.LogEntry) (models.SectionProgress, error) {
	if strings.TrimSpace(log.TechniqueID) == "" {
		return p, errors.NewInvalidInputError("technique id", "cannot be empty")
	}
	if log.At.IsZero() {
		return p, errors.NewInvalidInputError("timestamp", "zero time")
	}
	if !p.Section.IsValid() || p.UniqueTechniqueIDs == nil || p.TotalLogs < 0 {
		return p, errors.NewCorruptStateError("section progress", "missing section or counters")
	}

	out := p.Clone()
	out.LogHistory = append(out.LogHistory, log)
	out.LogHistory = pruneHistory(out.LogHistory, log.At)
	if !log.IsValid {
		return out, nil
	}

	out.TotalLogs++
	out.UniqueTechniqueIDs[log.TechniqueID] = true
	if out.LastLogAt == nil || log.At.After(*out.LastLogAt) {
		at := log.At
		out.LastLogAt = &at
	}
	out = advanceStreak(out, log.At)
	return EvaluateColor(out, *out.LastLogAt), nil
}

func advanceStreak(p models.SectionProgress, at time.Time) models.SectionProgress {
	today := clock.StartOfDay(at)
	if p.LastStreakDay == nil {
		p.StreakDays = 1
		p.LastStreakDay = &today
		return p
	}
	gap := clock.DaysBetween(*p.LastStreakDay, at)
	switch {
	case gap <= 0:
		return p
	case gap == 1:
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastStreakDay = &today
	return p
}

// pruneHistory drops entries older than the maintenance window measured from
// the newest entry. Backfilled entries inside the window are kept.
func pruneHistory(h []models.LogEntry, now time.Time) []models.LogEntry {
	newest := now
	for _, l := range h {
		if l.At.After(newest) {
			newest = l.At
		}
	}
	cutoff := clock.StartOfDay(newest).AddDate(0, 0, -models.MaintenanceWindowDays)
	kept := h[:0]
	for _, l := range h {
		if !l.At.Before(cutoff) {
			kept = append(kept, l)
		}
	}
	return kept
}
