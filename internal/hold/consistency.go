package hold

import (
	"sort"
	"time"

	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/models"
)

// UpdateActivity records a valid log at now: it clears inactivity, any
// pending grace deadline and a forced demotion, and refreshes the 7-day
// activity window.
func UpdateActivity(c models.SectionConsistency, now time.Time) models.SectionConsistency {
	out := c.Clone()
	if out.LastActivityAt == nil || now.After(*out.LastActivityAt) {
		at := now
		out.LastActivityAt = &at
	}
	out.ConsecutiveInactiveDays = 0
	out.GraceDeadline = nil
	out.Demoted = false

	today := clock.StartOfDay(now)
	found := false
	for _, d := range out.WeeklyActivityLog {
		if clock.DaysBetween(d, today) == 0 {
			found = true
			break
		}
	}
	if !found {
		out.WeeklyActivityLog = append(out.WeeklyActivityLog, today)
	}

	newest := clock.StartOfDay(out.LastActivityAt.In(now.Location()))
	kept := out.WeeklyActivityLog[:0]
	for _, d := range out.WeeklyActivityLog {
		age := clock.DaysBetween(d, newest)
		if age >= 0 && age < models.ConsistencyWindowDays {
			kept = append(kept, d)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	out.WeeklyActivityLog = kept
	out.ActiveDaysInWeek = len(kept)
	out.HasSevenDayStreak = len(kept) == models.ConsistencyWindowDays
	return out
}

// MaintenanceResult is the outcome of one maintenance check.
type MaintenanceResult struct {
	Consistency models.SectionConsistency
	Warning     bool
	Demote      bool
}

// RunMaintenanceCheck updates the inactivity counter at now. Reaching two
// inactive days sets a grace deadline at noon of the third day and asks for a
// warning; passing that deadline asks for a forced demotion. Only the
// deadline check runs more than once per calendar day.
func RunMaintenanceCheck(c models.SectionConsistency, now time.Time) MaintenanceResult {
	out := c.Clone()
	res := MaintenanceResult{}
	today := clock.StartOfDay(now)
	checkedToday := out.LastMaintenanceDay != nil && clock.DaysBetween(*out.LastMaintenanceDay, today) == 0

	if out.GraceDeadline != nil {
		if out.LastActivityAt != nil {
			out.ConsecutiveInactiveDays = inactiveDays(*out.LastActivityAt, now)
		}
		if now.After(*out.GraceDeadline) {
			out.GraceDeadline = nil
			out.Demoted = true
			res.Demote = true
		}
		out.LastMaintenanceDay = &today
		res.Consistency = out
		return res
	}
	if checkedToday {
		res.Consistency = c
		return res
	}
	out.LastMaintenanceDay = &today
	if out.LastActivityAt == nil {
		res.Consistency = out
		return res
	}

	inactive := inactiveDays(*out.LastActivityAt, now)
	out.ConsecutiveInactiveDays = inactive

	// Sweeps may be skipped; anything at or past two days is treated as
	// having reached two.
	if inactive >= models.GraceWarningDays && !out.Demoted {
		deadline := clock.AtHour(out.LastActivityAt.In(now.Location()), models.GraceDeadlineDay, models.GraceDeadlineHour)
		if now.After(deadline) {
			out.Demoted = true
			res.Demote = true
		} else {
			out.GraceDeadline = &deadline
			res.Warning = true
		}
	}
	res.Consistency = out
	return res
}

func inactiveDays(lastActivity, now time.Time) int {
	if d := clock.DaysBetween(lastActivity.In(now.Location()), now); d > 0 {
		return d
	}
	return 0
}
