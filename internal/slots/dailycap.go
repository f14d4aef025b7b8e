package slots

import (
	"time"

	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/models"
)

// rollover returns d reset to the calendar day of now when the date changed.
func rollover(d models.DailyCapTracker, now time.Time) models.DailyCapTracker {
	key := clock.DateKey(now)
	if d.Date != key {
		return models.DailyCapTracker{Date: key, Counts: map[models.Section]int{}}
	}
	out := d.Clone()
	if out.Counts == nil {
		out.Counts = map[models.Section]int{}
	}
	return out
}

// CheckDailyCap counts one log for section at now. allowed is false when the
// section already has DailyCapPerSection counted logs today; the counter is
// then left as is.
func CheckDailyCap(d models.DailyCapTracker, section models.Section, now time.Time) (models.DailyCapTracker, bool) {
	out := rollover(d, now)
	if out.Counts[section] >= models.DailyCapPerSection {
		return out, false
	}
	out.Counts[section]++
	return out, true
}

// Remaining is how many counted logs section has left today.
func Remaining(d models.DailyCapTracker, section models.Section, now time.Time) int {
	return max(0, models.DailyCapPerSection-rollover(d, now).Counts[section])
}
