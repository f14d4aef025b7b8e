package clock

import "time"

const dateLayout = "2006-01-02"

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayIndex numbers calendar days so that consecutive days differ by one,
// regardless of DST transitions.
func DayIndex(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DaysBetween is DayIndex(b) - DayIndex(a), with a read in b's location.
func DaysBetween(a, b time.Time) int {
	return DayIndex(b) - DayIndex(a.In(b.Location()))
}

// DateKey formats t's calendar day as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// MidnightsBetween counts local midnights m with from < m <= to, in to's
// location. It returns 0 when to is not after from.
func MidnightsBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	n := DaysBetween(from, to)
	if n < 0 {
		return 0
	}
	return n
}

// AtHour returns hour:00 local time on the calendar day offset days after t.
func AtHour(t time.Time, days, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, hour, 0, 0, 0, t.Location())
}
