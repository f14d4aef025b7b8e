package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/clock"
)

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	before := time.Date(2025, time.March, 8, 23, 0, 0, 0, ny)
	after := time.Date(2025, time.March, 9, 23, 0, 0, 0, ny)
	assert.Equal(t, 23*time.Hour, after.Sub(before))
	assert.Equal(t, 1, clock.DaysBetween(before, after))
}

func TestDaysBetween_ReadsFirstArgumentInSecondsLocation(t *testing.T) {
	tokyo := time.FixedZone("tokyo", 9*3600)
	stored := time.Date(2025, time.May, 1, 16, 0, 0, 0, time.UTC) // May 2 01:00 in tokyo
	now := time.Date(2025, time.May, 2, 20, 0, 0, 0, tokyo)
	assert.Equal(t, 0, clock.DaysBetween(stored, now))
}

func TestMidnightsBetween(t *testing.T) {
	from := time.Date(2025, time.June, 1, 22, 0, 0, 0, time.UTC)
	tests := []struct {
		to   time.Time
		want int
	}{
		{from.Add(time.Hour), 0},
		{time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC), 3},
		{from.Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clock.MidnightsBetween(from, tt.to), "to=%s", tt.to)
	}
}

func TestAtHourAndDateKey(t *testing.T) {
	loc := time.FixedZone("x", -3*3600)
	last := time.Date(2025, time.December, 30, 21, 15, 0, 0, loc)
	assert.Equal(t, time.Date(2026, time.January, 2, 12, 0, 0, 0, loc), clock.AtHour(last, 3, 12))
	assert.Equal(t, "2025-12-30", clock.DateKey(last))
	assert.Equal(t, time.Date(2025, time.December, 30, 0, 0, 0, 0, loc), clock.StartOfDay(last))
}

func TestFixed(t *testing.T) {
	start := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	c := clock.NewFixed(start)
	c.Advance(90 * time.Minute)
	assert.Equal(t, start.Add(90*time.Minute), c.Now())
	c.Set(start)
	assert.Equal(t, start, c.Now())

	var _ clock.Clock = c
	var _ clock.Clock = clock.System{Location: time.UTC}
	assert.Equal(t, time.UTC, clock.System{Location: time.UTC}.Now().Location())
}
