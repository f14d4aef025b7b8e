package progression_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/progression"
)

var loc = time.FixedZone("coach", 2*3600)

func at(day, hour int) time.Time {
	return time.Date(2025, time.June, 1+day, hour, 0, 0, 0, loc)
}

func record(t *testing.T, p models.SectionProgress, id string, when time.Time) models.SectionProgress {
	t.Helper()
	out, err := progression.RecordLog(p, models.LogEntry{TechniqueID: id, At: when, IsValid: true})
	require.NoError(t, err)
	return out
}

func TestRecordLog_Streak(t *testing.T) {
	p := models.NewSectionProgress(models.SectionInGame)

	p = record(t, p, "a", at(0, 9))
	assert.Equal(t, 1, p.StreakDays)

	p = record(t, p, "a", at(0, 20))
	assert.Equal(t, 1, p.StreakDays, "same day is a no-op")

	p = record(t, p, "a", at(1, 7))
	assert.Equal(t, 2, p.StreakDays)

	p = record(t, p, "b", at(0, 23))
	assert.Equal(t, 2, p.StreakDays, "backfill never changes the streak")
	assert.Equal(t, at(1, 7), *p.LastLogAt)

	p = record(t, p, "a", at(3, 7))
	assert.Equal(t, 1, p.StreakDays, "two-day gap resets")
	assert.Equal(t, 5, p.TotalLogs)
}

func TestRecordLog_ClimbingColors(t *testing.T) {
	p := models.NewSectionProgress(models.SectionPreGame)
	ids := []string{"a", "a", "b", "b", "b", "b", "c", "c", "c", "c", "c", "c"}
	want := []models.Color{
		models.ColorRed, models.ColorOrange, models.ColorOrange, models.ColorOrange, models.ColorOrange, models.ColorYellow,
		models.ColorYellow, models.ColorYellow, models.ColorYellow, models.ColorYellow, models.ColorYellow, models.ColorGreen,
	}
	for i, id := range ids {
		p = record(t, p, id, at(0, 8).Add(time.Duration(i)*time.Minute))
		assert.Equal(t, want[i], p.Color, "after log %d", i+1)
	}
	require.NotNil(t, p.GreenFirstAchievedAt)
	assert.Equal(t, at(0, 8).Add(11*time.Minute), *p.GreenFirstAchievedAt)
}

func TestRecordLog_MaintenanceAfterGreen(t *testing.T) {
	p := models.NewSectionProgress(models.SectionPostGame)
	ids := []string{"a", "b", "c"}
	// two logs per day on consecutive days
	n := 0
	for d := 0; d < 8; d++ {
		for k := 0; k < 2; k++ {
			p = record(t, p, ids[n%3], at(d, 9+k))
			n++
			switch {
			case n < 12:
				assert.NotEqual(t, models.ColorGreen, p.Color, "log %d", n)
			case n == 12:
				assert.Equal(t, models.ColorGreen, p.Color, "first green by climbing")
			case n < 16:
				assert.Equal(t, models.ColorYellow, p.Color, fmt.Sprintf("log %d fails maintenance", n))
			default:
				assert.Equal(t, models.ColorGreen, p.Color, "streak 8 and 16 logs in window")
			}
		}
	}
	first := *p.GreenFirstAchievedAt
	assert.Equal(t, at(5, 10), first)

	later := progression.EvaluateColor(p, at(11, 12))
	assert.Equal(t, models.ColorYellow, later.Color, "no log in the last three days")
	require.NotNil(t, later.GreenFirstAchievedAt)
	assert.Equal(t, first, *later.GreenFirstAchievedAt, "never cleared")
}

func TestRecordLog_InvalidLogOnlyRecorded(t *testing.T) {
	p := models.NewSectionProgress(models.SectionOffCourt)
	out, err := progression.RecordLog(p, models.LogEntry{TechniqueID: "a", At: at(0, 9)})
	require.NoError(t, err)

	assert.Equal(t, 0, out.TotalLogs)
	assert.Empty(t, out.UniqueTechniqueIDs)
	assert.Nil(t, out.LastLogAt)
	assert.Len(t, out.LogHistory, 1)
	assert.Equal(t, 0, progression.ValidLogsSince(out, at(-1, 0)))
}

func TestRecordLog_HistoryPruned(t *testing.T) {
	p := models.NewSectionProgress(models.SectionLockerRoom)
	p = record(t, p, "a", at(0, 9))
	p = record(t, p, "a", at(40, 9))
	assert.Len(t, p.LogHistory, 1)
	assert.Equal(t, 2, p.TotalLogs)
}

func TestRecordLog_Errors(t *testing.T) {
	p := models.NewSectionProgress(models.SectionLockerRoom)

	_, err := progression.RecordLog(p, models.LogEntry{At: at(0, 9), IsValid: true})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = progression.RecordLog(p, models.LogEntry{TechniqueID: "a", IsValid: true})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = progression.RecordLog(models.SectionProgress{}, models.LogEntry{TechniqueID: "a", At: at(0, 9), IsValid: true})
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorruptState))
}

func TestClimbingColor(t *testing.T) {
	assert.Equal(t, models.ColorRed, progression.ClimbingColor(1, 1))
	assert.Equal(t, models.ColorOrange, progression.ClimbingColor(2, 1))
	assert.Equal(t, models.ColorOrange, progression.ClimbingColor(20, 1))
	assert.Equal(t, models.ColorYellow, progression.ClimbingColor(6, 2))
	assert.Equal(t, models.ColorYellow, progression.ClimbingColor(11, 3))
	assert.Equal(t, models.ColorGreen, progression.ClimbingColor(12, 3))
}
