package power_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/power"
)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

var loc = time.FixedZone("coach", -5*3600)

func at(day, hour int) time.Time {
	return time.Date(2025, time.March, 1+day, hour, 0, 0, 0, loc)
}

func TestRecordUse_FreeThrowResetScenario(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))

	wantPower := []int{30, 55, 80}
	wantKind := []models.UsageKind{models.UsageFreshBonus, models.UsageFreshBonus, models.UsageHoneymoon}
	wantGain := []int{30, 25, 25}

	for i := 0; i < 3; i++ {
		res, err := power.RecordUse(p, "ftr", "Free Throw Reset", models.SectionPreGame, at(1, 10+i), fixedRand(0))
		require.NoError(t, err)
		p = res.Profile

		assert.Equal(t, wantPower[i], res.Technique.Power, "power after log %d", i+1)
		assert.Equal(t, wantKind[i], res.Kind, "kind of log %d", i+1)
		assert.Equal(t, wantGain[i], res.AmountGained, "gain of log %d", i+1)
		assert.Equal(t, i == 0, res.Created)
	}

	tech := p.Techniques["ftr"]
	assert.Equal(t, 3, tech.TotalLogs)
	assert.Equal(t, 2, tech.FreshBonusUsed)
	assert.Len(t, tech.UsageLog, 3)
	assert.Equal(t, 3, p.TotalLogsAllSections)
	assert.Equal(t, at(1, 12), tech.LastUsedAt)
}

func TestRecordUse_DoesNotMutateInput(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))
	res, err := power.RecordUse(p, "a", "Box Breathing", models.SectionInGame, at(0, 10), fixedRand(0))
	require.NoError(t, err)

	assert.Empty(t, p.Techniques)
	assert.Equal(t, 0, p.TotalLogsAllSections)
	assert.Len(t, res.Profile.Techniques, 1)
}

func TestBaseGain_Curve(t *testing.T) {
	tests := []struct {
		n    int
		rng  fixedRand
		want int
	}{
		{1, 0, 20}, {3, 0, 20},
		{4, 0, 10}, {6, 0, 10},
		{7, 0, 5}, {10, 0, 5},
		{11, 0, 2}, {11, 1, 3}, {40, 1, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, power.BaseGain(tt.n, tt.rng), "n=%d rng=%d", tt.n, tt.rng)
	}
}

func TestRecordUse_PowerMonotonicAndCapped(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))
	last := 0
	for i := 0; i < 40; i++ {
		res, err := power.RecordUse(p, "a", "Anchor Word", models.SectionPostGame, at(0, 10).Add(time.Duration(i)*time.Minute), fixedRand(i))
		require.NoError(t, err)
		p = res.Profile
		got := res.Technique.Power
		assert.GreaterOrEqual(t, got, last)
		assert.LessOrEqual(t, got, models.MaxPower)
		last = got
	}
	assert.Equal(t, models.MaxPower, last)
}

func TestRecordUse_FreshBonusTotalAtMostFifteen(t *testing.T) {
	p := models.NewPowerProfile(at(-30, 9))
	bonus := 0
	for i := 0; i < 12; i++ {
		n := i + 1
		res, err := power.RecordUse(p, "a", "Reset Breath", models.SectionOffCourt, at(0, 8).Add(time.Duration(i)*time.Hour), fixedRand(0))
		require.NoError(t, err)
		p = res.Profile
		if res.Kind == models.UsageFreshBonus {
			assert.LessOrEqual(t, n, 2, "fresh bonus only on first two logs")
			bonus += res.AmountGained - power.BaseGain(n, fixedRand(0))
		}
	}
	assert.Equal(t, 15, bonus)
}

func TestRecordUse_HoneymoonEndsAfterSevenDays(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))
	p.Techniques["a"] = models.TechniquePower{ID: "a", Name: "Cue Card", Section: models.SectionPreGame, Power: 55, TotalLogs: 2, FreshBonusUsed: 2, LastUsedAt: at(1, 9)}

	res, err := power.RecordUse(p, "a", "", models.SectionPreGame, at(6, 8), fixedRand(0))
	require.NoError(t, err)
	assert.Equal(t, models.UsageHoneymoon, res.Kind)
	assert.False(t, res.Profile.HoneymoonEnded)

	res, err = power.RecordUse(res.Profile, "a", "", models.SectionPreGame, at(7, 9), fixedRand(0))
	require.NoError(t, err)
	assert.Equal(t, models.UsageNormal, res.Kind)
	assert.Equal(t, 10, res.AmountGained)
	assert.True(t, res.HoneymoonEnded)
	require.NotNil(t, res.Profile.HoneymoonEndedAt)
	assert.Equal(t, at(7, 9), *res.Profile.HoneymoonEndedAt)

	// irreversible, even if the clock goes backwards
	res, err = power.RecordUse(res.Profile, "a", "", models.SectionPreGame, at(2, 9), fixedRand(0))
	require.NoError(t, err)
	assert.Equal(t, models.UsageNormal, res.Kind)
	assert.True(t, res.Profile.HoneymoonEnded)
}

func TestRecordUse_HoneymoonCountsSectionLogsBeforeUse(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))
	p.Techniques["a"] = models.TechniquePower{ID: "a", Name: "A", Section: models.SectionInGame, Power: 50, TotalLogs: 5, FreshBonusUsed: 2}
	p.Techniques["b"] = models.TechniquePower{ID: "b", Name: "B", Section: models.SectionInGame, Power: 50, TotalLogs: 4, FreshBonusUsed: 2}
	p.Techniques["other"] = models.TechniquePower{ID: "other", Name: "O", Section: models.SectionLockerRoom, Power: 50, TotalLogs: 30, FreshBonusUsed: 2}

	// 9 logs in section before this use: still honeymoon. n=5 -> base 10 -> 12.5 -> 13
	res, err := power.RecordUse(p, "b", "", models.SectionInGame, at(1, 9), fixedRand(0))
	require.NoError(t, err)
	assert.Equal(t, models.UsageHoneymoon, res.Kind)
	assert.Equal(t, 13, res.AmountGained)

	// 10 logs now: no more honeymoon in this section
	res, err = power.RecordUse(res.Profile, "a", "", models.SectionInGame, at(1, 10), fixedRand(0))
	require.NoError(t, err)
	assert.Equal(t, models.UsageNormal, res.Kind)
	assert.Equal(t, 10, res.AmountGained)
}

func TestRecordUse_InvalidInput(t *testing.T) {
	p := models.NewPowerProfile(at(0, 9))

	_, err := power.RecordUse(p, "a", "A", models.Section("gym"), at(0, 10), fixedRand(0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = power.RecordUse(p, "", "A", models.SectionPreGame, at(0, 10), fixedRand(0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = power.RecordUse(p, "a", "A", models.SectionPreGame, time.Time{}, fixedRand(0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidInput))

	_, err = power.RecordUse(models.PowerProfile{}, "a", "A", models.SectionPreGame, at(0, 10), fixedRand(0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeCorruptState))
}

func decaying(p int, lastUsed time.Time) models.TechniquePower {
	return models.TechniquePower{ID: "a", Name: "A", Section: models.SectionPreGame, Power: p, TotalLogs: 5, LastUsedAt: lastUsed}
}

func TestApplyDecay_GracePeriod(t *testing.T) {
	tech := decaying(60, at(0, 10))

	got := power.ApplyDecay(tech, 0, at(3, 9))
	assert.Equal(t, 60, got.Power)
	assert.Nil(t, got.LastDecayAt, "no checkpoint before the 72h mark")

	got = power.ApplyDecay(tech, 0, at(3, 10))
	assert.Equal(t, 60, got.Power, "decay starts accruing at 72h, no midnight crossed yet")
	require.NotNil(t, got.LastDecayAt)
}

func TestApplyDecay_CountsMidnights(t *testing.T) {
	tech := decaying(60, at(0, 10))

	got := power.ApplyDecay(tech, 0, at(5, 8))
	assert.Equal(t, 50, got.Power)

	got = power.ApplyDecay(got, 0, at(6, 1))
	assert.Equal(t, 45, got.Power)
}

func TestApplyDecay_Idempotent(t *testing.T) {
	tech := decaying(80, at(0, 10))

	once := power.ApplyDecay(tech, 0, at(9, 12))
	twice := power.ApplyDecay(once, 0, at(9, 12))

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second decay changed state (-once +twice):\n%s", diff)
	}
	assert.Equal(t, 80-5*6, once.Power)
}

func TestApplyDecay_Floor(t *testing.T) {
	got := power.ApplyDecay(decaying(60, at(0, 10)), 55, at(10, 10))
	assert.Equal(t, 55, got.Power)

	got = power.ApplyDecay(decaying(40, at(0, 10)), 75, at(10, 10))
	assert.Equal(t, 40, got.Power, "decay never raises power to the floor")

	got = power.ApplyDecay(decaying(10, at(0, 10)), 0, at(30, 10))
	assert.Equal(t, 0, got.Power)
}

func TestApplyDecay_UseResetsCheckpoint(t *testing.T) {
	p := models.NewPowerProfile(at(-20, 9))
	tech := power.ApplyDecay(decaying(60, at(0, 10)), 0, at(5, 8))
	p.Techniques["a"] = tech

	res, err := power.RecordUse(p, "a", "", models.SectionPreGame, at(5, 9), fixedRand(0))
	require.NoError(t, err)
	assert.Nil(t, res.Technique.LastDecayAt)
	assert.Equal(t, at(5, 9), res.Technique.LastUsedAt)
}
