// Package power grows a technique's power on use and decays it on inactivity.
package power

import (
	"math"
	"strings"
	"time"

	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
)

// RandSource picks the late-curve gain. *math/rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// UseResult is the outcome of RecordUse.
type UseResult struct {
	Profile        models.PowerProfile
	Technique      models.TechniquePower
	AmountGained   int
	Kind           models.UsageKind
	Created        bool
	HoneymoonEnded bool
}

// BaseGain is the growth curve for the n-th log of a technique (1-indexed).
func BaseGain(n int, rng RandSource) int {
	switch {
	case n <= 3:
		return 20
	case n <= 6:
		return 10
	case n <= 10:
		return 5
	default:
		return 2 + rng.Intn(2)
	}
}

// HoneymoonActive reports whether a use in section at now earns the
// honeymoon multiplier. sectionLogs is counted before the current use.
func HoneymoonActive(p models.PowerProfile, sectionLogs int, now time.Time) bool {
	if p.HoneymoonEnded {
		return false
	}
	if now.Sub(p.AccountCreatedAt) >= models.HoneymoonWindow {
		return false
	}
	return sectionLogs < models.HoneymoonSectionLogs
}

// RecordUse grows the technique id by one use at now, creating it on first
// use. The input profile is not modified.
func RecordUse(p models.PowerProfile, id, name string, section models.Section, now time.Time, rng RandSource) (UseResult, error) {
	if strings.TrimSpace(id) == "" {
		return UseResult{}, errors.NewInvalidInputError("technique id", "cannot be empty")
	}
	if !section.IsValid() {
		return UseResult{}, errors.NewInvalidInputError("section", string(section))
	}
	if now.IsZero() {
		return UseResult{}, errors.NewInvalidInputError("timestamp", "zero time")
	}
	if p.Techniques == nil || p.AccountCreatedAt.IsZero() {
		return UseResult{}, errors.NewCorruptStateError("power profile", "missing techniques or account creation time")
	}
	if rng == nil {
		return UseResult{}, errors.NewInvalidInputError("random source", "nil")
	}

	out := p.Clone()
	res := UseResult{}

	if !out.HoneymoonEnded && now.Sub(out.AccountCreatedAt) >= models.HoneymoonWindow {
		out.HoneymoonEnded = true
		at := now
		out.HoneymoonEndedAt = &at
		res.HoneymoonEnded = true
	}

	t, ok := out.Techniques[id]
	if !ok {
		if strings.TrimSpace(name) == "" {
			return UseResult{}, errors.NewInvalidInputError("technique name", "cannot be empty")
		}
		t = models.TechniquePower{
			ID:        id,
			Name:      strings.TrimSpace(name),
			Section:   section,
			CreatedAt: now,
		}
		res.Created = true
	} else if t.Section != section {
		return UseResult{}, errors.NewInvalidInputError("section", "technique "+id+" belongs to "+string(t.Section))
	}
	if t.Power < 0 || t.Power > models.MaxPower || t.FreshBonusUsed < 0 || t.FreshBonusUsed > models.MaxFreshBonuses {
		return UseResult{}, errors.NewCorruptStateError("technique "+id, "power or fresh bonus out of range")
	}

	base := BaseGain(t.TotalLogs+1, rng)
	gain := base
	kind := models.UsageNormal
	switch {
	case t.FreshBonusUsed < models.MaxFreshBonuses:
		if t.FreshBonusUsed == 0 {
			gain += models.FreshBonusFirst
		} else {
			gain += models.FreshBonusSecond
		}
		t.FreshBonusUsed++
		kind = models.UsageFreshBonus
	case HoneymoonActive(out, out.SectionLogs(section), now):
		gain = roundHalfUp(float64(base) * models.HoneymoonMultiplier)
		kind = models.UsageHoneymoon
	}

	before := t.Power
	t.Power = min(models.MaxPower, before+gain)
	t.TotalLogs++
	t.LastUsedAt = now
	t.LastDecayAt = nil
	applied := t.Power - before
	t.UsageLog = append(t.UsageLog, models.UsageEntry{At: now, AmountGained: applied, Kind: kind})

	out.Techniques[id] = t
	out.TotalLogsAllSections++

	res.Profile = out
	res.Technique = t
	res.AmountGained = applied
	res.Kind = kind
	return res, nil
}

// ApplyDecay subtracts DecayPerDay for every local midnight crossed since the
// later of LastUsedAt+72h and the last decay checkpoint. Power is clamped to
// [floor, current] and the checkpoint moves to now, so repeating the call
// with the same now is a no-op.
func ApplyDecay(t models.TechniquePower, floor int, now time.Time) models.TechniquePower {
	if now.Sub(t.LastUsedAt) < models.DecayGracePeriod {
		return t
	}
	if floor < 0 {
		floor = 0
	}
	out := t.Clone()
	start := t.LastUsedAt.Add(models.DecayGracePeriod)
	if t.LastDecayAt != nil && t.LastDecayAt.After(start) {
		start = *t.LastDecayAt
	}
	boundaries := clock.MidnightsBetween(start, now)
	if boundaries > 0 && out.Power > floor {
		out.Power = max(floor, out.Power-models.DecayPerDay*boundaries)
	}
	checkpoint := now
	if t.LastDecayAt != nil && t.LastDecayAt.After(now) {
		checkpoint = *t.LastDecayAt
	}
	out.LastDecayAt = &checkpoint
	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
