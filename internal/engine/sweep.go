package engine

import (
	"sort"
	"time"

	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/hold"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/power"
	"github.com/vytor/cheatcodes/internal/progression"
	"github.com/vytor/cheatcodes/internal/radar"
)

// SweepOutcome summarizes one maintenance sweep.
type SweepOutcome struct {
	Decayed []string          `json:"decayed"`
	Warned  []models.Section  `json:"warned"`
	Demoted []models.Section  `json:"demoted"`
	Radar   models.RadarState `json:"radar"`
	Events  []models.Event    `json:"events"`
}

// Sweep brings st up to date at now without any new use: decay is settled
// for every technique, maintenance colors are re-evaluated, held sections get
// their daily consistency check, and holds start, stop or cross milestones to
// match the new colors. Running it again at the same now changes nothing.
func Sweep(st models.UserState, now time.Time) (models.UserState, SweepOutcome, error) {
	if now.IsZero() {
		return st, SweepOutcome{}, errors.NewInvalidInputError("timestamp", "zero time")
	}
	if err := ValidateState(st); err != nil {
		return st, SweepOutcome{}, err
	}

	out := st.Clone()
	res := SweepOutcome{}
	for _, s := range models.Sections {
		before := radar.ScoreSectionState(out, s)
		ss := out.Sections[s]
		held := ss.Hold.Timer.IsActive

		floor := radar.DecayFloor(held)
		for id, t := range out.Power.Techniques {
			if t.Section != s {
				continue
			}
			decayed := power.ApplyDecay(t, floor, now)
			if decayed.Power < t.Power {
				res.Decayed = append(res.Decayed, id)
			}
			out.Power.Techniques[id] = decayed
		}

		ss.Progress = progression.EvaluateColor(ss.Progress, now)

		if held {
			check := hold.RunMaintenanceCheck(ss.Consistency, now)
			ss.Consistency = check.Consistency
			if check.Warning {
				res.Warned = append(res.Warned, s)
				res.Events = append(res.Events, models.Event{
					Kind:     models.EventGraceWarning,
					Section:  s,
					Deadline: check.Consistency.GraceDeadline,
					At:       now,
				})
			}
			if check.Demote {
				res.Demoted = append(res.Demoted, s)
				res.Events = append(res.Events, models.Event{Kind: models.EventDemotionForced, Section: s, At: now})
			}
		}
		out.Sections[s] = ss

		var rs rescoreResult
		out, rs = rescore(out, s, before, now)
		res.Events = append(res.Events, rs.Events...)
	}
	sort.Strings(res.Decayed)
	res.Radar = radar.ScoreState(out)
	return out, res, nil
}
