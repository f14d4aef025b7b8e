// Package engine orchestrates the power, progression, radar, hold and slot
// packages over a whole models.UserState. Every function takes the prior
// state and returns the next one; nothing here reads the clock, logs or
// touches storage.
package engine

import (
	"time"

	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/hold"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/power"
	"github.com/vytor/cheatcodes/internal/progression"
	"github.com/vytor/cheatcodes/internal/radar"
	"github.com/vytor/cheatcodes/internal/slots"
)

// UseStatus tags the outcome of ApplyUseAndRescore. Only UseApplied changes
// state.
type UseStatus string

const (
	UseApplied    UseStatus = "applied"
	UseCapReached UseStatus = "cap_reached"
	UseSlotsFull  UseStatus = "slots_full"
	UseArchived   UseStatus = "archived"
)

// UseInput names the technique being used. Name is required only when
// TechniqueID is new.
type UseInput struct {
	TechniqueID string         `json:"technique_id"`
	Name        string         `json:"name,omitempty"`
	Section     models.Section `json:"section"`
}

// UseOutcome reports what a use did. Before and After are the section's
// scores around the use.
type UseOutcome struct {
	Status       UseStatus                 `json:"status"`
	TechniqueID  string                    `json:"technique_id"`
	Created      bool                      `json:"created"`
	AmountGained int                       `json:"amount_gained"`
	Kind         models.UsageKind          `json:"kind,omitempty"`
	Power        int                       `json:"power"`
	Before       models.SectionScore       `json:"before"`
	After        models.SectionScore       `json:"after"`
	ColorChanged bool                      `json:"color_changed"`
	HoldChanged  bool                      `json:"hold_changed"`
	CapRemaining int                       `json:"cap_remaining"`
	Candidates   []models.ManagedTechnique `json:"candidates,omitempty"`
	Radar        models.RadarState         `json:"radar"`
	Events       []models.Event            `json:"events"`
}

// ApplyUseAndRescore records one use of a technique at now. Archived
// techniques, full sections (for new techniques) and the daily cap reject
// the use without changing anything, including decay tracking. Otherwise
// pending decay is settled, power and progression grow, consistency is
// refreshed and the section is rescored.
func ApplyUseAndRescore(st models.UserState, in UseInput, now time.Time, rng power.RandSource) (models.UserState, UseOutcome, error) {
	if err := validateID(in.TechniqueID); err != nil {
		return st, UseOutcome{}, err
	}
	if err := validateCall(st, in.Section, now); err != nil {
		return st, UseOutcome{}, err
	}
	section := in.Section
	ss := st.Sections[section]
	res := UseOutcome{TechniqueID: in.TechniqueID}
	res.Before = radar.ScoreSectionState(st, section)
	res.After = res.Before

	t, exists := st.Power.Techniques[in.TechniqueID]
	switch {
	case exists && t.Section != section:
		return st, UseOutcome{}, errors.NewInvalidInputError("section", "technique "+in.TechniqueID+" belongs to "+string(t.Section))
	case exists && ss.Inventory.IsArchived(in.TechniqueID):
		res.Status = UseArchived
	case !exists && !slots.HasCapacity(ss.Inventory):
		res.Status = UseSlotsFull
		res.Candidates = slots.Candidates(ss.Inventory, st.Power)
	}
	if res.Status != "" {
		res.Power = t.Power
		res.CapRemaining = slots.Remaining(st.DailyCap, section, now)
		res.Radar = radar.ScoreState(st)
		return st, res, nil
	}

	tracker, allowed := slots.CheckDailyCap(st.DailyCap, section, now)
	if !allowed {
		res.Status = UseCapReached
		res.Power = t.Power
		res.Radar = radar.ScoreState(st)
		res.Events = []models.Event{{Kind: models.EventDailyCapReached, Section: section, At: now}}
		return st, res, nil
	}

	out := st.Clone()
	out.DailyCap = tracker
	if exists {
		floor := radar.DecayFloor(ss.Hold.Timer.IsActive)
		out.Power.Techniques[in.TechniqueID] = power.ApplyDecay(t, floor, now)
	}

	use, err := power.RecordUse(out.Power, in.TechniqueID, in.Name, section, now, rng)
	if err != nil {
		return st, UseOutcome{}, err
	}
	out.Power = use.Profile

	next := out.Sections[section]
	if use.Created {
		if next.Inventory, err = slots.Register(next.Inventory, in.TechniqueID); err != nil {
			return st, UseOutcome{}, err
		}
	}
	next.Progress, err = progression.RecordLog(next.Progress, models.LogEntry{TechniqueID: in.TechniqueID, At: now, IsValid: true})
	if err != nil {
		return st, UseOutcome{}, err
	}
	next.Consistency = hold.UpdateActivity(next.Consistency, now)
	out.Sections[section] = next

	res.Status = UseApplied
	res.Created = use.Created
	res.AmountGained = use.AmountGained
	res.Kind = use.Kind
	res.Power = use.Technique.Power
	res.CapRemaining = slots.Remaining(out.DailyCap, section, now)
	if use.HoneymoonEnded {
		res.Events = append(res.Events, models.Event{Kind: models.EventHoneymoonEnded, At: now})
	}

	out, rs := rescore(out, section, res.Before, now)
	res.After = rs.After
	res.ColorChanged = rs.ColorChanged
	res.HoldChanged = rs.HoldChanged
	res.Events = append(res.Events, rs.Events...)
	res.Radar = radar.ScoreState(out)
	return out, res, nil
}

type rescoreResult struct {
	After        models.SectionScore
	ColorChanged bool
	HoldChanged  bool
	Events       []models.Event
}

// rescore compares section's score with before, reports a color change and
// starts, stops or advances the green hold to match the new color.
func rescore(st models.UserState, section models.Section, before models.SectionScore, now time.Time) (models.UserState, rescoreResult) {
	res := rescoreResult{After: radar.ScoreSectionState(st, section)}
	if res.After.Color != before.Color {
		res.ColorChanged = true
		res.Events = append(res.Events, models.Event{
			Kind:     models.EventColorChanged,
			Section:  section,
			OldColor: before.Color,
			NewColor: res.After.Color,
			At:       now,
		})
	}
	ss := st.Sections[section]
	wasHeld := ss.Hold.Timer.IsActive
	book, events := hold.Transition(ss.Hold, section, res.After.Color, now)
	if len(events) > 0 {
		ss.Hold = book
		st.Sections[section] = ss
		res.Events = append(res.Events, events...)
	}
	res.HoldChanged = wasHeld != book.Timer.IsActive
	return st, res
}

// Radar scores st without changing it.
func Radar(st models.UserState) (models.RadarState, error) {
	if err := ValidateState(st); err != nil {
		return models.RadarState{}, err
	}
	return radar.ScoreState(st), nil
}
