package engine

import (
	"strings"
	"time"

	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/radar"
	"github.com/vytor/cheatcodes/internal/slots"
)

// IDFunc mints technique ids.
type IDFunc func() string

// CreateResult reports what CreateOrMerge did. TechniqueID is the created
// technique, or the merge target when Merged is set.
type CreateResult struct {
	Outcome      slots.CreateOutcome `json:"outcome"`
	TechniqueID  string              `json:"technique_id,omitempty"`
	Created      bool                `json:"created"`
	Merged       bool                `json:"merged"`
	ColorChanged bool                `json:"color_changed"`
	Radar        models.RadarState   `json:"radar"`
	Events       []models.Event      `json:"events"`
}

// CreateOrMerge creates a technique called name in section, subject to the
// similarity and capacity checks. A merge suggestion is applied only when
// confirmMerge is set; the id minted for the would-be technique is recorded
// as a duplicate of the merge target.
func CreateOrMerge(st models.UserState, section models.Section, name string, confirmMerge bool, idgen IDFunc, now time.Time) (models.UserState, CreateResult, error) {
	if err := validateCall(st, section, now); err != nil {
		return st, CreateResult{}, err
	}
	if idgen == nil {
		return st, CreateResult{}, errors.NewInvalidInputError("id generator", "nil")
	}
	name = strings.TrimSpace(name)
	ss := st.Sections[section]
	outcome, err := slots.CheckCreate(ss.Inventory, st.Power, name)
	if err != nil {
		return st, CreateResult{}, err
	}
	res := CreateResult{Outcome: outcome}
	before := radar.ScoreSectionState(st, section)

	out := st.Clone()
	next := out.Sections[section]
	switch {
	case outcome.Kind == slots.CreateSuggestMerge && confirmMerge:
		next.Inventory, out.Power, err = slots.Merge(next.Inventory, out.Power, outcome.Match.TechniqueID, idgen())
		if err != nil {
			return st, CreateResult{}, err
		}
		res.TechniqueID = outcome.Match.TechniqueID
		res.Merged = true
	case outcome.Blocked():
		res.Radar = radar.ScoreState(st)
		return st, res, nil
	default:
		id := idgen()
		if err := validateID(id); err != nil {
			return st, CreateResult{}, err
		}
		if _, taken := out.Power.Techniques[id]; taken {
			return st, CreateResult{}, errors.NewInvalidInputError("technique id", "already exists: "+id)
		}
		out.Power.Techniques[id] = models.TechniquePower{
			ID:        id,
			Name:      name,
			Section:   section,
			CreatedAt: now,
		}
		if next.Inventory, err = slots.Register(next.Inventory, id); err != nil {
			return st, CreateResult{}, err
		}
		res.TechniqueID = id
		res.Created = true
	}
	out.Sections[section] = next

	out, rs := rescore(out, section, before, now)
	res.ColorChanged = rs.ColorChanged
	res.Events = rs.Events
	res.Radar = radar.ScoreState(out)
	return out, res, nil
}

// ChangeResult reports an archive or reactivate request.
type ChangeResult struct {
	Outcome      slots.ChangeOutcome `json:"outcome"`
	ColorChanged bool                `json:"color_changed"`
	Radar        models.RadarState   `json:"radar"`
	Events       []models.Event      `json:"events"`
}

// Archive removes a technique from its section's active list. Archived
// techniques stop counting toward the section score.
func Archive(st models.UserState, id string, now time.Time) (models.UserState, ChangeResult, error) {
	return changeSlot(st, id, now, func(inv models.SectionInventory) (models.SectionInventory, slots.ChangeOutcome, error) {
		return slots.Archive(inv, id, now)
	})
}

// Reactivate returns an archived technique to the active list when the
// section has room.
func Reactivate(st models.UserState, id string, now time.Time) (models.UserState, ChangeResult, error) {
	return changeSlot(st, id, now, func(inv models.SectionInventory) (models.SectionInventory, slots.ChangeOutcome, error) {
		return slots.Reactivate(inv, st.Power, id, now)
	})
}

func changeSlot(st models.UserState, id string, now time.Time, change func(models.SectionInventory) (models.SectionInventory, slots.ChangeOutcome, error)) (models.UserState, ChangeResult, error) {
	if err := validateID(id); err != nil {
		return st, ChangeResult{}, err
	}
	t, ok := st.Power.Techniques[id]
	if !ok {
		return st, ChangeResult{}, errors.NewNotFoundError("technique", id)
	}
	if err := validateCall(st, t.Section, now); err != nil {
		return st, ChangeResult{}, err
	}
	section := t.Section
	before := radar.ScoreSectionState(st, section)

	inv, outcome, err := change(st.Sections[section].Inventory)
	if err != nil {
		return st, ChangeResult{}, err
	}
	res := ChangeResult{Outcome: outcome}
	if outcome.Kind != slots.ChangeApplied {
		res.Radar = radar.ScoreState(st)
		return st, res, nil
	}

	out := st.Clone()
	next := out.Sections[section]
	next.Inventory = inv
	out.Sections[section] = next

	out, rs := rescore(out, section, before, now)
	res.ColorChanged = rs.ColorChanged
	res.Events = rs.Events
	res.Radar = radar.ScoreState(out)
	return out, res, nil
}
