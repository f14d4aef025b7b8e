package slots

import (
	"sort"
	"strings"
	"time"

	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
)

// CreateKind tags the outcome of a creation check.
type CreateKind string

const (
	CreateAllowed       CreateKind = "allowed"
	CreateSuggestMerge  CreateKind = "suggest_merge"
	CreateSuggestRefine CreateKind = "suggest_refine"
	CreateCapacityFull  CreateKind = "capacity_full"
)

// CreateOutcome is returned by CheckCreate. SuggestRefine does not block
// creation; SuggestMerge and CapacityFull do.
type CreateOutcome struct {
	Kind       CreateKind                `json:"kind"`
	Match      *Match                    `json:"match,omitempty"`
	Candidates []models.ManagedTechnique `json:"candidates,omitempty"`
}

// Blocked reports whether the caller must not create the technique.
func (o CreateOutcome) Blocked() bool {
	return o.Kind == CreateSuggestMerge || o.Kind == CreateCapacityFull
}

// ChangeKind tags the outcome of archive/reactivate.
type ChangeKind string

const (
	ChangeApplied      ChangeKind = "applied"
	ChangeUnchanged    ChangeKind = "unchanged"
	ChangeCapacityFull ChangeKind = "capacity_full"
)

type ChangeOutcome struct {
	Kind       ChangeKind                `json:"kind"`
	Candidates []models.ManagedTechnique `json:"candidates,omitempty"`
}

// HasCapacity reports whether inv can take one more active technique.
func HasCapacity(inv models.SectionInventory) bool {
	return len(inv.ActiveIDs()) < models.MaxActivePerSection
}

// Candidates lists the active techniques most suitable for archiving: oldest
// last use first, then lowest power, at most ReplacementCandidates.
func Candidates(inv models.SectionInventory, p models.PowerProfile) []models.ManagedTechnique {
	var all []models.ManagedTechnique
	for _, e := range inv.Entries {
		if !e.State.IsActive() {
			continue
		}
		t, ok := p.Techniques[e.TechniqueID]
		if !ok {
			continue
		}
		all = append(all, models.NewManagedTechnique(t, e))
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.LastUsedAt.Equal(b.LastUsedAt) {
			return a.LastUsedAt.Before(b.LastUsedAt)
		}
		if a.Power != b.Power {
			return a.Power < b.Power
		}
		return a.ID < b.ID
	})
	if len(all) > models.ReplacementCandidates {
		all = all[:models.ReplacementCandidates]
	}
	return all
}

// CheckCreate decides whether a technique called name may be created in
// inv. A near-duplicate (ratio above MergeRatio) suggests a merge; a full
// section returns replacement candidates; a partial overlap above
// RefineRatio allows creation with a refinement hint.
func CheckCreate(inv models.SectionInventory, p models.PowerProfile, name string) (CreateOutcome, error) {
	if strings.TrimSpace(name) == "" {
		return CreateOutcome{}, errors.NewInvalidInputError("technique name", "cannot be empty")
	}
	m, found := BestMatch(inv, p, name)
	if found && m.Ratio > models.MergeRatio {
		return CreateOutcome{Kind: CreateSuggestMerge, Match: &m}, nil
	}
	if !HasCapacity(inv) {
		return CreateOutcome{Kind: CreateCapacityFull, Candidates: Candidates(inv, p)}, nil
	}
	if found && m.Ratio > models.RefineRatio {
		return CreateOutcome{Kind: CreateSuggestRefine, Match: &m}, nil
	}
	return CreateOutcome{Kind: CreateAllowed}, nil
}

// Register adds id as a new active entry. Capacity is the caller's check.
func Register(inv models.SectionInventory, id string) (models.SectionInventory, error) {
	if inv.Find(id) >= 0 {
		return inv, errors.NewInvalidInputError("technique id", "already registered: "+id)
	}
	out := inv.Clone()
	out.Entries = append(out.Entries, models.SlotEntry{TechniqueID: id, State: models.Active()})
	out.CreatedCount++
	return out, nil
}

// Archive moves id to the archived list. Archiving an archived entry is a
// no-op.
func Archive(inv models.SectionInventory, id string, now time.Time) (models.SectionInventory, ChangeOutcome, error) {
	if now.IsZero() {
		return inv, ChangeOutcome{}, errors.NewInvalidInputError("timestamp", "zero time")
	}
	i := inv.Find(id)
	if i < 0 {
		return inv, ChangeOutcome{}, errors.NewNotFoundError("technique", id)
	}
	if !inv.Entries[i].State.IsActive() {
		return inv, ChangeOutcome{Kind: ChangeUnchanged}, nil
	}
	out := inv.Clone()
	out.Entries[i].State = models.Archived(now)
	out.ArchivedCount++
	return out, ChangeOutcome{Kind: ChangeApplied}, nil
}

// Reactivate moves an archived id back to the active list, or reports the
// replacement candidates when the section is full.
func Reactivate(inv models.SectionInventory, p models.PowerProfile, id string, now time.Time) (models.SectionInventory, ChangeOutcome, error) {
	if now.IsZero() {
		return inv, ChangeOutcome{}, errors.NewInvalidInputError("timestamp", "zero time")
	}
	i := inv.Find(id)
	if i < 0 {
		return inv, ChangeOutcome{}, errors.NewNotFoundError("technique", id)
	}
	if inv.Entries[i].State.IsActive() {
		return inv, ChangeOutcome{Kind: ChangeUnchanged}, nil
	}
	if !HasCapacity(inv) {
		return inv, ChangeOutcome{Kind: ChangeCapacityFull, Candidates: Candidates(inv, p)}, nil
	}
	out := inv.Clone()
	at := now
	out.Entries[i].State = models.Active()
	out.Entries[i].ReactivatedAt = &at
	return out, ChangeOutcome{Kind: ChangeApplied}, nil
}

// Merge folds a would-be technique duplicateID into the existing target:
// target gains MergePowerBonus (capped) and gets one fresh-bonus slot back.
func Merge(inv models.SectionInventory, p models.PowerProfile, targetID, duplicateID string) (models.SectionInventory, models.PowerProfile, error) {
	i := inv.Find(targetID)
	if i < 0 {
		return inv, p, errors.NewNotFoundError("technique", targetID)
	}
	t, ok := p.Techniques[targetID]
	if !ok {
		return inv, p, errors.NewCorruptStateError("inventory", "technique "+targetID+" missing from power profile")
	}
	outInv := inv.Clone()
	outP := p.Clone()

	t = t.Clone()
	t.Power = min(models.MaxPower, t.Power+models.MergePowerBonus)
	if t.FreshBonusUsed > 0 {
		t.FreshBonusUsed--
	}
	outP.Techniques[targetID] = t

	if duplicateID != "" {
		outInv.Entries[i].DuplicateIDs = append(outInv.Entries[i].DuplicateIDs, duplicateID)
	}
	outInv.MergedCount++
	return outInv, outP, nil
}

// Validate checks that inv only references techniques of its own section
// present in p, each once.
func Validate(inv models.SectionInventory, p models.PowerProfile) error {
	seen := make(map[string]bool, len(inv.Entries))
	for _, e := range inv.Entries {
		if seen[e.TechniqueID] {
			return errors.NewCorruptStateError("inventory", "duplicate entry "+e.TechniqueID)
		}
		seen[e.TechniqueID] = true
		if !e.State.Kind.IsValid() {
			return errors.NewCorruptStateError("inventory", "unknown slot state for "+e.TechniqueID)
		}
		t, ok := p.Techniques[e.TechniqueID]
		if !ok {
			return errors.NewCorruptStateError("inventory", "technique "+e.TechniqueID+" missing from power profile")
		}
		if t.Section != inv.Section {
			return errors.NewCorruptStateError("inventory", "technique "+e.TechniqueID+" belongs to "+string(t.Section))
		}
	}
	return nil
}
