package slots

import (
	"time"

	"github.com/vytor/cheatcodes/internal/models"
)

// LegacySlot is a stored slot row as older clients wrote it: either a slot
// state, or the is_active and archived flags in any combination.
type LegacySlot struct {
	TechniqueID   string
	State         *models.SlotStateKind
	StateAt       *time.Time
	IsActive      *bool
	Archived      *bool
	ArchivedAt    *time.Time
	ReactivatedAt *time.Time
	DuplicateIDs  []string
}

// MigrateEntry converts a stored row into a SlotEntry. A valid slot state
// wins; otherwise the row is archived when either legacy flag says so.
// fallback stamps archived rows that carry no archive time.
func MigrateEntry(l LegacySlot, fallback time.Time) models.SlotEntry {
	e := models.SlotEntry{
		TechniqueID:   l.TechniqueID,
		ReactivatedAt: l.ReactivatedAt,
		DuplicateIDs:  append([]string(nil), l.DuplicateIDs...),
		State:         models.Active(),
	}
	if l.State != nil && l.State.IsValid() {
		if *l.State == models.SlotArchived {
			e.State = models.Archived(archivedAt(l.StateAt, l.ArchivedAt, fallback))
		}
		return e
	}
	archived := (l.Archived != nil && *l.Archived) || (l.IsActive != nil && !*l.IsActive)
	if archived {
		e.State = models.Archived(archivedAt(l.ArchivedAt, l.StateAt, fallback))
	}
	return e
}

func archivedAt(first, second *time.Time, fallback time.Time) time.Time {
	switch {
	case first != nil:
		return *first
	case second != nil:
		return *second
	default:
		return fallback
	}
}
