package models

import "time"

type SlotStateKind string

const (
	SlotActive   SlotStateKind = "active"
	SlotArchived SlotStateKind = "archived"
)

func (k SlotStateKind) IsValid() bool {
	return k == SlotActive || k == SlotArchived
}

// SlotState is Active or Archived{At}. At is zero for active slots.
type SlotState struct {
	Kind SlotStateKind `json:"kind"`
	At   time.Time     `json:"at,omitempty"`
}

func Active() SlotState { return SlotState{Kind: SlotActive} }

func Archived(at time.Time) SlotState { return SlotState{Kind: SlotArchived, At: at} }

func (s SlotState) IsActive() bool { return s.Kind == SlotActive }

// SlotEntry is the inventory view of one technique.
type SlotEntry struct {
	TechniqueID   string     `json:"technique_id"`
	State         SlotState  `json:"state"`
	ReactivatedAt *time.Time `json:"reactivated_at"`
	DuplicateIDs  []string   `json:"duplicate_ids"`
}

// SectionInventory is the active/archived technique list of one section.
type SectionInventory struct {
	Section       Section     `json:"section"`
	Entries       []SlotEntry `json:"entries"`
	CreatedCount  int         `json:"created_count"`
	ArchivedCount int         `json:"archived_count"`
	MergedCount   int         `json:"merged_count"`
}

func NewSectionInventory(s Section) SectionInventory {
	return SectionInventory{Section: s}
}

func (inv SectionInventory) Clone() SectionInventory {
	out := inv
	out.Entries = make([]SlotEntry, len(inv.Entries))
	for i, e := range inv.Entries {
		e.ReactivatedAt = cloneTime(e.ReactivatedAt)
		e.DuplicateIDs = append([]string(nil), e.DuplicateIDs...)
		out.Entries[i] = e
	}
	return out
}

// Find returns the index of id, or -1.
func (inv SectionInventory) Find(id string) int {
	for i, e := range inv.Entries {
		if e.TechniqueID == id {
			return i
		}
	}
	return -1
}

func (inv SectionInventory) ActiveIDs() []string {
	var ids []string
	for _, e := range inv.Entries {
		if e.State.IsActive() {
			ids = append(ids, e.TechniqueID)
		}
	}
	return ids
}

func (inv SectionInventory) ArchivedIDs() []string {
	var ids []string
	for _, e := range inv.Entries {
		if !e.State.IsActive() {
			ids = append(ids, e.TechniqueID)
		}
	}
	return ids
}

func (inv SectionInventory) IsArchived(id string) bool {
	i := inv.Find(id)
	return i >= 0 && !inv.Entries[i].State.IsActive()
}

// ManagedTechnique joins a technique's power record with its slot.
type ManagedTechnique struct {
	TechniquePower
	IsActive      bool       `json:"is_active"`
	ArchivedAt    *time.Time `json:"archived_at"`
	ReactivatedAt *time.Time `json:"reactivated_at"`
	DuplicateIDs  []string   `json:"duplicate_ids"`
}

func NewManagedTechnique(t TechniquePower, e SlotEntry) ManagedTechnique {
	m := ManagedTechnique{
		TechniquePower: t,
		IsActive:       e.State.IsActive(),
		ReactivatedAt:  cloneTime(e.ReactivatedAt),
		DuplicateIDs:   append([]string(nil), e.DuplicateIDs...),
	}
	if !e.State.IsActive() {
		at := e.State.At
		m.ArchivedAt = &at
	}
	return m
}

// DailyCapTracker counts capped logs per section for one calendar day.
type DailyCapTracker struct {
	Date   string          `json:"date"`
	Counts map[Section]int `json:"counts"`
}

func (d DailyCapTracker) Clone() DailyCapTracker {
	out := DailyCapTracker{Date: d.Date, Counts: make(map[Section]int, len(d.Counts))}
	for s, n := range d.Counts {
		out.Counts[s] = n
	}
	return out
}
