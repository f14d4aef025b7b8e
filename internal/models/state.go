package models

import "time"

// SectionState bundles the per-section records.
type SectionState struct {
	Progress    SectionProgress    `json:"progress"`
	Hold        HoldBook           `json:"hold"`
	Consistency SectionConsistency `json:"consistency"`
	Inventory   SectionInventory   `json:"inventory"`
}

func (s SectionState) Clone() SectionState {
	return SectionState{
		Progress:    s.Progress.Clone(),
		Hold:        s.Hold.Clone(),
		Consistency: s.Consistency.Clone(),
		Inventory:   s.Inventory.Clone(),
	}
}

// UserState is everything the engine reads and writes for one user.
type UserState struct {
	Power    PowerProfile             `json:"power"`
	Sections map[Section]SectionState `json:"sections"`
	DailyCap DailyCapTracker          `json:"daily_cap"`
}

// NewUserState is the default state used when nothing is persisted yet.
func NewUserState(accountCreatedAt time.Time) UserState {
	st := UserState{
		Power:    NewPowerProfile(accountCreatedAt),
		Sections: make(map[Section]SectionState, len(Sections)),
		DailyCap: DailyCapTracker{Counts: map[Section]int{}},
	}
	for _, s := range Sections {
		st.Sections[s] = SectionState{
			Progress:  NewSectionProgress(s),
			Inventory: NewSectionInventory(s),
		}
	}
	return st
}

func (u UserState) Clone() UserState {
	out := UserState{
		Power:    u.Power.Clone(),
		Sections: make(map[Section]SectionState, len(u.Sections)),
		DailyCap: u.DailyCap.Clone(),
	}
	for s, st := range u.Sections {
		out.Sections[s] = st.Clone()
	}
	return out
}
