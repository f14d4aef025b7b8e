package models

import "time"

// UsageKind tags how a single use grew a technique.
type UsageKind string

const (
	UsageNormal     UsageKind = "normal"
	UsageFreshBonus UsageKind = "fresh_bonus"
	UsageHoneymoon  UsageKind = "honeymoon"
)

type UsageEntry struct {
	At           time.Time `json:"at"`
	AmountGained int       `json:"amount_gained"`
	Kind         UsageKind `json:"kind"`
}

// TechniquePower is the growth/decay record of one technique ("cheat code").
type TechniquePower struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Section        Section      `json:"section"`
	Power          int          `json:"power"`
	TotalLogs      int          `json:"total_logs"`
	CreatedAt      time.Time    `json:"created_at"`
	LastUsedAt     time.Time    `json:"last_used_at"`
	LastDecayAt    *time.Time   `json:"last_decay_at"`
	UsageLog       []UsageEntry `json:"usage_log"`
	FreshBonusUsed int          `json:"fresh_bonus_used"`
}

func (t TechniquePower) Clone() TechniquePower {
	out := t
	out.UsageLog = append([]UsageEntry(nil), t.UsageLog...)
	if t.LastDecayAt != nil {
		at := *t.LastDecayAt
		out.LastDecayAt = &at
	}
	return out
}

// PowerProfile holds every technique a user ever created.
type PowerProfile struct {
	Techniques           map[string]TechniquePower `json:"techniques"`
	AccountCreatedAt     time.Time                 `json:"account_created_at"`
	TotalLogsAllSections int                       `json:"total_logs_all_sections"`
	HoneymoonEnded       bool                      `json:"honeymoon_ended"`
	HoneymoonEndedAt     *time.Time                `json:"honeymoon_ended_at"`
}

// NewPowerProfile is the empty profile for an account with no techniques.
func NewPowerProfile(accountCreatedAt time.Time) PowerProfile {
	return PowerProfile{
		Techniques:       map[string]TechniquePower{},
		AccountCreatedAt: accountCreatedAt,
	}
}

func (p PowerProfile) Clone() PowerProfile {
	out := p
	out.Techniques = make(map[string]TechniquePower, len(p.Techniques))
	for id, t := range p.Techniques {
		out.Techniques[id] = t.Clone()
	}
	if p.HoneymoonEndedAt != nil {
		at := *p.HoneymoonEndedAt
		out.HoneymoonEndedAt = &at
	}
	return out
}

// SectionLogs sums TotalLogs over techniques in s.
func (p PowerProfile) SectionLogs(s Section) int {
	total := 0
	for _, t := range p.Techniques {
		if t.Section == s {
			total += t.TotalLogs
		}
	}
	return total
}

// InSection returns techniques of s, unordered.
func (p PowerProfile) InSection(s Section) []TechniquePower {
	var out []TechniquePower
	for _, t := range p.Techniques {
		if t.Section == s {
			out = append(out, t)
		}
	}
	return out
}

// TechniqueFilter narrows technique listings.
type TechniqueFilter struct {
	ProfileID   int64
	TechniqueID string
	Section     Section
	State       SlotStateKind
	Query       string
	Limit       int
	Offset      int
	OrderBy     string
	OrderDir    string
}
