package models

// SectionInfo pairs a section key with its display label.
type SectionInfo struct {
	Key   Section `json:"key"`
	Label string  `json:"label"`
}

// Legend is the reference card shown to users: what each color means and
// the limits that apply.
type Legend struct {
	Sections            []SectionInfo `json:"sections"`
	Rules               []ColorRule   `json:"rules"`
	Milestones          []Milestone   `json:"milestones"`
	MaxActivePerSection int           `json:"max_active_per_section"`
	DailyCapPerSection  int           `json:"daily_cap_per_section"`
	DecayGraceDays      int           `json:"decay_grace_days"`
	DecayPerDay         int           `json:"decay_per_day"`
}

func NewLegend() Legend {
	l := Legend{
		Rules:               append([]ColorRule(nil), ScoreRules...),
		Milestones:          append([]Milestone(nil), Milestones...),
		MaxActivePerSection: MaxActivePerSection,
		DailyCapPerSection:  DailyCapPerSection,
		DecayGraceDays:      int(DecayGracePeriod / day),
		DecayPerDay:         DecayPerDay,
	}
	for _, s := range Sections {
		l.Sections = append(l.Sections, SectionInfo{Key: s, Label: s.Label()})
	}
	return l
}
