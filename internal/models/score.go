package models

// SectionScore is derived on demand and never stored.
type SectionScore struct {
	Section          Section `json:"section"`
	Score            int     `json:"score"`
	Color            Color   `json:"color"`
	ScoreColor       Color   `json:"score_color"`
	ProgressColor    Color   `json:"progress_color"`
	ActiveCount      int     `json:"active_count"`
	TotalValidLogs   int     `json:"total_valid_logs"`
	UniqueUsed       int     `json:"unique_used"`
	IsFullyQualified bool    `json:"is_fully_qualified"`
	Demoted          bool    `json:"demoted"`
}

type RadarState struct {
	RadarScore       int            `json:"radar_score"`
	IsFullRadarGreen bool           `json:"is_full_radar_green"`
	Sections         []SectionScore `json:"sections"`
}

// Section returns the score of s, or the zero value.
func (r RadarState) Section(s Section) SectionScore {
	for _, sc := range r.Sections {
		if sc.Section == s {
			return sc
		}
	}
	return SectionScore{Section: s, Color: ColorRed}
}
