package models

import "time"

// Power model.
const (
	MaxPower             = 100
	FreshBonusFirst      = 10
	FreshBonusSecond     = 5
	MaxFreshBonuses      = 2
	HoneymoonMultiplier  = 1.25
	HoneymoonWindow      = 7 * 24 * time.Hour
	HoneymoonSectionLogs = 10
	DecayGracePeriod     = 72 * time.Hour
	DecayPerDay          = 5
	MergePowerBonus      = 5
)

// Progression model.
const (
	MaintenanceRecentWindow = 3 * 24 * time.Hour
	MaintenanceStreakDays   = 7
	MaintenanceWindowDays   = 28
	MaintenanceWindowLogs   = 16
)

// Slots and caps.
const (
	MaxActivePerSection   = 7
	ReplacementCandidates = 3
	DailyCapPerSection    = 3
	MergeRatio            = 0.7
	RefineRatio           = 0.3
	MinSimilarWordLength  = 3
)

// Consistency tracker.
const (
	ConsistencyWindowDays = 7
	GraceWarningDays      = 2
	GraceDeadlineDay      = 3
	GraceDeadlineHour     = 12
)

// Guardrail is the minimum (valid logs, unique techniques) a section needs
// before it may show a color.
type Guardrail struct {
	Logs   int `json:"logs"`
	Unique int `json:"unique"`
}

func (g Guardrail) Allows(logs, unique int) bool {
	return logs >= g.Logs && unique >= g.Unique
}

// ColorRule pairs the score threshold and the guardrail for one color.
type ColorRule struct {
	Color     Color     `json:"color"`
	MinScore  int       `json:"min_score"`
	Guardrail Guardrail `json:"guardrail"`
}

// ScoreRules is ordered from the highest color down.
var ScoreRules = []ColorRule{
	{Color: ColorGreen, MinScore: 75, Guardrail: Guardrail{Logs: 12, Unique: 3}},
	{Color: ColorYellow, MinScore: 50, Guardrail: Guardrail{Logs: 6, Unique: 2}},
	{Color: ColorOrange, MinScore: 25, Guardrail: Guardrail{Logs: 2, Unique: 1}},
	{Color: ColorRed, MinScore: 0},
}

// RuleFor returns the rule for c; red when c is unknown.
func RuleFor(c Color) ColorRule {
	for _, r := range ScoreRules {
		if r.Color == c {
			return r
		}
	}
	return ScoreRules[len(ScoreRules)-1]
}

// Milestone is a hold duration worth announcing.
type Milestone struct {
	Key   string        `json:"key"`
	After time.Duration `json:"after"`
}

const day = 24 * time.Hour

// Milestones are measured from hold start.
var Milestones = []Milestone{
	{Key: "green_reached", After: 0},
	{Key: "hold_3d", After: 3 * day},
	{Key: "hold_7d", After: 7 * day},
	{Key: "hold_14d", After: 14 * day},
	{Key: "hold_30d", After: 30 * day},
	{Key: "hold_60d", After: 60 * day},
	{Key: "hold_90d", After: 90 * day},
}
