// Package radar combines technique power and section progression into
// section scores, section colors and the overall radar read-out.
package radar

import (
	"math"

	"github.com/vytor/cheatcodes/internal/models"
)

// ScoreColor is the color implied by the score alone.
func ScoreColor(score int) models.Color {
	for _, r := range models.ScoreRules {
		if score >= r.MinScore {
			return r.Color
		}
	}
	return models.ColorRed
}

// GatedColor is the highest color whose score threshold and guardrail both
// hold.
func GatedColor(score, validLogs, unique int) models.Color {
	for _, r := range models.ScoreRules {
		if score >= r.MinScore && r.Guardrail.Allows(validLogs, unique) {
			return r.Color
		}
	}
	return models.ColorRed
}

// ScoreSection scores section from the mean power of its techniques that are
// not archived. A technique that has never been logged holds a slot but is
// left out of the mean. Guardrail counters come from the section's
// progression.
func ScoreSection(section models.Section, p models.PowerProfile, prog models.SectionProgress, inv models.SectionInventory) models.SectionScore {
	sum, n, scored := 0, 0, 0
	for id, t := range p.Techniques {
		if t.Section != section || inv.IsArchived(id) {
			continue
		}
		n++
		if t.TotalLogs == 0 {
			continue
		}
		sum += t.Power
		scored++
	}
	score := 0
	if scored > 0 {
		score = int(math.Floor(float64(sum)/float64(scored) + 0.5))
	}

	progressColor := prog.Color
	if progressColor == "" {
		progressColor = models.ColorRed
	}
	sc := models.SectionScore{
		Section:        section,
		Score:          score,
		ScoreColor:     ScoreColor(score),
		ProgressColor:  progressColor,
		ActiveCount:    n,
		TotalValidLogs: prog.TotalLogs,
		UniqueUsed:     prog.UniqueCount(),
	}
	sc.Color = GatedColor(score, sc.TotalValidLogs, sc.UniqueUsed)
	sc.IsFullyQualified = sc.Color == sc.ScoreColor
	return sc
}

// CapDemoted caps a forcibly demoted section at yellow.
func CapDemoted(sc models.SectionScore, demoted bool) models.SectionScore {
	if !demoted {
		return sc
	}
	sc.Demoted = true
	sc.Color = sc.Color.Min(models.ColorYellow)
	sc.IsFullyQualified = sc.Color == sc.ScoreColor
	return sc
}

// CapMaintenance caps a section that once reached green but no longer meets
// the progression maintenance rules at its progression color.
func CapMaintenance(sc models.SectionScore, prog models.SectionProgress) models.SectionScore {
	if prog.GreenFirstAchievedAt == nil || sc.ProgressColor == models.ColorGreen {
		return sc
	}
	sc.Color = sc.Color.Min(sc.ProgressColor)
	sc.IsFullyQualified = sc.Color == sc.ScoreColor
	return sc
}

// ScoreRadar averages the section scores. The radar is fully green only when
// every one of the five sections is green.
func ScoreRadar(scores []models.SectionScore) models.RadarState {
	rs := models.RadarState{Sections: scores}
	if len(scores) == 0 {
		return rs
	}
	sum := 0
	green := 0
	for _, sc := range scores {
		sum += sc.Score
		if sc.Color == models.ColorGreen {
			green++
		}
	}
	rs.RadarScore = int(math.Floor(float64(sum)/float64(len(scores)) + 0.5))
	rs.IsFullRadarGreen = len(scores) == len(models.Sections) && green == len(scores)
	return rs
}

// ScoreState scores every section of st in display order.
func ScoreState(st models.UserState) models.RadarState {
	scores := make([]models.SectionScore, 0, len(models.Sections))
	for _, s := range models.Sections {
		scores = append(scores, ScoreSectionState(st, s))
	}
	return ScoreRadar(scores)
}

// ScoreSectionState scores one section of st with the maintenance and
// forced-demotion caps applied.
func ScoreSectionState(st models.UserState, s models.Section) models.SectionScore {
	ss := st.Sections[s]
	sc := ScoreSection(s, st.Power, ss.Progress, ss.Inventory)
	sc = CapMaintenance(sc, ss.Progress)
	return CapDemoted(sc, ss.Consistency.Demoted)
}

// DecayFloor is the lowest power decay may push a technique to. A section in
// an active green hold keeps its techniques at the green threshold so that
// decay alone cannot flap the color; leaving green is decided by the
// consistency tracker.
func DecayFloor(held bool) int {
	if held {
		return models.RuleFor(models.ColorGreen).MinScore
	}
	return 0
}
