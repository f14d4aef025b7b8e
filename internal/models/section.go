package models

import (
	"fmt"
	"strings"
)

// Section is one of the five fixed life-domains a technique belongs to.
type Section string

const (
	SectionPreGame    Section = "pre_game"
	SectionInGame     Section = "in_game"
	SectionPostGame   Section = "post_game"
	SectionOffCourt   Section = "off_court"
	SectionLockerRoom Section = "locker_room"
)

// Sections lists every section in display order.
var Sections = [...]Section{
	SectionPreGame,
	SectionInGame,
	SectionPostGame,
	SectionOffCourt,
	SectionLockerRoom,
}

var sectionLabels = map[Section]string{
	SectionPreGame:    "Pre-Game",
	SectionInGame:     "In-Game",
	SectionPostGame:   "Post-Game",
	SectionOffCourt:   "Off the Court",
	SectionLockerRoom: "Locker Room",
}

func (s Section) IsValid() bool {
	_, ok := sectionLabels[s]
	return ok
}

// Label returns the human readable section name.
func (s Section) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseSection accepts either the key ("pre_game") or the label ("Pre-Game"),
// case-insensitively.
func ParseSection(input string) (Section, error) {
	norm := strings.ToLower(strings.TrimSpace(input))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	for _, s := range Sections {
		label := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(s.Label()))
		if norm == string(s) || norm == label {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid section: %q", input)
}

// Color is the maturity color of a section. Colors are ordered; Rank gives
// the order red < orange < yellow < green.
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// Colors lists every color from highest to lowest.
var Colors = [...]Color{ColorGreen, ColorYellow, ColorOrange, ColorRed}

func (c Color) IsValid() bool {
	switch c {
	case ColorRed, ColorOrange, ColorYellow, ColorGreen:
		return true
	default:
		return false
	}
}

func (c Color) Rank() int {
	switch c {
	case ColorGreen:
		return 3
	case ColorYellow:
		return 2
	case ColorOrange:
		return 1
	default:
		return 0
	}
}

// Min returns the lower of two colors.
func (c Color) Min(other Color) Color {
	if other.Rank() < c.Rank() {
		return other
	}
	return c
}
