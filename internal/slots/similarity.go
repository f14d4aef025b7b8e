// Package slots manages the active/archived technique inventory of each
// section, the creation similarity check and the per-section daily cap.
package slots

import (
	"strings"
	"unicode"

	"github.com/vytor/cheatcodes/internal/models"
)

// NormalizeWords lowercases name, strips everything that is not a letter,
// digit or space, splits on whitespace and drops words of two characters or
// fewer. Repeated words are kept once.
func NormalizeWords(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, name)

	seen := make(map[string]bool)
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) < models.MinSimilarWordLength || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// Similarity is |common words| / max(|words a|, |words b|) over normalized
// names. Names with no significant words are never similar.
func Similarity(a, b string) float64 {
	wa, wb := NormalizeWords(a), NormalizeWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(wa))
	for _, w := range wa {
		set[w] = true
	}
	common := 0
	for _, w := range wb {
		if set[w] {
			common++
		}
	}
	return float64(common) / float64(max(len(wa), len(wb)))
}

// Match is the most similar existing technique for a proposed name.
type Match struct {
	TechniqueID string  `json:"technique_id"`
	Name        string  `json:"name"`
	Ratio       float64 `json:"ratio"`
}

// BestMatch finds the active technique of inv whose name is most similar to
// name. Ties go to the lexically smaller id. ok is false when no active
// technique shares a significant word.
func BestMatch(inv models.SectionInventory, p models.PowerProfile, name string) (Match, bool) {
	var best Match
	found := false
	for _, id := range inv.ActiveIDs() {
		t, exists := p.Techniques[id]
		if !exists {
			continue
		}
		r := Similarity(name, t.Name)
		if r == 0 {
			continue
		}
		if !found || r > best.Ratio || (r == best.Ratio && id < best.TechniqueID) {
			best = Match{TechniqueID: id, Name: t.Name, Ratio: r}
			found = true
		}
	}
	return best, found
}
