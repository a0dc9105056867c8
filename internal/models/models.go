package models

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// MaxEntries is the size of the high-score table.
const MaxEntries = 10

// ScoreEntry is one row of the high-score table.
type ScoreEntry struct {
	Initials string `yaml:"initials"`
	Score    int    `yaml:"score"`
	Level    int    `yaml:"level"`
	Lines    int    `yaml:"lines"`
	Date     string `yaml:"date"` // "2006-01-02 15:04"
}

// ScoreTable is the on-disk shape of the YAML high-score file.
type ScoreTable struct {
	Entries []ScoreEntry `yaml:"entries"`
}

// ScoreStore persists the high-score table.
type ScoreStore interface {
	// Load returns the table ordered by score, highest first.
	Load() ([]ScoreEntry, error)
	// Save inserts one entry, keeping only the top MaxEntries.
	Save(entry ScoreEntry) error
}

// Qualifies reports whether score earns a place in entries: the table has
// room, or score beats its lowest entry.
func Qualifies(entries []ScoreEntry, score int) bool {
	if len(entries) < MaxEntries {
		return true
	}
	lowest := entries[0].Score
	for _, e := range entries[1:] {
		if e.Score < lowest {
			lowest = e.Score
		}
	}
	return score > lowest
}

// Insert returns a new table with e added, ordered by score descending.
// Ties keep earlier entries first. The result holds at most MaxEntries.
func Insert(entries []ScoreEntry, e ScoreEntry) []ScoreEntry {
	out := make([]ScoreEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	slices.SortStableFunc(out, func(a, b ScoreEntry) int { return cmp.Compare(b.Score, a.Score) })
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// NormalizeInitials upper-cases s, keeps letters only and pads or truncates
// to three characters. Empty input becomes "AAA".
func NormalizeInitials(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	out := b.String()
	for len(out) < 3 {
		out += "A"
	}
	return out
}
