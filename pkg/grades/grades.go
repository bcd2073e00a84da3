// Package grades maps between education grade labels as they appear on
// registration forms and the numeric levels stored on accounts.
package grades

import (
	"fmt"
	"strings"
)

type grade struct {
	Name  string
	Level int
}

// Levels follow the French curriculum, from toute petite section through
// terminale. Order matters for label matching: TPS must be tried before PS.
var gradeList = []grade{
	{"TPS", 1},
	{"PS", 2},
	{"MS", 3},
	{"GS", 4},
	{"CP", 5},
	{"CE1", 6},
	{"CE2", 7},
	{"CM1", 8},
	{"CM2", 9},
	{"Sixième", 10},
	{"Cinquième", 11},
	{"Quatrième", 12},
	{"Troisième", 13},
	{"Seconde", 14},
	{"Première", 15},
	{"Terminale", 16},
}

// LevelForLabel returns the numeric level for a grade name. The form often
// decorates the name ("CE1 (2e année primaire)"), so matching is by
// substring containment.
func LevelForLabel(label string) (int, error) {
	for _, g := range gradeList {
		if strings.Contains(label, g.Name) {
			return g.Level, nil
		}
	}
	return 0, fmt.Errorf("unknown grade name: %q", label)
}

// LabelForLevel returns the canonical grade name for a numeric level.
func LabelForLevel(level int) (string, error) {
	for _, g := range gradeList {
		if g.Level == level {
			return g.Name, nil
		}
	}
	return "", fmt.Errorf("unknown grade level: %d", level)
}
