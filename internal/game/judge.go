package game

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize trims, case-folds and collapses whitespace runs to a single space.
// Folding is full Unicode folding, so "STRASSE" and "straße" compare equal.
func Normalize(text string) string {
	// Casers are not safe for concurrent use, so each call builds its own.
	return strings.Join(strings.Fields(cases.Fold().String(text)), " ")
}

// Judge reports whether guess matches word once both are normalized.
func Judge(guess, word string) bool {
	w := Normalize(word)
	if w == "" {
		return false
	}
	return Normalize(guess) == w
}
