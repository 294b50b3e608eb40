// Package match scores user-supplied vehicle identifiers against the
// candidate strings a vehicle record exposes. Scoring is deterministic: the
// same identifier and candidate set always produce the same result.
package match

import (
	"strings"
	"unicode"
)

// Fold canonicalizes case and surrounding whitespace.
func Fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Sanitize folds and then strips every rune that is not a letter or digit, so
// "COACH-104" and "coach104" compare equal without conflating genuinely
// different identifiers through substring logic.
func Sanitize(value string) string {
	folded := Fold(value)
	if folded == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
