// Package reference validates and normalizes free-text Bible passage
// references like "John 3:1-21" or "Psalm 23".
package reference

import (
	"regexp"
	"strings"
)

// Accepts an optional numeric book prefix (1-3), one or more book words, a
// chapter, and optionally a verse or verse range. Input is normalized first,
// so whitespace runs are already single spaces.
var referencePattern = regexp.MustCompile(`^(?:[1-3] )?[A-Za-z]+(?: [A-Za-z]+)* [0-9]+(?:(?::[0-9]+)? ?- ?[0-9]+|:[0-9]+)?$`)

// Normalize collapses whitespace runs to single spaces, maps en dashes to
// hyphens, and trims. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(ref string) string {
	normalized := strings.Join(strings.Fields(ref), " ")
	return strings.ReplaceAll(normalized, "–", "-")
}

// IsValid reports whether ref is a structurally well-formed passage
// reference after normalization. It does not check that the book exists.
func IsValid(ref string) bool {
	return referencePattern.MatchString(Normalize(ref))
}
