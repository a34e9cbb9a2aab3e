// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names provides the name handling shared by the catalog, matcher,
// and normalizer: Unicode-aware case folding for comparisons, the guard that
// keeps degenerate catalog strings out of the UI, and slug derivation.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxDisplayLength is the longest display name, in runes, that may reach the UI.
const MaxDisplayLength = 30

// Clean trims surrounding whitespace and composes the name into NFC so that
// visually identical names compare equal.
func Clean(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Fold returns the comparison key for a display name: cleaned and case-folded.
// Two names are the same item iff their folded forms are equal.
// A Caser keeps state between calls, so each call builds its own.
func Fold(name string) string {
	return cases.Fold().String(Clean(name))
}

// Equal reports whether a and b name the same item.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefix reports whether name starts with query, ignoring case.
func HasPrefix(name, query string) bool {
	return strings.HasPrefix(Fold(name), Fold(query))
}

// Contains reports whether name contains query anywhere, ignoring case.
func Contains(name, query string) bool {
	return strings.Contains(Fold(name), Fold(query))
}

// Length returns the number of runes in the cleaned name.
func Length(name string) int {
	return utf8.RuneCountInString(Clean(name))
}

// IsDegenerate reports whether a display name must never be shown: empty,
// longer than maxLen runes, or carrying line breaks or other control
// characters (malformed chemical-name strings seen in server data).
// A maxLen of zero or less uses MaxDisplayLength.
func IsDegenerate(name string, maxLen int) bool {
	if maxLen <= 0 {
		maxLen = MaxDisplayLength
	}
	clean := Clean(name)
	if clean == "" {
		return true
	}
	if utf8.RuneCountInString(clean) > maxLen {
		return true
	}
	return strings.IndexFunc(clean, unicode.IsControl) >= 0
}

// Slug returns a lowercase, hyphen-separated key for name, e.g.
// "Take Atorvastatin at night" becomes "take-atorvastatin-at-night".
func Slug(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range Fold(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
