package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var wsCollapser = strings.NewReplacer(" ", " ", "\t", " ")

// Normalize trims the string and collapses runs of whitespace (including
// NBSP, which game clients paste instead of regular spaces).
func Normalize(s string) string {
	s = wsCollapser.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey lowercases a normalized string for use as a lookup key.
// Polish diacritics are kept; catalog files are written with them.
func NormalizeKey(s string) string {
	return strings.ToLower(Normalize(s))
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldKey is NormalizeKey plus diacritic stripping ("świateł" ->
// "swiatel"). Used where user input and catalog keys must meet despite
// inconsistent Polish spelling, i.e. mechanical tuning and alias lookups.
func FoldKey(s string) string {
	folded, _, err := transform.String(foldTransformer, NormalizeKey(s))
	if err != nil {
		return NormalizeKey(s)
	}
	// ł/Ł are not combining marks, NFD leaves them alone.
	folded = strings.ReplaceAll(folded, "ł", "l")
	return strings.ReplaceAll(folded, "Ł", "L")
}
