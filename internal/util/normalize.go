package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and converts to NFC so that
// visually identical names typed on different keyboards intern to one row.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeNames normalizes every entry and drops the ones left empty.
// Order is preserved; nil is returned when nothing remains.
func NormalizeNames(in []string) []string {
	var out []string
	for _, s := range in {
		if n := NormalizeName(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// SplitList splits comma-separated operator input into trimmed entries.
// Only the command line uses it; the store always receives slices.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return NormalizeNames(strings.Split(s, ","))
}

// FoldCase returns the NFC case-folded form of s for caseless comparison
func FoldCase(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
