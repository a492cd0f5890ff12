// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textutil provides column helpers shared by the table formatters.
package textutil

import "unicode/utf8"

// Truncate shortens s to at most max runes, replacing the tail with "..."
// when it is cut. It never splits a multi-byte character.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-3]) + "..."
}

// Authors renders an author list for a narrow column: the single author,
// or the first author followed by "et al.".
func Authors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return Truncate(authors[0], 20)
	default:
		return Truncate(authors[0], 14) + " et al."
	}
}
