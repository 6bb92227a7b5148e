// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonWord matches anything that isn't a word character, whitespace or hyphen.
	nonWord = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// separators collapses runs of whitespace and hyphens into one hyphen.
	separators = regexp.MustCompile(`[-\s]+`)
)

// Generate creates a URL-friendly slug from the given string. Accents are
// folded to their base letters and any other non-ASCII text is dropped.
// Example: "Café Déjà Vu!" → "cafe-deja-vu"
func Generate(s string) string {
	result := strings.ToLower(fold(s))
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(strings.TrimSpace(result), "-")
	return strings.Trim(result, "-_")
}

// Limit truncates a slug to at most n bytes without leaving a trailing
// separator.
func Limit(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-_")
}

// fold decomposes s and strips combining marks, then removes whatever is
// still outside ASCII.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, out)
}
