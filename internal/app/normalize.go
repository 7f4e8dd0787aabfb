package app

import (
	"strings"
	"unicode"
)

// Normalize lowercases s and collapses every run of characters that are not
// Unicode letters or digits into a single space, then trims. Total: empty
// input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits the normalized text on whitespace, dropping empties.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// containsToken reports whether normalized text contains w as a whole token.
// Guards against the substring bug class ("parking" must not match "king").
func containsToken(norm, w string) bool {
	if w == "" {
		return false
	}
	for i := strings.Index(norm, w); i >= 0; {
		before := i == 0 || norm[i-1] == ' '
		after := i+len(w) == len(norm) || norm[i+len(w)] == ' '
		if before && after {
			return true
		}
		next := strings.Index(norm[i+1:], w)
		if next < 0 {
			return false
		}
		i += 1 + next
	}
	return false
}

// containsPhrase matches multi-word needles by substring on normalized text
// and single words by whole token.
func containsPhrase(norm, needle string) bool {
	if strings.ContainsRune(needle, ' ') {
		return strings.Contains(norm, needle)
	}
	return containsToken(norm, needle)
}
