// Package textutil holds the small string helpers shared by the classifiers.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// ContainsFold reports whether substr is within s, ignoring ASCII and Unicode case.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return true
		}
	}
	// Case folding can change byte length for some runes; fall back to a
	// lowered comparison for non-ASCII input.
	if !isASCII(s) || !isASCII(substr) {
		return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
	}
	return false
}

// HasPrefixFold reports whether s begins with prefix, ignoring case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ContainsAny reports whether s contains at least one of the needles.
func ContainsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Line is one line of a buffer with its 1-based position.
type Line struct {
	Number int
	Text   string
}

// Lines splits s on '\n', stripping a trailing '\r' from each line. Empty
// lines are kept so that numbering matches the input.
func Lines(s string) []Line {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	// A trailing newline does not start another line.
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	lines := make([]Line, len(parts))
	for i, p := range parts {
		lines[i] = Line{Number: i + 1, Text: strings.TrimSuffix(p, "\r")}
	}
	return lines
}

// FirstLine returns s up to (not including) the first newline.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], "\r")
	}
	return s
}

// Truncate shortens s to at most n bytes without splitting a rune and
// appends "..." when anything was cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
