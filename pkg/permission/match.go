// Package permission holds the pattern-matching primitives shared by the
// Guidance Filter and the PreToolUse Guard: glob matching for file paths,
// case-insensitive substring matching for free text.
package permission

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchPattern reports whether value matches pattern. Patterns containing
// glob metacharacters (*, ?, [, {) are first tried with doublestar; every
// pattern, glob or not, is also tried as a case-insensitive substring.
func MatchPattern(pattern, value string) bool {
	if isGlobPattern(pattern) {
		if matched, err := doublestar.Match(pattern, value); err == nil && matched {
			return true
		}
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func isGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// MatchesAny reports whether value matches any of patterns.
func MatchesAny(patterns []string, value string) (string, bool) {
	for _, p := range patterns {
		if MatchPattern(p, value) {
			return p, true
		}
	}
	return "", false
}

// ContainsFold reports whether haystack contains needle, case-insensitively.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
