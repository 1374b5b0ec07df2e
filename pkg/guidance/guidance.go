// Package guidance implements the Guidance Filter: classifies a
// candidate next-action description as ALLOW, SKIP (busywork), or BLOCK
// (user-forbidden).
package guidance

import (
	"strings"
	"unicode"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/permission"
)

// Verdict is the Guidance Filter's classification.
type Verdict string

const (
	Allow Verdict = "ALLOW"
	Skip  Verdict = "SKIP"
	Block Verdict = "BLOCK"
)

// busyworkCategories are built-in low-value activity categories. A
// category matches when it appears case-insensitively as a substring of
// the candidate text, or when every one of its words appears as a whole
// word somewhere in the candidate, in any order ("bump the lodash
// dependency version" matches "dependency bump").
var busyworkCategories = []string{
	"documentation-only",
	"docs-only",
	"dependency bump",
	"dependency update",
	"formatting-only",
	"reformat only",
	"ci-only",
	"ci config",
	"type-hint-only",
	"type hints only",
	"todo cleanup",
	"git-history cleanup",
	"rebase cleanup",
	"refactor-only",
	"pure refactor",
}

// Classify decides the fate of candidate. Encouraged dominates forbidden:
// a candidate matching both lists is ALLOW, not BLOCK.
func Classify(candidate string, g config.Guidance) Verdict {
	if _, ok := permission.MatchesAny(g.Encouraged, candidate); ok {
		return Allow
	}
	if _, ok := permission.MatchesAny(g.Forbidden, candidate); ok {
		return Block
	}
	if isBusywork(candidate) {
		return Skip
	}
	return Allow
}

func isBusywork(candidate string) bool {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(candidate), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		words[w] = true
	}
	for _, category := range busyworkCategories {
		if permission.ContainsFold(candidate, category) {
			return true
		}
		all := true
		for _, w := range strings.Fields(category) {
			if !words[w] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
