// Package completion implements the Completion Detector: a weighted
// rubric over the latest turn's output text deciding whether the
// declared task is complete.
package completion

import (
	"regexp"
	"strings"

	"github.com/ralphloop/ralph/pkg/config"
)

// Signal identifies which rubric entry produced a verdict's score.
// Rank order (highest first) breaks ties between signals of equal score.
type Signal int

const (
	SignalNone Signal = iota
	SignalPhrase
	SignalNoRemaining
	SignalAllCheckboxes
	SignalFrontmatter
	SignalExplicitMarker
)

func (s Signal) String() string {
	switch s {
	case SignalExplicitMarker:
		return "explicit_marker"
	case SignalFrontmatter:
		return "frontmatter"
	case SignalAllCheckboxes:
		return "all_checkboxes"
	case SignalNoRemaining:
		return "no_remaining"
	case SignalPhrase:
		return "phrase"
	default:
		return "none"
	}
}

// Verdict is the Completion Detector's output.
type Verdict struct {
	Score       float64
	Signal      Signal
	Complete    bool
	Explanation string
}

type match struct {
	signal      Signal
	score       float64
	explanation string
	matched     bool
}

var (
	explicitMarkerRe = regexp.MustCompile(`\[x\]\s*TASK_COMPLETE`)
	frontmatterRe    = regexp.MustCompile(`(?im)^implementation-status:\s*(complete|done)\s*$`)
	checkedBoxRe     = regexp.MustCompile(`\[x\]`)
	uncheckedBoxRe   = regexp.MustCompile(`\[ \]`)
)

// Detect scores text against the rubric and returns the maximum-weight
// match. Completion is only declared when both budget minima are met;
// callers pass that fact in as minimaMet (budget.Verdict.MinimaMet()).
func Detect(text string, rubric config.Completion, minimaMet bool) Verdict {
	// Listed in rank order (highest first) so that when two signals tie
	// on score, the first one found here wins.
	candidates := []match{
		matchExplicitMarker(text, rubric),
		matchFrontmatter(text, rubric),
		matchAllCheckboxes(text, rubric),
		matchNoRemaining(text, rubric),
		matchPhrase(text, rubric),
	}

	var best match
	for _, c := range candidates {
		if c.matched && c.score > best.score {
			best = c
		}
	}

	threshold := rubric.ConfidenceThreshold
	if threshold <= 0 {
		threshold = 0.7
	}

	return Verdict{
		Score:       best.score,
		Signal:      best.signal,
		Explanation: best.explanation,
		Complete:    best.matched && best.score >= threshold && minimaMet,
	}
}

func matchExplicitMarker(text string, rubric config.Completion) match {
	weight := orDefault(rubric.ExplicitMarkerScore, 1.0)
	if explicitMarkerRe.MatchString(text) {
		return match{SignalExplicitMarker, weight, "found explicit [x] TASK_COMPLETE marker", true}
	}
	return match{signal: SignalExplicitMarker, score: weight}
}

func matchFrontmatter(text string, rubric config.Completion) match {
	weight := orDefault(rubric.FrontmatterScore, 0.95)
	if frontmatterRe.MatchString(text) {
		return match{SignalFrontmatter, weight, "found implementation-status: complete|done frontmatter", true}
	}
	return match{signal: SignalFrontmatter, score: weight}
}

func matchAllCheckboxes(text string, rubric config.Completion) match {
	weight := orDefault(rubric.AllCheckboxesScore, 0.9)
	checked := len(checkedBoxRe.FindAllString(text, -1))
	unchecked := len(uncheckedBoxRe.FindAllString(text, -1))
	if checked >= 1 && unchecked == 0 {
		return match{SignalAllCheckboxes, weight, "all checkboxes checked, at least one present", true}
	}
	return match{signal: SignalAllCheckboxes, score: weight}
}

func matchNoRemaining(text string, rubric config.Completion) match {
	weight := orDefault(rubric.NoRemainingScore, 0.85)
	hasChecked := checkedBoxRe.MatchString(text)
	hasUnchecked := uncheckedBoxRe.MatchString(text)
	if hasChecked && !hasUnchecked {
		return match{SignalNoRemaining, weight, "has [x] and no remaining [ ]", true}
	}
	return match{signal: SignalNoRemaining, score: weight}
}

func matchPhrase(text string, rubric config.Completion) match {
	weight := orDefault(rubric.PhraseScore, 0.7)
	phrases := rubric.CompletionPhrases
	if len(phrases) == 0 {
		phrases = config.DefaultCompletionPhrases
	}
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return match{SignalPhrase, weight, "matched completion phrase: " + phrase, true}
		}
	}
	return match{signal: SignalPhrase, score: weight}
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
