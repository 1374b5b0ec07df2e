// Package repetition implements the Repetition Detector: a sliding
// window of recent-output fingerprints with a fuzzy similarity ratio and
// an exponential-backoff intervention schedule.
package repetition

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ralphloop/ralph/pkg/session"
)

const truncatedBodyLen = 512

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Fingerprint normalizes text and content-addresses it, the way the
// teacher content-addresses file snapshots.
func Fingerprint(text string) session.Fingerprint {
	norm := normalize(text)
	sum := sha256.Sum256([]byte(norm))
	body := norm
	if len(body) > truncatedBodyLen {
		body = body[:truncatedBodyLen]
	}
	return session.Fingerprint{Hash: hex.EncodeToString(sum[:]), Body: body}
}

// Ratio computes a normalized edit-distance similarity ratio in [0,1]
// between two fingerprint bodies: 1 means identical, 0 means maximally
// different. Two empty bodies are never considered similar to a
// non-empty one (an empty fingerprint cannot equal a non-empty one).
func Ratio(a, b session.Fingerprint) float64 {
	if a.Body == "" && b.Body == "" {
		return 0
	}
	if a.Body == "" || b.Body == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(a.Body, b.Body)
	maxLen := len(a.Body)
	if len(b.Body) > maxLen {
		maxLen = len(b.Body)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(maxLen)
}

// HighestPairwiseRatio returns the highest similarity ratio between the
// newest fingerprint and any other fingerprint in the window.
func HighestPairwiseRatio(window []session.Fingerprint, latest session.Fingerprint) float64 {
	best := 0.0
	for _, fp := range window {
		if fp.Hash == latest.Hash && fp.Body == latest.Body {
			continue
		}
		if r := Ratio(fp, latest); r > best {
			best = r
		}
	}
	return best
}

// Intervention is the backoff schedule's current directive.
type Intervention string

const (
	InterventionNone          Intervention = "none"
	InterventionPivotReminder Intervention = "pivot_reminder"
	InterventionExploration   Intervention = "exploration"
	InterventionForcePivot    Intervention = "force_pivot"
)

// ForcePivotStreak is the fallback idle_streak at which the schedule
// escalates to forcing a focus-file rotation, used when a Config
// Document leaves loop_detection.force_pivot_streak unset (zero).
const ForcePivotStreak = 8

// ExplorationStreak is the fallback idle_streak at which the schedule
// escalates to exploration phase, used when a Config Document leaves
// loop_detection.exploration_streak unset (zero).
const ExplorationStreak = 5

// Evaluate determines whether the latest turn is a repeat (ratio ≥
// threshold, inclusive) and what intervention the backoff schedule
// currently calls for. explorationStreak and forcePivotStreak come from
// the project's Config Document; a zero value falls back to the
// package defaults.
//
// window holds the earlier outputs only (latest is not yet pushed), so a
// non-empty entry identical to latest counts as ratio 1.
//
// isRepeat reflects only this tick; idleStreak is the caller's running
// counter after this tick is folded in (a non-repeat resets it to 0).
func Evaluate(window []session.Fingerprint, latest session.Fingerprint, threshold float64, priorIdleStreak int, explorationStreak, forcePivotStreak int) (isRepeat bool, idleStreak int, intervention Intervention) {
	if explorationStreak <= 0 {
		explorationStreak = ExplorationStreak
	}
	if forcePivotStreak <= 0 {
		forcePivotStreak = ForcePivotStreak
	}

	ratio := HighestPairwiseRatio(window, latest)
	if latest.Body != "" {
		for _, fp := range window {
			if fp.Hash == latest.Hash && fp.Body == latest.Body {
				ratio = 1
				break
			}
		}
	}
	isRepeat = ratio >= threshold

	if isRepeat {
		idleStreak = priorIdleStreak + 1
	} else {
		idleStreak = 0
	}

	switch {
	case idleStreak >= forcePivotStreak:
		intervention = InterventionForcePivot
	case idleStreak >= explorationStreak:
		intervention = InterventionExploration
	case isRepeat:
		intervention = InterventionPivotReminder
	default:
		intervention = InterventionNone
	}
	return isRepeat, idleStreak, intervention
}
