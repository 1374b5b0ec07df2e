package repetition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ralphloop/ralph/pkg/session"
)

func TestFingerprint_normalizesWhitespace(t *testing.T) {
	a := Fingerprint("hello   world\n\n")
	b := Fingerprint("hello world")
	assert.Equal(t, a.Hash, b.Hash)
}

func TestRatio_identicalIsOne(t *testing.T) {
	fp := Fingerprint("the quick brown fox")
	assert.Equal(t, 1.0, Ratio(fp, fp))
}

func TestRatio_emptyNeverEqualsNonEmpty(t *testing.T) {
	empty := session.Fingerprint{}
	nonEmpty := Fingerprint("something")
	assert.Equal(t, 0.0, Ratio(empty, nonEmpty))
	assert.Equal(t, 0.0, Ratio(empty, empty))
}

func TestRatio_thresholdBoundaryIsInclusive(t *testing.T) {
	a := Fingerprint("the quick brown fox jumps")
	b := Fingerprint("the quick brown fox jump.")
	ratio := Ratio(a, b)
	isRepeat, _, _ := Evaluate([]session.Fingerprint{a}, b, ratio, 0, 0, 0)
	assert.True(t, isRepeat, "ratio == threshold must count as a repeat")
}

func TestEvaluate_nonRepeatResetsStreak(t *testing.T) {
	window := []session.Fingerprint{Fingerprint("alpha beta gamma")}
	latest := Fingerprint("completely different text entirely")
	isRepeat, streak, intervention := Evaluate(window, latest, 0.9, 5, 0, 0)
	assert.False(t, isRepeat)
	assert.Equal(t, 0, streak)
	assert.Equal(t, InterventionNone, intervention)
}

func TestEvaluate_firstRepeatTriggersPivotReminder(t *testing.T) {
	fp := Fingerprint("identical output every time")
	window := []session.Fingerprint{fp}
	isRepeat, streak, intervention := Evaluate(window, fp, 0.9, 0, 0, 0)
	assert.True(t, isRepeat)
	assert.Equal(t, 1, streak)
	assert.Equal(t, InterventionPivotReminder, intervention)
}

func TestEvaluate_escalatesToExplorationThenForcePivot(t *testing.T) {
	fp := Fingerprint("identical output every time")
	window := []session.Fingerprint{fp}

	_, streak, intervention := Evaluate(window, fp, 0.9, ExplorationStreak-1, 0, 0)
	assert.Equal(t, ExplorationStreak, streak)
	assert.Equal(t, InterventionExploration, intervention)

	_, streak, intervention = Evaluate(window, fp, 0.9, ForcePivotStreak-1, 0, 0)
	assert.Equal(t, ForcePivotStreak, streak)
	assert.Equal(t, InterventionForcePivot, intervention)
}

func TestEvaluate_configuredStreaksOverrideDefaults(t *testing.T) {
	fp := Fingerprint("identical output every time")
	window := []session.Fingerprint{fp}

	_, streak, intervention := Evaluate(window, fp, 0.9, 2, 3, 4)
	assert.Equal(t, 3, streak)
	assert.Equal(t, InterventionExploration, intervention, "configured exploration_streak of 3 must override the package default of 5")

	_, streak, intervention = Evaluate(window, fp, 0.9, 3, 3, 4)
	assert.Equal(t, 4, streak)
	assert.Equal(t, InterventionForcePivot, intervention, "configured force_pivot_streak of 4 must override the package default of 8")
}

func TestHighestPairwiseRatio_ignoresSelf(t *testing.T) {
	fp := Fingerprint("same text")
	ratio := HighestPairwiseRatio([]session.Fingerprint{fp}, fp)
	assert.Equal(t, 0.0, ratio, "a fingerprint must not be compared against an identical entry already in the window representing itself")
}
