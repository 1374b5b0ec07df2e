package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ralphloop/ralph/pkg/config"
)

func rubric() config.Completion {
	return config.Completion{
		ConfidenceThreshold: 0.7,
		ExplicitMarkerScore: 1.0,
		FrontmatterScore:    0.95,
		AllCheckboxesScore:  0.9,
		NoRemainingScore:    0.85,
		PhraseScore:         0.7,
		CompletionPhrases:   config.DefaultCompletionPhrases,
	}
}

func TestDetect_explicitMarker(t *testing.T) {
	v := Detect("Done. [x] TASK_COMPLETE", rubric(), true)
	assert.True(t, v.Complete)
	assert.Equal(t, SignalExplicitMarker, v.Signal)
	assert.Equal(t, 1.0, v.Score)
}

func TestDetect_frontmatter(t *testing.T) {
	text := "---\nimplementation-status: complete\n---\nsome body"
	v := Detect(text, rubric(), true)
	assert.True(t, v.Complete)
	assert.Equal(t, SignalFrontmatter, v.Signal)
}

func TestDetect_allCheckboxesChecked(t *testing.T) {
	v := Detect("- [x] step one\n- [x] step two", rubric(), true)
	assert.True(t, v.Complete)
	assert.Equal(t, SignalAllCheckboxes, v.Signal)
}

func TestDetect_allCheckboxesOutranksNoRemaining(t *testing.T) {
	// Has [x] and no [ ], so both the all_checkboxes and no_remaining
	// signals match; the higher-ranked all_checkboxes signal should win.
	v := Detect("- [x] done", rubric(), true)
	assert.Equal(t, SignalAllCheckboxes, v.Signal)
}

func TestDetect_phraseOnly(t *testing.T) {
	v := Detect("I believe the task is finished now.", rubric(), true)
	assert.True(t, v.Complete)
	assert.Equal(t, SignalPhrase, v.Signal)
	assert.Equal(t, 0.7, v.Score)
}

func TestDetect_belowThreshold(t *testing.T) {
	r := rubric()
	r.PhraseScore = 0.5
	v := Detect("finished", r, true)
	assert.False(t, v.Complete)
}

func TestDetect_minimaNotMetBlocksCompletion(t *testing.T) {
	v := Detect("[x] TASK_COMPLETE", rubric(), false)
	assert.False(t, v.Complete, "completion must never fire before budget minima are met")
}

func TestDetect_emptyTextScoresZero(t *testing.T) {
	v := Detect("", rubric(), true)
	assert.Equal(t, 0.0, v.Score)
	assert.False(t, v.Complete)
}

func TestDetect_remainingUncheckedBoxesPreventsCompletion(t *testing.T) {
	v := Detect("- [x] done\n- [ ] still open", rubric(), true)
	assert.NotEqual(t, SignalAllCheckboxes, v.Signal)
	assert.NotEqual(t, SignalNoRemaining, v.Signal)
}
