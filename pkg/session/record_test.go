package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTouch_incrementsIterationAndRuntime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := New("s1", "", "/proj", start)

	r.Touch(start.Add(30 * time.Second))
	assert.Equal(t, 1, r.IterationCount)
	assert.Equal(t, 30.0, r.AccumulatedRuntimeSeconds)

	r.Touch(start.Add(60 * time.Second))
	assert.Equal(t, 2, r.IterationCount)
	assert.Equal(t, 60.0, r.AccumulatedRuntimeSeconds)
}

func TestTouch_clampsLongIdleGap(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := New("s1", "", "/proj", start)

	r.Touch(start.Add(5 * time.Hour))
	assert.Equal(t, maxIdleGap.Seconds(), r.AccumulatedRuntimeSeconds)
}

func TestTouch_monotonicNonDecreasing(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := New("s1", "", "/proj", start)
	prevIter, prevRuntime := r.IterationCount, r.AccumulatedRuntimeSeconds
	for i := 1; i <= 5; i++ {
		r.Touch(start.Add(time.Duration(i) * 30 * time.Second))
		assert.GreaterOrEqual(t, r.IterationCount, prevIter)
		assert.GreaterOrEqual(t, r.AccumulatedRuntimeSeconds, prevRuntime)
		prevIter, prevRuntime = r.IterationCount, r.AccumulatedRuntimeSeconds
	}
}

func TestPushOutput_capsAtWindowSize(t *testing.T) {
	r := New("s1", "", "/proj", time.Now())
	for i := 0; i < 10; i++ {
		r.PushOutput(Fingerprint{Hash: string(rune('a' + i))}, 5)
	}
	assert.Len(t, r.RecentOutputs, 5)
	assert.Equal(t, "j", r.RecentOutputs[len(r.RecentOutputs)-1].Hash)
}

func TestInheritFromParent_onlyOnce(t *testing.T) {
	parent := New("parent", "", "/proj", time.Now())
	parent.FocusFiles = []string{"docs/plan.md"}
	parent.IdleStreak = 4

	child := New("child", "parent", "/proj", time.Now())
	child.InheritFromParent(parent)
	assert.Equal(t, []string{"docs/plan.md"}, child.FocusFiles)
	assert.Equal(t, 4, child.IdleStreak)

	// Simulate a later tick where the child's own focus file diverged;
	// a second inheritance call must be a no-op.
	child.FocusFiles = []string{"docs/other.md"}
	child.InheritFromParent(parent)
	assert.Equal(t, []string{"docs/other.md"}, child.FocusFiles)
}
