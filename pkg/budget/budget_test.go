package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/session"
)

func pocLimits() config.LoopLimits {
	return config.LoopLimits{MinHours: 0.083, MaxHours: 0.167, MinIterations: 10, MaxIterations: 20}
}

func TestEvaluate_minimaNotYetMet(t *testing.T) {
	now := time.Now()
	r := session.New("s1", "", "/proj", now)
	r.IterationCount = 3
	r.AccumulatedRuntimeSeconds = 60

	v := Evaluate(pocLimits(), r, now)
	assert.False(t, v.MinTimeMet)
	assert.False(t, v.MinIterMet)
	assert.False(t, v.MaxExceeded)
}

func TestEvaluate_iterationBoundary(t *testing.T) {
	now := time.Now()
	r := session.New("s1", "", "/proj", now.Add(-6*time.Minute)) // 0.1h, under max 0.167h
	r.AccumulatedRuntimeSeconds = 6 * 60

	r.IterationCount = 20
	v := Evaluate(pocLimits(), r, now)
	assert.False(t, v.MaxExceeded, "iteration_count == max_iterations must not exceed")

	r.IterationCount = 21
	v = Evaluate(pocLimits(), r, now)
	assert.True(t, v.MaxExceeded)
	assert.Equal(t, ReasonMaxIterations, v.MaxReason)
}

func TestEvaluate_timeDominatesWhenBothExceeded(t *testing.T) {
	now := time.Now()
	r := session.New("s1", "", "/proj", now.Add(-time.Hour)) // wall clock 1h > max 0.167h
	r.AccumulatedRuntimeSeconds = 3600
	r.IterationCount = 50 // also exceeds max_iterations

	v := Evaluate(pocLimits(), r, now)
	assert.True(t, v.MaxExceeded)
	assert.Equal(t, ReasonMaxTime, v.MaxReason, "time must dominate when both maxima trip")
}

func TestEvaluate_minimaMetAllowsCompletion(t *testing.T) {
	now := time.Now()
	r := session.New("s1", "", "/proj", now.Add(-6*time.Minute))
	r.AccumulatedRuntimeSeconds = 6 * 60 // 0.1h >= 0.083h min
	r.IterationCount = 12

	v := Evaluate(pocLimits(), r, now)
	assert.True(t, v.MinimaMet())
	assert.False(t, v.MaxExceeded)
}

func TestEvaluate_fractionOfMaxIsMaxOfTimeAndIteration(t *testing.T) {
	limits := config.LoopLimits{MinHours: 1, MaxHours: 10, MinIterations: 1, MaxIterations: 100}
	now := time.Now()
	r := session.New("s1", "", "/proj", now.Add(-5*time.Hour))
	r.AccumulatedRuntimeSeconds = 5 * 3600
	r.IterationCount = 80 // 80% of max, vs 50% of time

	v := Evaluate(limits, r, now)
	assert.InDelta(t, 0.8, v.FractionOfMax, 0.01)
}
