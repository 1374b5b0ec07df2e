// Package budget implements the Budget Accountant: a pure function of
// configured limits, session state, and the current time.
package budget

import (
	"time"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/session"
)

// Reason identifies which maximum, if any, was exceeded.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonMaxTime       Reason = "max_time"
	ReasonMaxIterations Reason = "max_iterations"
)

// Verdict is the Budget Accountant's output.
type Verdict struct {
	MinTimeMet    bool
	MinIterMet    bool
	MaxExceeded   bool
	MaxReason     Reason
	FractionOfMax float64 // max of time-fraction and iteration-fraction
}

// MinimaMet reports whether both minima are satisfied, the precondition
// for any non-forced stop (task_complete, adapter).
func (v Verdict) MinimaMet() bool {
	return v.MinTimeMet && v.MinIterMet
}

// Evaluate computes the Budget Accountant's verdict. "Runtime" is
// accumulated active CLI time (record.AccumulatedRuntimeSeconds);
// "wall-clock" is now - record.StartedAt. Tie-break: if both time and
// iteration maxima trip, time is reported first.
func Evaluate(limits config.LoopLimits, record *session.Record, now time.Time) Verdict {
	runtimeHours := record.AccumulatedRuntimeSeconds / 3600.0
	wallClockHours := now.Sub(record.StartedAt).Hours()

	minTimeMet := runtimeHours >= limits.MinHours
	minIterMet := record.IterationCount >= limits.MinIterations

	timeExceeded := wallClockHours > limits.MaxHours
	iterExceeded := record.IterationCount > limits.MaxIterations

	var reason Reason
	switch {
	case timeExceeded:
		reason = ReasonMaxTime
	case iterExceeded:
		reason = ReasonMaxIterations
	}

	timeFraction := 0.0
	if limits.MaxHours > 0 {
		timeFraction = wallClockHours / limits.MaxHours
	}
	iterFraction := 0.0
	if limits.MaxIterations > 0 {
		iterFraction = float64(record.IterationCount) / float64(limits.MaxIterations)
	}
	fraction := timeFraction
	if iterFraction > fraction {
		fraction = iterFraction
	}

	return Verdict{
		MinTimeMet:    minTimeMet,
		MinIterMet:    minIterMet,
		MaxExceeded:   timeExceeded || iterExceeded,
		MaxReason:     reason,
		FractionOfMax: fraction,
	}
}
