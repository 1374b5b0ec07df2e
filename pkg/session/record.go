// Package session implements the Session Store: one persistent record
// per session id, tracking iteration count, accumulated runtime, the
// repetition detector's output window, and focus-file state.
package session

import "time"

// Fingerprint is a compact representation of one turn's output, used by
// the Repetition Detector's sliding window.
type Fingerprint struct {
	Hash string `json:"hash"`
	Body string `json:"body"`
}

// AdapterVerdict mirrors the adapter package's verdict shape, persisted
// so the Prompt Composer can render "last verdict" without recomputing it.
type AdapterVerdict struct {
	AdapterName    string    `json:"adapter_name"`
	ShouldContinue bool      `json:"should_continue"`
	Reason         string    `json:"reason"`
	Sharpe         float64   `json:"sharpe,omitempty"`
	WFE            float64   `json:"wfe,omitempty"`
	Drawdown       float64   `json:"drawdown,omitempty"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Record is the Session Record: one per session id.
type Record struct {
	SessionID                string          `json:"session_id"`
	ParentSessionID           string          `json:"parent_session_id,omitempty"`
	ProjectPath               string          `json:"project_path"`
	StartedAt                 time.Time       `json:"started_at"`
	LastSeenAt                time.Time       `json:"last_seen_at"`
	AccumulatedRuntimeSeconds float64         `json:"accumulated_runtime_seconds"`
	IterationCount            int             `json:"iteration_count"`
	RecentOutputs             []Fingerprint   `json:"recent_outputs"`
	LastCompletionScore       float64         `json:"last_completion_score"`
	LastAdapterVerdict        *AdapterVerdict `json:"last_adapter_verdict,omitempty"`
	IdleStreak                int             `json:"idle_streak"`
	FocusFiles                []string        `json:"focus_files,omitempty"`
	StopHistory               []string        `json:"stop_history,omitempty"`

	// InheritedFromParent records whether parent-session inheritance has
	// already run, so it only ever happens once ("first touch"). This
	// must be persisted, not kept in memory: every hook tick is a fresh
	// process.
	InheritedFromParent bool `json:"inherited_from_parent,omitempty"`
}

// New creates a fresh Session Record for a brand-new session id.
func New(sessionID, parentSessionID, projectPath string, now time.Time) *Record {
	return &Record{
		SessionID:       sessionID,
		ParentSessionID: parentSessionID,
		ProjectPath:     projectPath,
		StartedAt:       now,
		LastSeenAt:      now,
		IterationCount:  0,
	}
}

// maxIdleGap bounds how much wall-clock gap between ticks is counted as
// active runtime, so a multi-hour host idle period isn't charged against
// the budget.
const maxIdleGap = 10 * time.Minute

// Touch is called once per hook invocation: it increments the iteration
// count and extends accumulated runtime by the clamped gap since the
// record was last seen.
func (r *Record) Touch(now time.Time) {
	gap := now.Sub(r.LastSeenAt)
	if gap < 0 {
		gap = 0
	}
	if gap > maxIdleGap {
		gap = maxIdleGap
	}
	r.AccumulatedRuntimeSeconds += gap.Seconds()
	r.IterationCount++
	r.LastSeenAt = now
}

// InheritFromParent copies focus_files and idle_streak from parent, but
// only the first time this is called for a given record (idempotent
// one-time copy, per §3 "Session refers to Config by value... Inheritance
// of session state from a parent is a one-time copy at first touch").
func (r *Record) InheritFromParent(parent *Record) {
	if r.InheritedFromParent || parent == nil {
		return
	}
	r.FocusFiles = append([]string(nil), parent.FocusFiles...)
	r.IdleStreak = parent.IdleStreak
	r.InheritedFromParent = true
}

// PushOutput appends a fingerprint to recent_outputs, evicting from the
// front once windowSize is exceeded.
func (r *Record) PushOutput(fp Fingerprint, windowSize int) {
	r.RecentOutputs = append(r.RecentOutputs, fp)
	if windowSize > 0 && len(r.RecentOutputs) > windowSize {
		r.RecentOutputs = r.RecentOutputs[len(r.RecentOutputs)-windowSize:]
	}
}

// RecordStop appends reason to the stop history.
func (r *Record) RecordStop(reason string) {
	r.StopHistory = append(r.StopHistory, reason)
}
