// Package config implements the Config & Guidance Store: a typed,
// versioned document on disk that holds loop limits, detection
// parameters, protection rules, and the mutable guidance lists.
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the schema version written by this package.
const Version = "3.0.0"

// State is the Config Document's state-machine value.
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateDraining State = "draining"
)

// LoopLimits holds the dual time/iteration budget.
type LoopLimits struct {
	MinHours      float64 `json:"min_hours"`
	MaxHours      float64 `json:"max_hours"`
	MinIterations int     `json:"min_iterations"`
	MaxIterations int     `json:"max_iterations"`
}

// Validate enforces the §3 invariant: 0 < min ≤ max on both axes.
func (l LoopLimits) Validate() error {
	if l.MinHours <= 0 || l.MinHours > l.MaxHours {
		return fmt.Errorf("loop_limits: require 0 < min_hours(%v) <= max_hours(%v)", l.MinHours, l.MaxHours)
	}
	if l.MinIterations <= 0 || l.MinIterations > l.MaxIterations {
		return fmt.Errorf("loop_limits: require 0 < min_iterations(%d) <= max_iterations(%d)", l.MinIterations, l.MaxIterations)
	}
	return nil
}

// LoopDetection holds the Repetition Detector's tuning parameters.
type LoopDetection struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	WindowSize          int     `json:"window_size"`

	// ExplorationStreak is the idle_streak at which the intervention
	// schedule escalates to exploration phase.
	ExplorationStreak int `json:"exploration_streak"`
	// ForcePivotStreak is the idle_streak at which the schedule escalates
	// to forcing a focus-file rotation.
	ForcePivotStreak int `json:"force_pivot_streak"`
}

// Completion holds the Completion Detector's tunable weights, per the
// canonical-contract-but-tunable resolution of the signal-weight
// ambiguity.
type Completion struct {
	ConfidenceThreshold float64  `json:"confidence_threshold"`
	ExplicitMarkerScore float64  `json:"explicit_marker_confidence"`
	FrontmatterScore    float64  `json:"frontmatter_confidence"`
	AllCheckboxesScore  float64  `json:"all_checkboxes_confidence"`
	NoRemainingScore    float64  `json:"no_remaining_confidence"`
	PhraseScore         float64  `json:"phrase_confidence"`
	CompletionPhrases   []string `json:"completion_phrases"`
}

// Protection holds the PreToolUse Guard's configured protected-file
// globs and the command markers that bypass the guard.
type Protection struct {
	ProtectedFiles []string `json:"protected_files"`
	BypassMarkers  []string `json:"bypass_markers"`
}

// Guidance is the mutable forbidden/encouraged list pair.
type Guidance struct {
	Forbidden  []string  `json:"forbidden"`
	Encouraged []string  `json:"encouraged"`
	Timestamp  time.Time `json:"timestamp"`
}

// Document is the Config Document: one per project.
type Document struct {
	Version    string        `json:"version"`
	State      State         `json:"state"`
	POCMode    bool          `json:"poc_mode,omitempty"`
	ProdMode   bool          `json:"production_mode,omitempty"`
	NoFocus    bool          `json:"no_focus,omitempty"`
	FocusFiles []string      `json:"focus_files,omitempty"`

	LoopLimits    LoopLimits    `json:"loop_limits"`
	LoopDetection LoopDetection `json:"loop_detection"`
	Completion    Completion    `json:"completion"`
	Protection    Protection    `json:"protection"`
	Guidance      Guidance      `json:"guidance"`

	// ConstraintScan is passed through opaque; this repo never
	// interprets it, only preserves it across round-trips.
	ConstraintScan json.RawMessage `json:"constraint_scan,omitempty"`

	// Unknown holds any top-level field this type doesn't recognize, so
	// a round-trip load/save never drops data a future schema added.
	Unknown map[string]json.RawMessage `json:"-"`
}

// Validate checks the document's structural invariants.
func (d *Document) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("config: missing version")
	}
	switch d.State {
	case StateStopped, StateRunning, StateDraining:
	default:
		return fmt.Errorf("config: invalid state %q", d.State)
	}
	if err := d.LoopLimits.Validate(); err != nil {
		return err
	}
	if d.LoopDetection.WindowSize <= 0 {
		return fmt.Errorf("config: loop_detection.window_size must be > 0")
	}
	return nil
}

// MarshalJSON emits the typed fields alongside any preserved unknown
// top-level fields, so unrecognized keys survive a load/save round-trip.
func (d Document) MarshalJSON() ([]byte, error) {
	type alias Document
	known, err := json.Marshal(alias(d))
	if err != nil {
		return nil, err
	}

	if len(d.Unknown) == 0 {
		return known, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Unknown {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the typed fields and stashes everything else into
// Unknown so it can be re-emitted verbatim.
func (d *Document) UnmarshalJSON(data []byte) error {
	type alias Document
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Document(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := knownFields()
	unknown := map[string]json.RawMessage{}
	for k, v := range raw {
		if !known[k] {
			unknown[k] = v
		}
	}
	if len(unknown) > 0 {
		d.Unknown = unknown
	}
	return nil
}

func knownFields() map[string]bool {
	return map[string]bool{
		"version": true, "state": true, "poc_mode": true, "production_mode": true,
		"no_focus": true, "focus_files": true, "loop_limits": true,
		"loop_detection": true, "completion": true, "protection": true,
		"guidance": true, "constraint_scan": true,
	}
}
