package config

// Preset names accepted by the `ralph start` surface.
const (
	PresetPOC        = "poc"
	PresetProduction = "production"
	PresetCustom     = "custom"
)

// DefaultCompletionPhrases are the built-in semantic phrases the
// Completion Detector's phrase signal matches against.
var DefaultCompletionPhrases = []string{
	"task complete",
	"all done",
	"finished",
}

// DefaultProtectedFiles always includes the Config document and the
// session/state files, per §4.10.
var DefaultProtectedFiles = []string{
	".claude/ralph-config.json",
	".claude/ralph-config.json.backup",
	".claude/ralph-state.json",
	".claude/ralph-acknowledged-constraints.jsonl",
	".claude/sessions/",
}

// DefaultBypassMarkers are the command-text markers that let an official
// Ralph command surface bypass the PreToolUse Guard.
var DefaultBypassMarkers = []string{
	"RALPH_STOP_SCRIPT",
	"RALPH_START_SCRIPT",
}

// NewDocument builds a fresh Config Document for the given preset, in the
// "running" state (the `start` surface's product).
func NewDocument(preset string) Document {
	d := Document{
		Version: Version,
		State:   StateRunning,
		LoopDetection: LoopDetection{
			SimilarityThreshold: 0.90,
			WindowSize:          5,
			ExplorationStreak:   5,
			ForcePivotStreak:    8,
		},
		Completion: Completion{
			ConfidenceThreshold: 0.7,
			ExplicitMarkerScore: 1.0,
			FrontmatterScore:    0.95,
			AllCheckboxesScore:  0.9,
			NoRemainingScore:    0.85,
			PhraseScore:         0.7,
			CompletionPhrases:   append([]string(nil), DefaultCompletionPhrases...),
		},
		Protection: Protection{
			ProtectedFiles: append([]string(nil), DefaultProtectedFiles...),
			BypassMarkers:  append([]string(nil), DefaultBypassMarkers...),
		},
	}

	switch preset {
	case PresetProduction:
		d.ProdMode = true
		d.LoopLimits = LoopLimits{MinHours: 2, MaxHours: 12, MinIterations: 20, MaxIterations: 200}
	case PresetCustom:
		d.LoopLimits = LoopLimits{MinHours: 1, MaxHours: 8, MinIterations: 10, MaxIterations: 100}
	default: // PresetPOC
		d.POCMode = true
		d.LoopLimits = LoopLimits{MinHours: 0.083, MaxHours: 0.167, MinIterations: 10, MaxIterations: 20}
	}

	return d
}
