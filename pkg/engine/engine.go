// Package engine implements the Stop Decision Engine: the top-level
// orchestrator of one Stop hook invocation.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/ralphloop/ralph/pkg/adapter/alphaforge"
	"github.com/ralphloop/ralph/pkg/budget"
	"github.com/ralphloop/ralph/pkg/completion"
	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/hookio"
	"github.com/ralphloop/ralph/pkg/phase"
	"github.com/ralphloop/ralph/pkg/repetition"
	"github.com/ralphloop/ralph/pkg/session"
)

// Reason strings used on StopOutput.Reason.
const (
	ReasonGlobalStop     = "global_stop"
	ReasonNotApplicable  = "not_applicable"
	ReasonKillSwitch     = "kill_switch"
	ReasonMaxTime        = "max_time"
	ReasonMaxIterations  = "max_iterations"
	ReasonTaskComplete   = "task_complete"
	ReasonSafetyContinue = "safety_continue"
)

// Engine runs one hook invocation against a project.
type Engine struct {
	ProjectPath string
	Logger      *zap.Logger
	Now         func() time.Time
}

// New builds an Engine rooted at projectPath.
func New(projectPath string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{ProjectPath: projectPath, Logger: logger, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Run executes the full ten-step sequence in §4.9, returning the
// decision to emit on stdout. Run never panics: any failure in steps
// 4-8 is caught and converted into a safety_continue decision so the
// loop never silently abandons the user's work.
func (e *Engine) Run(input hookio.StopInput) hookio.StopOutput {
	now := e.now()
	cfgStore := config.NewStore(e.ProjectPath)
	sessStore := session.NewStore(e.ProjectPath)

	// Step 1: global stop signal overrides everything. "Newer than the
	// session start" is evaluated against whatever session record exists
	// already; a session not yet on disk has no start to compare
	// against, so any standing global stop covers it too.
	if sig, err := config.LoadGlobalStopSignal(); err == nil && sig != nil && sig.Stopped {
		existing, serr := sessStore.Load(input.SessionID)
		sessionStart := time.Time{}
		if serr == nil {
			sessionStart = existing.StartedAt
		}
		if sig.Timestamp.After(sessionStart) {
			if serr == nil {
				existing.RecordStop(ReasonGlobalStop)
				_ = sessStore.Save(existing)
			}
			_, _ = cfgStore.Transition(config.StateStopped)
			out := hookio.StopOutput{Decision: "continue", Reason: ReasonGlobalStop, StopReason: ReasonGlobalStop}
			e.cacheReason(out)
			return out
		}
	}

	// Step 2: load config; gate on state/existence.
	cfg, err := cfgStore.Load()
	if err != nil || cfg.State == config.StateStopped {
		out := hookio.StopOutput{Decision: "continue", Reason: ReasonNotApplicable, StopReason: ReasonNotApplicable}
		e.cacheReason(out)
		return out
	}

	// A draining loop (set by the stop surface) finalizes on this tick:
	// draining -> stopped, and the host's own stop proceeds.
	if cfg.State == config.StateDraining {
		_, _ = cfgStore.Transition(config.StateStopped)
		out := hookio.StopOutput{Decision: "continue", Reason: "drained", StopReason: "drained"}
		e.cacheReason(out)
		return out
	}

	// Step 3: kill switch.
	if config.KillSwitchExists(e.ProjectPath) {
		_, _ = cfgStore.Transition(config.StateStopped)
		out := hookio.StopOutput{Decision: "continue", Reason: ReasonKillSwitch, StopReason: ReasonKillSwitch}
		e.cacheReason(out)
		return out
	}

	out := e.runSteps4Through9(input, cfg, cfgStore, sessStore, now)
	e.cacheReason(out)
	return out
}

// runSteps4Through9 is wrapped in a recover so a panic in any detector
// degrades to safety_continue instead of crashing the host session.
func (e *Engine) runSteps4Through9(input hookio.StopInput, cfg *config.Document, cfgStore *config.Store, sessStore *session.Store, now time.Time) (result hookio.StopOutput) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Warn("safety_continue: recovered panic", zap.Any("panic", r))
			result = hookio.StopOutput{Decision: "continue", Reason: ReasonSafetyContinue, StopReason: ReasonSafetyContinue}
		}
	}()

	// Step 4: load/create session; update iteration and runtime.
	rec, err := sessStore.LoadOrCreate(input.SessionID, input.ParentSessionID, now)
	if err != nil {
		e.Logger.Warn("safety_continue: session load failed", zap.Error(err))
		return hookio.StopOutput{Decision: "continue", Reason: ReasonSafetyContinue, StopReason: ReasonSafetyContinue}
	}
	previousLastSeen := rec.LastSeenAt
	rec.Touch(now)
	if len(rec.FocusFiles) == 0 && len(cfg.FocusFiles) > 0 {
		rec.FocusFiles = append([]string(nil), cfg.FocusFiles...)
	}

	// Step 5: read last turn's output; fingerprint; update repetition window.
	text, err := ReadLastOutput(input.TranscriptPath)
	if err != nil {
		e.Logger.Warn("transient I/O: transcript read failed, treating as empty", zap.Error(err))
		text = ""
	}
	fp := repetition.Fingerprint(text)
	_, idleStreak, intervention := repetition.Evaluate(rec.RecentOutputs, fp, cfg.LoopDetection.SimilarityThreshold, rec.IdleStreak,
		cfg.LoopDetection.ExplorationStreak, cfg.LoopDetection.ForcePivotStreak)
	rec.IdleStreak = idleStreak
	rec.PushOutput(fp, cfg.LoopDetection.WindowSize)

	// Step 6: budget accountant.
	budgetVerdict := budget.Evaluate(cfg.LoopLimits, rec, now)
	if budgetVerdict.MaxExceeded {
		reason := ReasonMaxTime
		if budgetVerdict.MaxReason == budget.ReasonMaxIterations {
			reason = ReasonMaxIterations
		}
		rec.RecordStop(reason)
		e.persist(sessStore, rec)
		_, _ = cfgStore.Transition(config.StateStopped)
		return hookio.StopOutput{Decision: "continue", Reason: reason, StopReason: reason}
	}

	// Step 7: completion detector.
	completionVerdict := completion.Detect(text, cfg.Completion, budgetVerdict.MinimaMet())
	rec.LastCompletionScore = completionVerdict.Score
	if completionVerdict.Complete {
		rec.RecordStop(ReasonTaskComplete)
		e.persist(sessStore, rec)
		_, _ = cfgStore.Transition(config.StateStopped)
		return hookio.StopOutput{
			Decision:   "continue",
			Reason:     ReasonTaskComplete,
			StopReason: ReasonTaskComplete,
		}
	}

	// Step 8: alpha-forge adapter.
	var adapterVerdict *alphaforge.Verdict
	if alphaforge.Detect(e.ProjectPath) {
		v := alphaforge.Evaluate(e.ProjectPath, now)
		adapterVerdict = &v
		rec.LastAdapterVerdict = &session.AdapterVerdict{
			AdapterName: v.AdapterName, ShouldContinue: v.ShouldContinue, Reason: v.Reason,
			Sharpe: v.Sharpe, WFE: v.WFE, Drawdown: v.Drawdown, ComputedAt: v.ComputedAt,
		}
		if !v.ShouldContinue && budgetVerdict.MinimaMet() {
			rec.RecordStop(v.Reason)
			e.persist(sessStore, rec)
			_, _ = cfgStore.Transition(config.StateStopped)
			return hookio.StopOutput{Decision: "continue", Reason: v.Reason, StopReason: v.Reason}
		}
	}

	// Step 9: compose next-turn prompt.
	guidanceUpdated := cfg.Guidance.Timestamp.After(previousLastSeen)
	selectedPhase := phase.Select(rec, completionVerdict, budgetVerdict, intervention, cfg.LoopDetection, cfg.Guidance)
	prompt := phase.Compose(phase.Input{
		Config:          cfg,
		Record:          rec,
		Phase:           selectedPhase,
		BudgetVerdict:   budgetVerdict,
		AdapterVerdict:  adapterVerdict,
		GuidanceUpdated: guidanceUpdated,
		Intervention:    intervention,
		Now:             now,
	})

	e.persist(sessStore, rec)

	return hookio.StopOutput{
		Decision:          "block",
		Reason:            string(selectedPhase),
		AdditionalContext: prompt,
	}
}

func (e *Engine) persist(store *session.Store, rec *session.Record) {
	if err := store.Save(rec); err != nil {
		e.Logger.Warn("session persist failed", zap.Error(err))
	}
}

func (e *Engine) cacheReason(out hookio.StopOutput) {
	if out.Reason == "" {
		return
	}
	_ = config.SaveStopReasonCache(config.StopReasonCache{
		ProjectPath: e.ProjectPath,
		Reason:      out.Reason,
		Decision:    out.Decision,
		Timestamp:   e.now(),
	})
}
