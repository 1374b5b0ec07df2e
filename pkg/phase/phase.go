// Package phase implements the Phase Selector & Prompt Composer: it
// chooses implementation vs. exploration phase and renders the
// next-turn Markdown instruction document.
package phase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ralphloop/ralph/pkg/adapter/alphaforge"
	"github.com/ralphloop/ralph/pkg/budget"
	"github.com/ralphloop/ralph/pkg/completion"
	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/guidance"
	"github.com/ralphloop/ralph/pkg/repetition"
	"github.com/ralphloop/ralph/pkg/session"
)

// Phase is one of the two logical per-turn states.
type Phase string

const (
	Implementation Phase = "implementation"
	Exploration    Phase = "exploration"
)

// ExplorationIdleThreshold is the fallback idle_streak at which
// implementation phase gives way to exploration even with a focus file
// still present, used when a Config Document leaves
// loop_detection.exploration_streak unset (zero).
const ExplorationIdleThreshold = repetition.ExplorationStreak

// FilterFocusFiles runs each focus file through the Guidance Filter and
// splits it into the files still worth proposing (ALLOW) and the ones
// the Phase Selector must re-propose around (SKIP busywork, BLOCK
// forbidden). The relative order of allowed files is preserved.
func FilterFocusFiles(files []string, g config.Guidance) (allowed, blocked []string) {
	for _, f := range files {
		switch guidance.Classify(f, g) {
		case guidance.Allow:
			allowed = append(allowed, f)
		default:
			blocked = append(blocked, f)
		}
	}
	return allowed, blocked
}

// Select chooses the phase for the next turn.
//
// implementation: at least one guidance-allowed focus file and
// idle_streak below threshold. exploration: no allowed focus file (none
// configured, or the Guidance Filter blocked every candidate), idle_streak
// reaches the threshold, forced pivot was signalled, or completion was
// detected but minima are not yet met (the loop must keep working, but
// not toward a presumed-finished focus file).
func Select(record *session.Record, completionVerdict completion.Verdict, budgetVerdict budget.Verdict, intervention repetition.Intervention, loopDetection config.LoopDetection, g config.Guidance) Phase {
	if intervention == repetition.InterventionForcePivot {
		return Exploration
	}
	allowed, _ := FilterFocusFiles(record.FocusFiles, g)
	if len(allowed) == 0 {
		return Exploration
	}
	explorationStreak := loopDetection.ExplorationStreak
	if explorationStreak <= 0 {
		explorationStreak = ExplorationIdleThreshold
	}
	if record.IdleStreak >= explorationStreak {
		return Exploration
	}
	if completionVerdict.Score >= 0.7 && !budgetVerdict.MinimaMet() {
		return Exploration
	}
	return Implementation
}

// Input bundles everything Compose needs to render the next-turn prompt.
type Input struct {
	Config             *config.Document
	Record             *session.Record
	Phase              Phase
	BudgetVerdict      budget.Verdict
	AdapterVerdict     *alphaforge.Verdict
	GuidanceUpdated    bool
	Intervention       repetition.Intervention
	Now                time.Time
}

// Compose renders the single Markdown instruction document for the next
// turn, in the fixed section order: version banner, phase, budget
// snapshot, guidance lists, focus file, adapter verdict, loop-intervention
// notice (when the repetition schedule calls for one), phase protocol.
// Compose is a pure function of its Input.
func Compose(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ralph — next iteration (config v%s)\n\n", in.Config.Version)
	fmt.Fprintf(&b, "**Phase:** %s\n\n", in.Phase)

	writeBudgetSection(&b, in)
	writeGuidanceSection(&b, in)
	writeFocusSection(&b, in)
	writeAdapterSection(&b, in)
	writeInterventionSection(&b, in)
	writeProtocolSection(&b, in)

	return b.String()
}

func writeBudgetSection(b *strings.Builder, in Input) {
	limits := in.Config.LoopLimits
	runtimeHours := in.Record.AccumulatedRuntimeSeconds / 3600.0
	fmt.Fprintf(b, "## Budget\n\n")
	fmt.Fprintf(b, "- Iteration %d / max %d\n", in.Record.IterationCount, limits.MaxIterations)
	fmt.Fprintf(b, "- Runtime %.2fh / max %.2fh\n\n", runtimeHours, limits.MaxHours)
}

func writeGuidanceSection(b *strings.Builder, in Input) {
	fmt.Fprintf(b, "## Guidance\n\n")
	if in.GuidanceUpdated {
		fmt.Fprintf(b, "_guidance updated at %s_\n\n", in.Config.Guidance.Timestamp.Format(time.RFC3339))
	}
	if len(in.Config.Guidance.Forbidden) > 0 {
		fmt.Fprintf(b, "BLOCKED:\n")
		for _, item := range sortedCopy(in.Config.Guidance.Forbidden) {
			fmt.Fprintf(b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if len(in.Config.Guidance.Encouraged) > 0 {
		fmt.Fprintf(b, "PRIORITIES:\n")
		for _, item := range sortedCopy(in.Config.Guidance.Encouraged) {
			fmt.Fprintf(b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	if _, blocked := FilterFocusFiles(in.Record.FocusFiles, in.Config.Guidance); len(blocked) > 0 {
		fmt.Fprintf(b, "RE-PROPOSED (guidance filter rejected these as the focus):\n")
		for _, item := range blocked {
			fmt.Fprintf(b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
}

func writeFocusSection(b *strings.Builder, in Input) {
	allowed, _ := FilterFocusFiles(in.Record.FocusFiles, in.Config.Guidance)
	if len(allowed) == 0 {
		return
	}
	fmt.Fprintf(b, "## Focus\n\n")
	for _, f := range allowed {
		fmt.Fprintf(b, "- %s\n", f)
	}
	b.WriteString("\n")
}

func writeAdapterSection(b *strings.Builder, in Input) {
	if in.AdapterVerdict == nil {
		return
	}
	v := in.AdapterVerdict
	fmt.Fprintf(b, "## Adapter: %s\n\n", v.AdapterName)
	fmt.Fprintf(b, "- reason: %s\n", v.Reason)
	if v.WFE != 0 || v.Sharpe != 0 {
		fmt.Fprintf(b, "- sharpe: %.3f, wfe: %.3f, drawdown: %.3f\n", v.Sharpe, v.WFE, v.Drawdown)
	}
	b.WriteString("\n")
}

func writeInterventionSection(b *strings.Builder, in Input) {
	switch in.Intervention {
	case repetition.InterventionPivotReminder:
		b.WriteString("**You are looping: your last output closely repeats a prior one. Pivot to a different concrete step.**\n\n")
	case repetition.InterventionExploration, repetition.InterventionForcePivot:
		b.WriteString("**Repeated output detected across several turns. Stop iterating on the current focus file and explore the project for the next concrete task.**\n\n")
	}
}

func writeProtocolSection(b *strings.Builder, in Input) {
	fmt.Fprintf(b, "## Protocol\n\n")
	switch in.Phase {
	case Implementation:
		b.WriteString("Continue implementing toward the focus file above. Make one concrete, verifiable change this turn, then report progress against the remaining checklist.\n")
	case Exploration:
		b.WriteString("No active focus file, or the current one has stalled. Survey the project for the next highest-value piece of work, propose a new focus file, and begin it.\n")
	}
}

func sortedCopy(items []string) []string {
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out
}
