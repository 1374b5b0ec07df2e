// Package alphaforge implements the single first-class adapter: it
// recognizes alpha-forge projects and reads their run-summary artifacts
// to produce an advisory convergence verdict. It never unilaterally
// stops the loop.
package alphaforge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Name identifies this adapter in a persisted Verdict.
const Name = "alpha-forge"

// Summary is the typed shape of one outputs/runs/<id>/summary.json
// artifact.
type Summary struct {
	Sharpe   float64 `json:"sharpe"`
	WFE      float64 `json:"wfe"`
	Drawdown float64 `json:"drawdown"`
}

// Verdict is the Adapter Verdict entity (§3).
type Verdict struct {
	AdapterName    string    `json:"adapter_name"`
	ShouldContinue bool      `json:"should_continue"`
	Reason         string    `json:"reason"`
	Sharpe         float64   `json:"sharpe,omitempty"`
	WFE            float64   `json:"wfe,omitempty"`
	Drawdown       float64   `json:"drawdown,omitempty"`
	ComputedAt     time.Time `json:"computed_at"`
}

// Detect reports whether projectPath looks like an alpha-forge project:
// a packaged-core subdirectory, or an outputs/runs directory.
func Detect(projectPath string) bool {
	if info, err := os.Stat(filepath.Join(projectPath, "packaged-core")); err == nil && info.IsDir() {
		return true
	}
	if info, err := os.Stat(filepath.Join(projectPath, "outputs", "runs")); err == nil && info.IsDir() {
		return true
	}
	return false
}

// Evaluate reads the most recent run summaries under
// outputs/runs/*/summary.json and applies the verdict rules in order:
//
//  1. WFE < 0.5 → overfit, should_continue=false
//  2. Sharpe improved > 10% over the previous summary → improving
//  3. Sharpe improved < 5% for two summaries running → pivot
//  4. otherwise → patience
//
// Missing or malformed artifacts yield should_continue=true, reason
// "no_data" — never a hard stop.
func Evaluate(projectPath string, now time.Time) Verdict {
	summaries, err := loadRecentSummaries(projectPath, 3)
	if err != nil || len(summaries) == 0 {
		return Verdict{AdapterName: Name, ShouldContinue: true, Reason: "no_data", ComputedAt: now}
	}

	latest := summaries[len(summaries)-1]

	if latest.WFE < 0.5 {
		return Verdict{
			AdapterName: Name, ShouldContinue: false, Reason: "overfit",
			Sharpe: latest.Sharpe, WFE: latest.WFE, Drawdown: latest.Drawdown, ComputedAt: now,
		}
	}

	if len(summaries) >= 2 {
		prev := summaries[len(summaries)-2]
		improvement := sharpeImprovement(prev.Sharpe, latest.Sharpe)
		if improvement > 0.10 {
			return Verdict{
				AdapterName: Name, ShouldContinue: true, Reason: "improving",
				Sharpe: latest.Sharpe, WFE: latest.WFE, Drawdown: latest.Drawdown, ComputedAt: now,
			}
		}
		if len(summaries) >= 3 {
			prevPrev := summaries[len(summaries)-3]
			prevImprovement := sharpeImprovement(prevPrev.Sharpe, prev.Sharpe)
			if improvement < 0.05 && prevImprovement < 0.05 {
				return Verdict{
					AdapterName: Name, ShouldContinue: true, Reason: "pivot",
					Sharpe: latest.Sharpe, WFE: latest.WFE, Drawdown: latest.Drawdown, ComputedAt: now,
				}
			}
		}
	}

	return Verdict{
		AdapterName: Name, ShouldContinue: true, Reason: "patience",
		Sharpe: latest.Sharpe, WFE: latest.WFE, Drawdown: latest.Drawdown, ComputedAt: now,
	}
}

func sharpeImprovement(prev, latest float64) float64 {
	if prev == 0 {
		if latest > 0 {
			return 1
		}
		return 0
	}
	return (latest - prev) / prev
}

type timestampedSummary struct {
	Summary
	modTime time.Time
}

// loadRecentSummaries returns up to n of the most recent well-formed
// summary.json artifacts, oldest first.
func loadRecentSummaries(projectPath string, n int) ([]Summary, error) {
	pattern := filepath.Join(projectPath, "outputs", "runs", "*", "summary.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var loaded []timestampedSummary
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		var s Summary
		if err := json.Unmarshal(data, &s); err != nil {
			continue // malformed artifact: skip, not fatal
		}
		loaded = append(loaded, timestampedSummary{Summary: s, modTime: info.ModTime()})
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].modTime.Before(loaded[j].modTime) })

	if len(loaded) > n {
		loaded = loaded[len(loaded)-n:]
	}

	out := make([]Summary, len(loaded))
	for i, l := range loaded {
		out[i] = l.Summary
	}
	return out, nil
}
