// Command ralph-pretooluse-hook is the Claude Code PreToolUse hook
// entrypoint. It vetoes destructive tool calls against the protected
// loop-control files independently of the Stop Decision Engine, so a
// single bad Bash command can't corrupt the loop's own state.
package main

import (
	"fmt"
	"os"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/guard"
	"github.com/ralphloop/ralph/pkg/hookio"
)

func main() {
	input, err := hookio.DecodePreToolUseInput(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ralph-pretooluse-hook: decode input: %v\n", err)
		_ = hookio.Emit(os.Stdout, hookio.NewAllowOutput())
		os.Exit(0)
	}

	projectPath := input.CWD
	if projectPath == "" {
		projectPath, _ = os.Getwd()
	}

	protection := config.Protection{
		ProtectedFiles: config.DefaultProtectedFiles,
		BypassMarkers:  config.DefaultBypassMarkers,
	}
	if cfg, err := config.NewStore(projectPath).Load(); err == nil {
		protection = cfg.Protection
	}

	decision := guard.Evaluate(input.ToolName, input.ToolInput, protection)

	var out hookio.PreToolUseOutput
	if decision.Deny {
		out = hookio.NewDenyOutput(decision.Reason)
	} else {
		out = hookio.NewAllowOutput()
	}

	if err := hookio.Emit(os.Stdout, out); err != nil {
		fmt.Fprintf(os.Stderr, "ralph-pretooluse-hook: emit output: %v\n", err)
		os.Exit(1)
	}
}
