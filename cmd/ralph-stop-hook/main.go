// Command ralph-stop-hook is the Claude Code Stop hook entrypoint. It
// reads one StopInput JSON document from stdin, runs it through the
// Stop Decision Engine, and writes the resulting StopOutput to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ralphloop/ralph/pkg/engine"
	"github.com/ralphloop/ralph/pkg/hookio"
	"github.com/ralphloop/ralph/pkg/logging"
)

func main() {
	input, err := hookio.DecodeStopInput(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ralph-stop-hook: decode input: %v\n", err)
		_ = hookio.Emit(os.Stdout, hookio.EmptyStopOutput())
		os.Exit(0)
	}

	projectPath := input.CWD
	if projectPath == "" {
		projectPath, _ = os.Getwd()
	}
	if input.SessionID == "" {
		// The host is expected to always supply a session id; this only
		// guards against a malformed payload so the engine still gets a
		// stable identity to key the Session Record on for this process.
		input.SessionID = uuid.NewString()
	}

	logger := logging.New(projectPath)
	defer logger.Sync()

	e := engine.New(projectPath, logger)
	out := e.Run(input)

	if err := hookio.Emit(os.Stdout, out); err != nil {
		fmt.Fprintf(os.Stderr, "ralph-stop-hook: emit output: %v\n", err)
		os.Exit(1)
	}
}
