// Package guard implements the PreToolUse Guard: an independent entry
// point that vetoes destructive actions against protected loop-control
// files unless an official Ralph command marker is present.
package guard

import (
	"regexp"
	"strings"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/permission"
)

// Decision is the guard's verdict for one tool call.
type Decision struct {
	Deny   bool
	Reason string
}

// destructiveVerbs are shell verbs that mutate or remove file content.
// This conservative-bias scan only needs to recognize verbs, not parse a
// full shell grammar: the guard is fail-open by design, so a command it
// can't confidently classify is allowed.
var destructiveVerbs = []*regexp.Regexp{
	regexp.MustCompile(`\brm\b`),
	regexp.MustCompile(`\bmv\b`),
	regexp.MustCompile(`\btruncate\b`),
	regexp.MustCompile(`>\s*`), // shell overwrite redirection
	regexp.MustCompile(`\bunlink\b`),
}

// Evaluate checks one proposed tool call against the configured
// protection list. Write/Edit-family tools are checked against
// file_path directly (any write to a protected file is treated as
// destructive, since it can truncate the file's prior content);
// Bash commands are scanned for a destructive verb targeting a
// protected path.
func Evaluate(toolName string, toolInput map[string]any, protection config.Protection) Decision {
	switch toolName {
	case "Write", "Edit", "FileWrite", "FileEdit":
		path, _ := toolInput["file_path"].(string)
		if path == "" {
			return Decision{}
		}
		if pattern, matched := permission.MatchesAny(protection.ProtectedFiles, path); matched {
			return Decision{Deny: true, Reason: "refusing to write protected loop-control file: " + pattern}
		}
		return Decision{}
	case "Bash":
		command, _ := toolInput["command"].(string)
		if command == "" {
			return Decision{} // fail-open: nothing to parse
		}
		return evaluateCommand(command, protection)
	default:
		return Decision{}
	}
}

func evaluateCommand(command string, protection config.Protection) Decision {
	if hasBypassMarker(command, protection.BypassMarkers) {
		return Decision{}
	}

	if !isDestructive(command) {
		return Decision{}
	}

	for _, pattern := range protection.ProtectedFiles {
		if permission.ContainsFold(command, pattern) {
			return Decision{Deny: true, Reason: "command targets protected loop-control file: " + pattern}
		}
	}
	return Decision{}
}

func isDestructive(command string) bool {
	for _, re := range destructiveVerbs {
		if re.MatchString(command) {
			return true
		}
	}
	return false
}

func hasBypassMarker(command string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(command, marker) {
			return true
		}
	}
	return false
}
