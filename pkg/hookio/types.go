// Package hookio defines the host protocol wire types: the JSON the
// Claude Code host writes to stdin on a hook tick, and the JSON the
// engine and guard write back to stdout.
package hookio

// BaseInput is embedded in every hook input.
type BaseInput struct {
	SessionID       string `json:"session_id"`
	ParentSessionID string `json:"parent_session_id,omitempty"`
	TranscriptPath  string `json:"transcript_path"`
	CWD             string `json:"cwd"`
}

// StopInput is the stdin payload on a Stop hook tick.
type StopInput struct {
	BaseInput
	HookEventName  string `json:"hook_event_name"`
	StopHookActive bool   `json:"stop_hook_active"`
}

// PreToolUseInput is the stdin payload on a PreToolUse hook tick.
type PreToolUseInput struct {
	BaseInput
	HookEventName string         `json:"hook_event_name"`
	ToolName      string         `json:"tool_name"`
	ToolInput     map[string]any `json:"tool_input"`
	ToolUseID     string         `json:"tool_use_id,omitempty"`
}

// StopOutput is the stdout payload emitted on a Stop hook tick.
//
// Decision "block" forces another turn; AdditionalContext becomes the
// next-turn instruction document. Decision "continue" (or an empty
// Decision) lets the host's own stop proceed.
type StopOutput struct {
	Decision          string `json:"decision,omitempty"`
	Reason            string `json:"reason,omitempty"`
	StopReason        string `json:"stopReason,omitempty"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// PreToolUseOutput is the stdout payload emitted on a PreToolUse hook tick.
type PreToolUseOutput struct {
	HookSpecificOutput PreToolUseSpecificOutput `json:"hookSpecificOutput"`
}

// PreToolUseSpecificOutput carries the permission decision for PreToolUse.
type PreToolUseSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}

// NewAllowOutput builds the PreToolUse output for an allowed tool call.
func NewAllowOutput() PreToolUseOutput {
	return PreToolUseOutput{HookSpecificOutput: PreToolUseSpecificOutput{
		HookEventName:      "PreToolUse",
		PermissionDecision: "allow",
	}}
}

// NewDenyOutput builds the PreToolUse output for a vetoed tool call.
func NewDenyOutput(reason string) PreToolUseOutput {
	return PreToolUseOutput{HookSpecificOutput: PreToolUseSpecificOutput{
		HookEventName:            "PreToolUse",
		PermissionDecision:       "deny",
		PermissionDecisionReason: reason,
	}}
}
