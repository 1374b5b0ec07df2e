// Command ralph is the operator-facing CLI: start/stop a loop, steer it
// with encourage/forbid guidance, inspect its status, or reset its
// Config Document. None of these subcommands implement decision logic
// themselves; they call directly into pkg/config and pkg/session, the
// same packages the hooks use.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ralphloop/ralph/pkg/config"
	"github.com/ralphloop/ralph/pkg/session"
)

const cliName = "ralph"

func main() {
	rootCmd := &cobra.Command{
		Use:   cliName,
		Short: "Ralph — an autonomous coding-loop orchestrator",
	}

	rootCmd.AddCommand(
		newStartCmd(),
		newStopCmd(),
		newEncourageCmd(),
		newForbidCmd(),
		newStatusCmd(),
		newResetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func projectPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func newStartCmd() *cobra.Command {
	var preset string
	var focusFiles []string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create a fresh Config Document and start the loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch preset {
			case config.PresetPOC, config.PresetProduction, config.PresetCustom:
			default:
				return fmt.Errorf("unknown preset %q (use: poc, production, custom)", preset)
			}

			store := config.NewStore(projectPath())
			doc, err := store.Create(preset)
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}
			if len(focusFiles) > 0 {
				doc.FocusFiles = focusFiles
				if err := store.Save(doc); err != nil {
					return fmt.Errorf("start: saving focus files: %w", err)
				}
			}

			fmt.Printf("ralph: started (preset=%s, state=%s)\n", preset, doc.State)
			if len(focusFiles) > 0 {
				fmt.Printf("focus files: %v\n", focusFiles)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", config.PresetPOC, "budget preset: poc, production, custom")
	cmd.Flags().StringArrayVar(&focusFiles, "focus-file", nil, "file the implementation phase should target (repeatable)")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Request the loop drain to a stop (running -> draining)",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.NewStore(projectPath()).RequestStop()
			if err != nil {
				return fmt.Errorf("stop: %w", err)
			}
			fmt.Printf("ralph: state is now %s\n", doc.State)
			return nil
		},
	}
}

func newEncourageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encourage <text>",
		Short: "Add text to the encouraged-behavior guidance list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			if _, err := config.NewStore(projectPath()).Encourage(text); err != nil {
				return fmt.Errorf("encourage: %w", err)
			}
			fmt.Printf("ralph: encouraged %q\n", text)
			return nil
		},
	}
}

func newForbidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forbid <text>",
		Short: "Add text to the forbidden-behavior guidance list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			if _, err := config.NewStore(projectPath()).Forbid(text); err != nil {
				return fmt.Errorf("forbid: %w", err)
			}
			fmt.Printf("ralph: forbade %q\n", text)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current loop state, last stop reason, and session progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := projectPath()

			doc, err := config.NewStore(path).Load()
			if err != nil {
				fmt.Println("ralph: no config document (not started)")
				return nil
			}
			fmt.Printf("state:        %s\n", doc.State)
			fmt.Printf("loop limits:  %.3fh-%.3fh, %d-%d iterations\n",
				doc.LoopLimits.MinHours, doc.LoopLimits.MaxHours,
				doc.LoopLimits.MinIterations, doc.LoopLimits.MaxIterations)
			if len(doc.FocusFiles) > 0 {
				fmt.Printf("focus files:  %v\n", doc.FocusFiles)
			}
			if len(doc.Guidance.Encouraged) > 0 {
				fmt.Printf("encouraged:   %v\n", doc.Guidance.Encouraged)
			}
			if len(doc.Guidance.Forbidden) > 0 {
				fmt.Printf("forbidden:    %v\n", doc.Guidance.Forbidden)
			}

			if rec, err := session.NewStore(path).LoadLatest(); err == nil {
				fmt.Printf("session:      %s (iteration %d, idle streak %d)\n",
					rec.SessionID, rec.IterationCount, rec.IdleStreak)
				fmt.Printf("runtime:      %.1fs\n", rec.AccumulatedRuntimeSeconds)
				if len(rec.StopHistory) > 0 {
					fmt.Printf("stop history: %v\n", rec.StopHistory)
				}
			}

			if cache, err := config.LoadStopReasonCache(); err == nil && cache != nil {
				fmt.Printf("last decision: %s (%s) at %s\n", cache.Decision, cache.Reason, cache.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			}

			if sig, err := config.LoadGlobalStopSignal(); err == nil && sig != nil && sig.Stopped {
				fmt.Printf("GLOBAL STOP in effect since %s\n", sig.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Destroy and recreate the Config Document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.NewStore(projectPath()).Reset(preset)
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Printf("ralph: reset (preset=%s, state=%s)\n", preset, doc.State)
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", config.PresetPOC, "budget preset: poc, production, custom")
	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
