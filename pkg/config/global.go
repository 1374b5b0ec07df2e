package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ralphloop/ralph/pkg/atomicfile"
)

// GlobalStopRelPath is the process-wide stop signal, under the user's
// home directory, that overrides every project's local state.
const GlobalStopRelPath = ".claude/ralph-global-stop.json"

// StopReasonCacheRelPath caches the last-emitted stop reason for the
// status surface.
const StopReasonCacheRelPath = ".claude/ralph-stop-reason.json"

// GlobalStopSignal is the Global Stop Signal entity (§3).
type GlobalStopSignal struct {
	Stopped   bool      `json:"stopped"`
	Timestamp time.Time `json:"timestamp"`
}

// StopReasonCache is the last-emitted decision, read by the status surface.
type StopReasonCache struct {
	ProjectPath string    `json:"project_path"`
	Reason      string    `json:"reason"`
	Decision    string    `json:"decision"`
	Timestamp   time.Time `json:"timestamp"`
}

func homePath(rel string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rel), nil
}

// LoadGlobalStopSignal reads the process-wide stop signal. A missing
// file is not an error: it simply means no global stop is in effect.
func LoadGlobalStopSignal() (*GlobalStopSignal, error) {
	path, err := homePath(GlobalStopRelPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var sig GlobalStopSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}

// SetGlobalStop writes the process-wide stop signal, last-writer-wins.
func SetGlobalStop(now time.Time) error {
	path, err := homePath(GlobalStopRelPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(GlobalStopSignal{Stopped: true, Timestamp: now})
	if err != nil {
		return err
	}
	return atomicfile.Write(path, data, 0o644)
}

// SaveStopReasonCache caches the most recently emitted stop reason.
func SaveStopReasonCache(c StopReasonCache) error {
	path, err := homePath(StopReasonCacheRelPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return atomicfile.Write(path, data, 0o644)
}

// LoadStopReasonCache reads the cached stop reason for the status surface.
func LoadStopReasonCache() (*StopReasonCache, error) {
	path, err := homePath(StopReasonCacheRelPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var c StopReasonCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// KillSwitchRelPath is the project-local kill-switch sentinel: existence
// means "request stop".
const KillSwitchRelPath = ".claude/STOP_LOOP"

// KillSwitchExists reports whether the kill-switch sentinel is present
// in the given project.
func KillSwitchExists(projectPath string) bool {
	_, err := os.Stat(filepath.Join(projectPath, KillSwitchRelPath))
	return err == nil
}
