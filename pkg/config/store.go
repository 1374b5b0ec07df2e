package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ralphloop/ralph/pkg/atomicfile"
	"github.com/ralphloop/ralph/pkg/jsonc"
)

// RelPath is the Config Document's on-disk location relative to a
// project root.
const RelPath = ".claude/ralph-config.json"

// Store loads and atomically mutates a project's Config Document.
type Store struct {
	projectPath string
}

// NewStore roots a Store at projectPath.
func NewStore(projectPath string) *Store {
	return &Store{projectPath: projectPath}
}

func (s *Store) path() string {
	return filepath.Join(s.projectPath, RelPath)
}

// Exists reports whether a Config Document has ever been created here.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Load reads the Config Document, validating it against the typed
// schema. ErrNotFound is returned if no document exists yet.
func (s *Store) Load() (*Document, error) {
	if !s.Exists() {
		return nil, ErrNotFound
	}
	var d Document
	if err := jsonc.Load(s.path(), &d); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("config schema invalid: %w", err)
	}
	return &d, nil
}

// Save atomically writes d, validating post-write and rolling back to
// the one-slot backup on failure.
func (s *Store) Save(d *Document) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path()), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return atomicfile.WriteWithBackup(s.path(), data, 0o644, func(written []byte) error {
		var check Document
		if err := json.Unmarshal(written, &check); err != nil {
			return err
		}
		return check.Validate()
	})
}

// Create creates a fresh Config Document for preset and saves it. This is
// the only path that brings a Document from nonexistent to stopped→running
// (the `start` surface).
func (s *Store) Create(preset string) (*Document, error) {
	d := NewDocument(preset)
	if err := s.Save(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Reset destroys and recreates the Config Document. Per §3 Ownership,
// this is the only path allowed to destroy it.
func (s *Store) Reset(preset string) (*Document, error) {
	_ = os.Remove(s.path())
	_ = os.Remove(atomicfile.BackupPath(s.path()))
	return s.Create(preset)
}

// legal state transitions, per §4.9.
var legalTransitions = map[State]map[State]bool{
	StateStopped:  {StateRunning: true},
	StateRunning:  {StateDraining: true, StateStopped: true},
	StateDraining: {StateStopped: true},
}

// ErrIllegalTransition is returned when a state mutation is attempted
// along an edge not in the legal transition table.
type ErrIllegalTransition struct {
	From, To State
}

func (e ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal state transition: %s -> %s", e.From, e.To)
}

// Transition validates and applies a state change, saving the result.
// Illegal edges are rejected and the document on disk is left unchanged.
func (s *Store) Transition(to State) (*Document, error) {
	d, err := s.Load()
	if err != nil {
		return nil, err
	}
	if d.State == to {
		return d, nil
	}
	if !legalTransitions[d.State][to] {
		return nil, ErrIllegalTransition{From: d.State, To: to}
	}
	d.State = to
	if err := s.Save(d); err != nil {
		return nil, err
	}
	return d, nil
}

// RequestStop performs the courtesy running→draining transition used by
// the `stop` surface.
func (s *Store) RequestStop() (*Document, error) {
	return s.Transition(StateDraining)
}

// Encourage appends text to the encouraged list, deduplicating by
// case-folded equality, and stamps a fresh timestamp.
func (s *Store) Encourage(text string) (*Document, error) {
	return s.mutateGuidance(func(g *Guidance) { addDeduped(&g.Encouraged, text) })
}

// Forbid appends text to the forbidden list, deduplicating by
// case-folded equality, and stamps a fresh timestamp.
func (s *Store) Forbid(text string) (*Document, error) {
	return s.mutateGuidance(func(g *Guidance) { addDeduped(&g.Forbidden, text) })
}

func (s *Store) mutateGuidance(fn func(*Guidance)) (*Document, error) {
	d, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(&d.Guidance)
	d.Guidance.Timestamp = time.Now().UTC()
	if err := s.Save(d); err != nil {
		return nil, err
	}
	return d, nil
}

func addDeduped(list *[]string, text string) {
	folded := strings.ToLower(text)
	for _, existing := range *list {
		if strings.ToLower(existing) == folded {
			return
		}
	}
	*list = append(*list, text)
}

// ErrNotFound is returned by Load when no Config Document exists.
var ErrNotFound = fmt.Errorf("config: not found")
