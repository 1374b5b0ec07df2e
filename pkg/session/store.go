package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ralphloop/ralph/pkg/atomicfile"
)

// ErrNotFound is returned by Load when no record exists for a session id.
var ErrNotFound = errors.New("session: not found")

// Store persists Session Records under a project's .claude/sessions dir,
// one JSON file per session id.
type Store struct {
	projectPath string
}

// NewStore roots a Store at projectPath.
func NewStore(projectPath string) *Store {
	return &Store{projectPath: projectPath}
}

// Sanitize converts a session id into a filesystem-safe name. Session ids
// are expected to already be simple tokens (UUIDs); this guards against
// path traversal regardless.
func Sanitize(id string) string {
	s := strings.ReplaceAll(id, string(filepath.Separator), "-")
	s = strings.ReplaceAll(s, "..", "-")
	return s
}

func (s *Store) dir() string {
	return filepath.Join(s.projectPath, ".claude", "sessions")
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir(), Sanitize(sessionID)+".json")
}

// Load reads the record for sessionID. Missing fields in an older record
// default to their zero value rather than failing to load.
func (s *Store) Load(sessionID string) (*Record, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	return &r, nil
}

// Save atomically writes r.
func (s *Store) Save(r *Record) error {
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	return atomicfile.Write(s.path(r.SessionID), data, 0o644)
}

// LoadOrCreate looks up (projectPath, sessionID); if absent, it creates a
// fresh record and — when parentSessionID is set and a parent record
// exists — copies focus_files/idle_streak from the parent on this first
// touch.
func (s *Store) LoadOrCreate(sessionID, parentSessionID string, now time.Time) (*Record, error) {
	r, err := s.Load(sessionID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	r = New(sessionID, parentSessionID, s.projectPath, now)
	if parentSessionID != "" {
		if parent, perr := s.Load(parentSessionID); perr == nil {
			r.InheritFromParent(parent)
		}
	}
	return r, nil
}

// LoadLatest returns the most recently modified Session Record for this
// project, for surfaces (like `ralph status`) that want "whichever
// session is currently active" without being told its id.
func (s *Store) LoadLatest() (*Record, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var latestName string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latestName == "" || info.ModTime().After(latestMod) {
			latestName = entry.Name()
			latestMod = info.ModTime()
		}
	}
	if latestName == "" {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir(), latestName))
	if err != nil {
		return nil, fmt.Errorf("read session record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	return &r, nil
}
